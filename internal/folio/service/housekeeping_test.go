package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/stretchr/testify/require"
)

type failingBlacklist struct{ store.Blacklist }

func (failingBlacklist) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("blacklist offline")
}

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sum := h.register(t, "alice")
	session := h.login(t, "alice@example.com", strongPassword)
	require.NoError(t, h.auth.Logout(ctx, session.AccessToken, ""))
	_, err := h.auth.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)

	// Past every expiry: access (15m), reset (1h), verification (24h) and
	// refresh (7d).
	h.clock.Advance(8 * 24 * time.Hour)

	hk := NewHousekeepingService(h.store, h.store.Blacklist(), h.clock, logger, 0)
	require.Equal(t, DefaultHousekeepingInterval, hk.Interval)

	report := hk.Cleanup(ctx)
	require.Equal(t, 3, report.SuccessfulSteps)
	require.Equal(t, int64(1), report.RefreshTokens)
	require.Equal(t, int64(2), report.OneTimeDigests)

	a := h.account(t, sum.ID)
	require.Zero(t, a.Security.RefreshTokens.Len())
	require.Empty(t, a.Security.PasswordResetTokenHash)
	require.Empty(t, a.Security.VerificationTokenHash)

	t.Run("a failing step does not stop the others", func(t *testing.T) {
		hk := NewHousekeepingService(h.store, failingBlacklist{}, h.clock, logger, time.Minute)
		report := hk.Cleanup(ctx)
		require.Equal(t, int64(-1), report.Blacklist)
		require.Equal(t, 2, report.SuccessfulSteps)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := NewHousekeepingService(h.store, nil, nil, logger, time.Hour)
	hk.Start()
	hk.Stop()
}
