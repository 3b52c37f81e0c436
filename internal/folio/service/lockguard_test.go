package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/stretchr/testify/require"
)

func TestLockGuard(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("locks on the threshold", func(t *testing.T) {
		clock := NewFakeClock(start)
		g := NewLockGuard(clock, 3, 10*time.Minute)
		var sec domain.SecurityState

		require.False(t, g.RecordFailure(&sec))
		require.False(t, g.RecordFailure(&sec))
		require.True(t, g.RecordFailure(&sec))
		require.Equal(t, 3, sec.FailedLoginAttempts)
		require.True(t, g.IsLocked(&sec))
		require.Equal(t, start.Add(10*time.Minute), *sec.LockedUntil)
		require.Equal(t, 10, g.RemainingMinutes(&sec))
	})

	t.Run("remaining minutes round up", func(t *testing.T) {
		clock := NewFakeClock(start)
		g := NewLockGuard(clock, 1, 15*time.Minute)
		var sec domain.SecurityState
		g.RecordFailure(&sec)

		clock.Advance(14*time.Minute + 1*time.Second)
		require.Equal(t, 1, g.RemainingMinutes(&sec))

		clock.Advance(time.Minute)
		require.False(t, g.IsLocked(&sec))
		require.Zero(t, g.RemainingMinutes(&sec))
	})

	t.Run("failure after a lapsed lock restarts at one", func(t *testing.T) {
		clock := NewFakeClock(start)
		g := NewLockGuard(clock, 2, time.Minute)
		var sec domain.SecurityState
		g.RecordFailure(&sec)
		g.RecordFailure(&sec)

		clock.Advance(time.Minute)
		require.False(t, g.RecordFailure(&sec))
		require.Equal(t, 1, sec.FailedLoginAttempts)
		require.Nil(t, sec.LockedUntil)
	})

	t.Run("success clears state and stamps last login", func(t *testing.T) {
		clock := NewFakeClock(start)
		g := NewLockGuard(clock, 0, 0)
		require.Equal(t, DefaultMaxLoginAttempts, g.MaxAttempts)
		require.Equal(t, DefaultLockDuration, g.LockDuration)

		sec := domain.SecurityState{FailedLoginAttempts: 4}
		g.RecordSuccess(&sec)
		require.Zero(t, sec.FailedLoginAttempts)
		require.Nil(t, sec.LockedUntil)
		require.Equal(t, start, *sec.LastLogin)
	})
}

func TestOneTimeTokens(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("purposes use their own fields", func(t *testing.T) {
		clock := NewFakeClock(start)
		reset := NewPasswordResetTokens(clock, 0)
		verify := NewEmailVerificationTokens(clock, 0)
		var sec domain.SecurityState

		r, err := reset.Generate(&sec)
		require.NoError(t, err)
		v, err := verify.Generate(&sec)
		require.NoError(t, err)

		require.Len(t, r, 64)
		require.NotEqual(t, r, v)
		require.Equal(t, start.Add(DefaultPasswordResetTTL), *sec.PasswordResetExpires)
		require.Equal(t, start.Add(DefaultEmailVerificationTTL), *sec.VerificationExpires)

		require.True(t, reset.Verify(&sec, r))
		require.False(t, reset.Verify(&sec, v))
		require.True(t, verify.Verify(&sec, v))
		require.NotEqual(t, r, sec.PasswordResetTokenHash)
	})

	t.Run("expiry and consumption", func(t *testing.T) {
		clock := NewFakeClock(start)
		reset := NewPasswordResetTokens(clock, time.Hour)
		var sec domain.SecurityState
		raw, err := reset.Generate(&sec)
		require.NoError(t, err)

		clock.Advance(time.Hour)
		require.False(t, reset.Verify(&sec, raw))

		clock.Set(start)
		require.True(t, reset.Verify(&sec, raw))
		reset.Consume(&sec)
		require.False(t, reset.Verify(&sec, raw))
		require.Empty(t, sec.PasswordResetTokenHash)
	})

	t.Run("regenerating invalidates the previous token", func(t *testing.T) {
		reset := NewPasswordResetTokens(NewFakeClock(start), 0)
		var sec domain.SecurityState
		first, err := reset.Generate(&sec)
		require.NoError(t, err)
		second, err := reset.Generate(&sec)
		require.NoError(t, err)

		require.False(t, reset.Verify(&sec, first))
		require.True(t, reset.Verify(&sec, second))
	})
}

func TestStaticAdminList(t *testing.T) {
	t.Parallel()

	l := NewStaticAdminList("Root@Example.com, ops@example.com", "", " third@example.com ")
	require.Equal(t, domain.RoleAdmin, l.RoleForEmail("root@example.com"))
	require.Equal(t, domain.RoleAdmin, l.RoleForEmail("OPS@example.com"))
	require.Equal(t, domain.RoleAdmin, l.RoleForEmail("third@example.com"))
	require.Equal(t, domain.RoleUser, l.RoleForEmail("someone@example.com"))

	var nilList *StaticAdminList
	require.Equal(t, domain.RoleUser, nilList.RoleForEmail("root@example.com"))
}
