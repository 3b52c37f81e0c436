package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/stretchr/testify/require"
)

func rec(tok string, created time.Time) domain.RefreshTokenRecord {
	return domain.RefreshTokenRecord{Token: tok, CreatedAt: created, ExpiresAt: created.Add(7 * 24 * time.Hour)}
}

func TestRefreshTokenRing_EvictsOldest(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ring domain.RefreshTokenRing

	for i := range 5 {
		require.Empty(t, ring.Append(rec(fmt.Sprintf("t%d", i), now.Add(time.Duration(i)*time.Minute))))
	}
	require.Equal(t, 5, ring.Len())

	evicted := ring.Append(rec("t5", now.Add(5*time.Minute)))
	require.Len(t, evicted, 1)
	require.Equal(t, "t0", evicted[0].Token)
	require.Equal(t, 5, ring.Len())
	require.False(t, ring.Contains("t0", now))
	require.True(t, ring.Contains("t5", now))
}

func TestRefreshTokenRing_Contains(t *testing.T) {
	now := time.Now()
	var ring domain.RefreshTokenRing
	ring.Append(rec("live", now))
	ring.Append(domain.RefreshTokenRecord{Token: "stale", CreatedAt: now.Add(-8 * 24 * time.Hour), ExpiresAt: now.Add(-time.Hour)})

	require.True(t, ring.Contains("live", now))
	require.False(t, ring.Contains("stale", now), "expired records do not count")
	require.False(t, ring.Contains("missing", now))

	require.Equal(t, 1, ring.PruneExpired(now))
	require.Equal(t, 1, ring.Len())
}

func TestRefreshTokenRing_RemoveIdempotent(t *testing.T) {
	now := time.Now()
	var ring domain.RefreshTokenRing
	ring.Append(rec("a", now))
	ring.Append(rec("b", now))

	require.True(t, ring.Remove("a"))
	require.False(t, ring.Remove("a"))
	require.Equal(t, []string{"b"}, tokens(ring.Records()))

	ring.Clear()
	require.Zero(t, ring.Len())
}

func TestNewRefreshTokenRing_TrimsToCap(t *testing.T) {
	now := time.Now()
	var recs []domain.RefreshTokenRecord
	for i := range 4 {
		recs = append(recs, rec(fmt.Sprintf("t%d", i), now))
	}
	ring := domain.NewRefreshTokenRing(2, recs)
	require.Equal(t, []string{"t2", "t3"}, tokens(ring.Records()))
}

func TestRefreshTokenRing_RecordsIsCopy(t *testing.T) {
	var ring domain.RefreshTokenRing
	ring.Append(rec("a", time.Now()))
	out := ring.Records()
	out[0].Token = "mutated"
	require.Equal(t, "a", ring.Records()[0].Token)
}

func tokens(recs []domain.RefreshTokenRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Token
	}
	return out
}
