package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/redis"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
)

var _ store.Blacklist = (*redis.Blacklist)(nil)

func newBlacklist(t *testing.T) (*redis.Blacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewBlacklist(client, "", nil), mr
}

func TestBlacklistAddContains(t *testing.T) {
	ctx := context.Background()
	bl, mr := newBlacklist(t)

	ok, err := bl.Contains(ctx, "access-jwt")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, bl.Add(ctx, "access-jwt", time.Now().Add(10*time.Minute)))

	ok, err = bl.Contains(ctx, "access-jwt")
	require.NoError(t, err)
	require.True(t, ok)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.NotContains(t, keys[0], "access-jwt", "only the fingerprint is stored")
	require.Greater(t, mr.TTL(keys[0]), time.Duration(0))

	mr.FastForward(11 * time.Minute)
	ok, err = bl.Contains(ctx, "access-jwt")
	require.NoError(t, err)
	require.False(t, ok, "entry expires with the token")
}

func TestBlacklistSkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	bl, mr := newBlacklist(t)

	require.NoError(t, bl.Add(ctx, "old", time.Now().Add(-time.Second)))
	require.Empty(t, mr.Keys())

	n, err := bl.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBlacklistUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	bl := redis.NewBlacklist(client, "test", func() time.Time { return now })

	tests := []struct {
		name    string
		token   string
		expires time.Time
		ttl     time.Duration
	}{
		{"ttl counts from the clock", "a", now.Add(10 * time.Minute), 10 * time.Minute},
		{"expired against the clock", "b", now.Add(-time.Second), 0},
		{"far future relative to wall time", "c", now.Add(time.Hour), time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, bl.Add(ctx, tt.token, tt.expires))
			ok, err := bl.Contains(ctx, tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.ttl > 0, ok)
			if tt.ttl > 0 {
				require.Equal(t, tt.ttl, mr.TTL("test:"+cryptox.FingerprintToken(tt.token)))
			}
		})
	}
}

func TestBlacklistFailsWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	bl, mr := newBlacklist(t)
	mr.Close()

	_, err := bl.Contains(ctx, "access-jwt")
	require.Error(t, err)
	require.Error(t, bl.Ping(ctx))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = redis.Dial(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
}
