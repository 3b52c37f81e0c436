// Package redis stores the access token blacklist in Redis, letting key
// expiry do the purging.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "folio:bl"

type Blacklist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewBlacklist wraps client. An empty prefix uses DefaultKeyPrefix and a nil
// now uses time.Now.
func NewBlacklist(client *redis.Client, prefix string, now func() time.Time) *Blacklist {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if now == nil {
		now = time.Now
	}
	return &Blacklist{client: client, prefix: prefix, now: now}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

func (b *Blacklist) key(token string) string {
	return b.prefix + ":" + cryptox.FingerprintToken(token)
}

// Add stores the fingerprint until expiresAt. Tokens that are already
// expired are not worth a key.
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: blacklist add: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: blacklist lookup: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired is a no-op; Redis expires keys itself.
func (b *Blacklist) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping reports whether Redis is reachable.
func (b *Blacklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
