package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
)

type blacklistRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *blacklistRepo) Add(ctx context.Context, token string, expiresAt time.Time) error {
	return r.q.AddBlacklistEntry(ctx, gen.AddBlacklistEntryParams{
		TokenFingerprint: cryptox.FingerprintToken(token),
		ExpiresAt:        utc(expiresAt),
	})
}

// Contains ignores entries that expired but have not been purged yet.
func (r *blacklistRepo) Contains(ctx context.Context, token string) (bool, error) {
	return r.q.BlacklistEntryExists(ctx, gen.BlacklistEntryExistsParams{
		TokenFingerprint: cryptox.FingerprintToken(token),
		Now:              utc(r.now()),
	})
}

func (r *blacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredBlacklistEntries(ctx, utc(now))
}
