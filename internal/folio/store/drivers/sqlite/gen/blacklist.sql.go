package gen

import (
	"context"
	"time"
)

const addBlacklistEntry = `-- name: AddBlacklistEntry :exec
INSERT INTO token_blacklist (token_fingerprint, expires_at) VALUES (?, ?)
ON CONFLICT (token_fingerprint) DO UPDATE SET expires_at = MAX(expires_at, excluded.expires_at)`

type AddBlacklistEntryParams struct {
	TokenFingerprint string
	ExpiresAt        time.Time
}

func (q *Queries) AddBlacklistEntry(ctx context.Context, arg AddBlacklistEntryParams) error {
	_, err := q.db.ExecContext(ctx, addBlacklistEntry, arg.TokenFingerprint, arg.ExpiresAt)
	return err
}

const blacklistEntryExists = `-- name: BlacklistEntryExists :one
SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_fingerprint = ? AND expires_at > ?)`

type BlacklistEntryExistsParams struct {
	TokenFingerprint string
	Now              time.Time
}

func (q *Queries) BlacklistEntryExists(ctx context.Context, arg BlacklistEntryExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, blacklistEntryExists, arg.TokenFingerprint, arg.Now)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const deleteExpiredBlacklistEntries = `-- name: DeleteExpiredBlacklistEntries :execrows
DELETE FROM token_blacklist WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredBlacklistEntries(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredBlacklistEntries, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
