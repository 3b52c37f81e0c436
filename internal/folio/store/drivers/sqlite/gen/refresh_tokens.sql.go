package gen

import (
	"context"
	"time"
)

const listRefreshTokens = `-- name: ListRefreshTokens :many
SELECT account_id, token_fingerprint, created_at, expires_at, seq FROM refresh_tokens
WHERE account_id = ? ORDER BY seq`

func (q *Queries) ListRefreshTokens(ctx context.Context, accountID string) ([]RefreshToken, error) {
	rows, err := q.db.QueryContext(ctx, listRefreshTokens, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RefreshToken
	for rows.Next() {
		var i RefreshToken
		if err := rows.Scan(
			&i.AccountID,
			&i.TokenFingerprint,
			&i.CreatedAt,
			&i.ExpiresAt,
			&i.Seq,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteRefreshTokensByAccount = `-- name: DeleteRefreshTokensByAccount :exec
DELETE FROM refresh_tokens WHERE account_id = ?`

func (q *Queries) DeleteRefreshTokensByAccount(ctx context.Context, accountID string) error {
	_, err := q.db.ExecContext(ctx, deleteRefreshTokensByAccount, accountID)
	return err
}

const insertRefreshToken = `-- name: InsertRefreshToken :exec
INSERT INTO refresh_tokens (account_id, token_fingerprint, created_at, expires_at, seq)
VALUES (?, ?, ?, ?, ?)`

type InsertRefreshTokenParams struct {
	AccountID        string
	TokenFingerprint string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Seq              int64
}

func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) error {
	_, err := q.db.ExecContext(ctx, insertRefreshToken,
		arg.AccountID,
		arg.TokenFingerprint,
		arg.CreatedAt,
		arg.ExpiresAt,
		arg.Seq,
	)
	return err
}

const deleteExpiredRefreshTokens = `-- name: DeleteExpiredRefreshTokens :execrows
DELETE FROM refresh_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredRefreshTokens, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
