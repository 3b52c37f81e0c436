package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite/gen"
)

type txStore struct {
	tx  *sql.Tx
	q   *gen.Queries
	now func() time.Time
}

func newTx(tx *sql.Tx, now func() time.Time) *txStore {
	return &txStore{
		tx:  tx,
		q:   gen.New(tx),
		now: now,
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op: the connection is already held by the transaction.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts   { return &accountsRepo{q: t.q} }
func (t *txStore) Projects() store.Projects   { return &projectsRepo{q: t.q} }
func (t *txStore) Posts() store.Posts         { return &postsRepo{q: t.q} }
func (t *txStore) Blacklist() store.Blacklist { return &blacklistRepo{q: t.q, now: t.now} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
