package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories. Repositories obtained from a Tx run inside that
// transaction.
type Store interface {
	Accounts() Accounts
	Projects() Projects
	Posts() Posts

	// Blacklist is the SQL-backed revocation list. Deployments may swap in
	// another Blacklist implementation at wiring time.
	Blacklist() Blacklist

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

// LegacyPlaintext is an account that still carries sensitive profile data in
// the pre-encryption columns.
type LegacyPlaintext struct {
	AccountID   string
	Username    string
	Bio         string
	PublicEmail string
}

type Accounts interface {
	// GetByID and the other getters load the refresh ring as well.
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByFederatedSubject(ctx context.Context, subject string) (domain.Account, error)

	// GetByResetTokenHash only matches digests whose expiry is after now.
	GetByResetTokenHash(ctx context.Context, digest string, now time.Time) (domain.Account, error)
	GetByVerificationTokenHash(ctx context.Context, digest string, now time.Time) (domain.Account, error)

	// Create inserts a new account. Duplicate username, email or subject
	// yields ErrAlreadyExists.
	Create(ctx context.Context, a domain.Account) error

	// UpdateSecurity writes every SecurityState field except the ring.
	UpdateSecurity(ctx context.Context, id string, sec domain.SecurityState) error

	// ReplaceRefreshTokens overwrites the persisted ring, oldest first.
	ReplaceRefreshTokens(ctx context.Context, id string, records []domain.RefreshTokenRecord) error

	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// UpdateProfile writes profile content. Only the encrypted forms of bio
	// and public email are stored.
	UpdateProfile(ctx context.Context, a domain.Account) error

	UpdateRole(ctx context.Context, id string, role domain.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, page Page) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)

	// ListLegacyPlaintext returns accounts with data in the legacy columns.
	ListLegacyPlaintext(ctx context.Context) ([]LegacyPlaintext, error)
	// ClearLegacyPlaintext nulls the legacy columns for one account.
	ClearLegacyPlaintext(ctx context.Context, id string) error

	// DeleteExpiredRefreshTokens drops ring records past their expiry.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
	// ClearExpiredOneTimeTokens nulls reset and verification digests past
	// their expiry.
	ClearExpiredOneTimeTokens(ctx context.Context, now time.Time) (int64, error)
}

type Projects interface {
	Create(ctx context.Context, p domain.Project) error
	Get(ctx context.Context, id string) (domain.Project, error)
	ListByAccount(ctx context.Context, accountID string, publicOnly bool) ([]domain.Project, error)
	Update(ctx context.Context, p domain.Project) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

type Posts interface {
	// Create fails with ErrAlreadyExists on a duplicate slug.
	Create(ctx context.Context, p domain.Post) error
	Get(ctx context.Context, id string) (domain.Post, error)
	ListByAccount(ctx context.Context, accountID string, publishedOnly bool) ([]domain.Post, error)
	Update(ctx context.Context, p domain.Post) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

// Blacklist records revoked access tokens until they expire. Implementations
// key entries by a fingerprint of the raw token.
type Blacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	// DeleteExpired purges entries whose expiry is not after now. Drivers
	// with native expiry return 0.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
