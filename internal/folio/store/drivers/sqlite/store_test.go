package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite"
	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newAccount(username string) domain.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		AuthProvider: domain.ProviderLocal,
		Security:     domain.SecurityState{IsActive: true},
		Preferences:  domain.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestAccountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := newAccount("alice")
	a.Profile = domain.Profile{
		FirstName:            "Alice",
		LastName:             "Liddell",
		Headline:             "Engineer",
		Subheadlines:         []string{"Go", "SQL"},
		AboutCards:           []domain.AboutCard{{Category: "work", Content: "backend"}},
		Bio:                  "never stored",
		BioEncrypted:         "aXY=:Y3Q=:dGFn",
		PublicEmailEncrypted: "aXY=:Y3Q=:dGFn",
	}
	a.Skills = []domain.SkillGroup{{Category: "lang", Items: []string{"go"}}}
	a.Social = domain.Social{Github: "alice"}
	require.NoError(t, s.Accounts().Create(ctx, a))

	got, err := s.Accounts().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, a.PasswordHash, got.PasswordHash)
	require.Equal(t, "Alice Liddell", got.FullName())
	require.Equal(t, []string{"Go", "SQL"}, got.Profile.Subheadlines)
	require.Equal(t, a.Profile.BioEncrypted, got.Profile.BioEncrypted)
	require.Empty(t, got.Profile.Bio, "plaintext bio is never persisted")
	require.Equal(t, a.Skills, got.Skills)
	require.Equal(t, "alice", got.Social.Github)
	require.True(t, got.Preferences.PublicProfile)
	require.True(t, got.Security.IsActive)
	require.True(t, a.CreatedAt.Equal(got.CreatedAt))

	byName, err := s.Accounts().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, a.ID, byName.ID)

	_, err = s.Accounts().GetByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Accounts().Create(ctx, newAccount("bob")))

	t.Run("same email", func(t *testing.T) {
		dup := newAccount("bobby")
		dup.Email = "bob@example.com"
		require.ErrorIs(t, s.Accounts().Create(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("same username", func(t *testing.T) {
		dup := newAccount("bob")
		dup.Email = "other@example.com"
		require.ErrorIs(t, s.Accounts().Create(ctx, dup), store.ErrAlreadyExists)
	})
}

func TestAccountsFederatedRequiresSubject(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	fed := newAccount("carol")
	fed.AuthProvider = domain.ProviderFederated
	fed.PasswordHash = ""
	require.Error(t, s.Accounts().Create(ctx, fed), "schema check rejects a federated account without subject")

	fed.FederatedSubject = "google|123"
	require.NoError(t, s.Accounts().Create(ctx, fed))

	got, err := s.Accounts().GetByFederatedSubject(ctx, "google|123")
	require.NoError(t, err)
	require.Empty(t, got.PasswordHash)
	require.False(t, got.IsLocal())
}

func TestAccountsSecurityAndRing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := newAccount("dave")
	require.NoError(t, s.Accounts().Create(ctx, a))

	now := time.Now().UTC()
	locked := now.Add(15 * time.Minute)
	resetExp := now.Add(time.Hour)
	sec := domain.SecurityState{
		IsActive:               true,
		FailedLoginAttempts:    5,
		LockedUntil:            &locked,
		PasswordResetTokenHash: "digest-1",
		PasswordResetExpires:   &resetExp,
	}
	require.NoError(t, s.Accounts().UpdateSecurity(ctx, a.ID, sec))

	records := make([]domain.RefreshTokenRecord, 0, 3)
	for i := range 3 {
		records = append(records, domain.RefreshTokenRecord{
			Token:     "fp-" + string(rune('a'+i)),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			ExpiresAt: now.Add(7 * 24 * time.Hour),
		})
	}
	require.NoError(t, s.Accounts().ReplaceRefreshTokens(ctx, a.ID, records))

	got, err := s.Accounts().GetByResetTokenHash(ctx, "digest-1", now)
	require.NoError(t, err)
	require.Equal(t, 5, got.Security.FailedLoginAttempts)
	require.NotNil(t, got.Security.LockedUntil)
	require.WithinDuration(t, locked, *got.Security.LockedUntil, time.Microsecond)

	stored := got.Security.RefreshTokens.Records()
	require.Len(t, stored, 3)
	require.Equal(t, "fp-a", stored[0].Token, "ring keeps insertion order")
	require.Equal(t, "fp-c", stored[2].Token)

	_, err = s.Accounts().GetByResetTokenHash(ctx, "digest-1", resetExp.Add(time.Second))
	require.ErrorIs(t, err, store.ErrNotFound, "expired digest does not match")

	require.ErrorIs(t, s.Accounts().UpdateSecurity(ctx, "missing", sec), store.ErrNotFound)
}

func TestAccountsHousekeepingQueries(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := newAccount("erin")
	require.NoError(t, s.Accounts().Create(ctx, a))

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	require.NoError(t, s.Accounts().UpdateSecurity(ctx, a.ID, domain.SecurityState{
		IsActive:               true,
		PasswordResetTokenHash: "old-reset",
		PasswordResetExpires:   &past,
		VerificationTokenHash:  "live-verify",
		VerificationExpires:    &future,
	}))
	require.NoError(t, s.Accounts().ReplaceRefreshTokens(ctx, a.ID, []domain.RefreshTokenRecord{
		{Token: "expired", CreatedAt: past.Add(-time.Hour), ExpiresAt: past},
		{Token: "live", CreatedAt: now, ExpiresAt: future},
	}))

	n, err := s.Accounts().DeleteExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Accounts().ClearExpiredOneTimeTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, got.Security.PasswordResetTokenHash)
	require.Nil(t, got.Security.PasswordResetExpires)
	require.Equal(t, "live-verify", got.Security.VerificationTokenHash)
	require.Equal(t, 1, got.Security.RefreshTokens.Len())
}

func TestAccountsLegacyPlaintext(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := newAccount("frank")
	require.NoError(t, s.Accounts().Create(ctx, a))
	require.NoError(t, s.Accounts().Create(ctx, newAccount("grace")))

	require.NoError(t, s.SetLegacyPlaintext(ctx, a.ID, "old bio", ""))

	legacy, err := s.Accounts().ListLegacyPlaintext(ctx)
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	require.Equal(t, store.LegacyPlaintext{AccountID: a.ID, Username: "frank", Bio: "old bio"}, legacy[0])

	require.NoError(t, s.Accounts().ClearLegacyPlaintext(ctx, a.ID))
	legacy, err = s.Accounts().ListLegacyPlaintext(ctx)
	require.NoError(t, err)
	require.Empty(t, legacy)
}

func TestAccountsListCountRoleActive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, name := range []string{"hank", "ivan", "judy"} {
		require.NoError(t, s.Accounts().Create(ctx, newAccount(name)))
	}

	count, err := s.Accounts().Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	page, err := s.Accounts().List(ctx, store.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)

	a, err := s.Accounts().GetByUsername(ctx, "ivan")
	require.NoError(t, err)
	require.NoError(t, s.Accounts().UpdateRole(ctx, a.ID, domain.RoleAdmin))
	require.NoError(t, s.Accounts().SetActive(ctx, a.ID, false))

	a, err = s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, a.IsAdmin())
	require.False(t, a.Security.IsActive)

	require.NoError(t, s.Accounts().Delete(ctx, a.ID))
	require.ErrorIs(t, s.Accounts().Delete(ctx, a.ID), store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Accounts().Create(ctx, newAccount("kate")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetByUsername(ctx, "kate")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Accounts().Create(ctx, newAccount("kate"))
	}))
	_, err = s.Accounts().GetByUsername(ctx, "kate")
	require.NoError(t, err)
}

func TestNestedTxIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tx, err := s.Tx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Tx(ctx)
	require.Error(t, err)
}
