package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite"
	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestProjectsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := newAccount("owner")
	require.NoError(t, s.Accounts().Create(ctx, owner))

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	public := domain.Project{
		ID:           idx.New().String(),
		AccountID:    owner.ID,
		Title:        "Folio",
		Description:  "Portfolio backend",
		Technologies: []string{"go", "sqlite"},
		Links:        domain.ProjectLinks{GitHub: "https://github.com/example/folio"},
		StartDate:    &start,
	}
	public.ApplyDefaults()
	private := domain.Project{ID: idx.New().String(), AccountID: owner.ID, Title: "Secret", Description: "Hidden", Visibility: domain.VisibilityPrivate}
	private.ApplyDefaults()

	require.NoError(t, s.Projects().Create(ctx, public))
	require.NoError(t, s.Projects().Create(ctx, private))

	got, err := s.Projects().Get(ctx, public.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "sqlite"}, got.Technologies)
	require.Equal(t, public.Links, got.Links)
	require.Equal(t, domain.ProjectPlanning, got.Status)
	require.Equal(t, 5, got.Priority)
	require.NotNil(t, got.StartDate)
	require.True(t, start.Equal(*got.StartDate))
	require.Nil(t, got.EndDate)

	all, err := s.Projects().ListByAccount(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	visible, err := s.Projects().ListByAccount(ctx, owner.ID, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, public.ID, visible[0].ID)

	got.Status = domain.ProjectCompleted
	got.Featured = true
	require.NoError(t, s.Projects().Update(ctx, got))
	got, err = s.Projects().Get(ctx, public.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectCompleted, got.Status)
	require.True(t, got.Featured)

	n, err := s.Projects().CountByAccount(ctx, owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, s.Projects().Delete(ctx, private.ID))
	require.ErrorIs(t, s.Projects().Delete(ctx, private.ID), store.ErrNotFound)

	n, err = s.Projects().DeleteByAccount(ctx, owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestPostsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := newAccount("writer")
	require.NoError(t, s.Accounts().Create(ctx, owner))

	now := time.Now().UTC()
	draft := domain.Post{ID: idx.New().String(), AccountID: owner.ID, Title: "Hello World", Excerpt: "hi", Content: "some words"}
	draft.Prepare(now)
	published := domain.Post{ID: idx.New().String(), AccountID: owner.ID, Title: "Second", Excerpt: "two", Content: "more", Status: domain.PostPublished, Tags: []string{"Go"}}
	published.Prepare(now)

	require.NoError(t, s.Posts().Create(ctx, draft))
	require.NoError(t, s.Posts().Create(ctx, published))

	dup := draft
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Posts().Create(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Posts().Get(ctx, published.ID)
	require.NoError(t, err)
	require.Equal(t, "second", got.Slug)
	require.Equal(t, []string{"go"}, got.Tags)
	require.NotNil(t, got.PublishedAt)

	live, err := s.Posts().ListByAccount(ctx, owner.ID, true)
	require.NoError(t, err)
	require.Len(t, live, 1)

	all, err := s.Posts().ListByAccount(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got.Slug = "hello-world"
	require.ErrorIs(t, s.Posts().Update(ctx, got), store.ErrAlreadyExists)

	got.Slug = "second-edition"
	require.NoError(t, s.Posts().Update(ctx, got))

	n, err := s.Posts().CountByAccount(ctx, owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, s.Posts().Delete(ctx, draft.ID))
	n, err = s.Posts().DeleteByAccount(ctx, owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	bl := s.Blacklist()

	ok, err := bl.Contains(ctx, "access-jwt")
	require.NoError(t, err)
	require.False(t, ok)

	exp := time.Now().Add(10 * time.Minute)
	require.NoError(t, bl.Add(ctx, "access-jwt", exp))
	require.NoError(t, bl.Add(ctx, "access-jwt", exp), "adding twice is not an error")

	ok, err = bl.Contains(ctx, "access-jwt")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, bl.Add(ctx, "stale-jwt", time.Now().Add(-time.Minute)))
	ok, err = bl.Contains(ctx, "stale-jwt")
	require.NoError(t, err)
	require.False(t, ok, "expired entries no longer count")

	n, err := bl.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = bl.DeleteExpired(ctx, exp.Add(time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestBlacklistUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newStore(t, sqlite.WithClock(func() time.Time { return now }))

	require.NoError(t, s.Blacklist().Add(ctx, "live", now.Add(time.Minute)))
	require.NoError(t, s.Blacklist().Add(ctx, "gone", now.Add(-time.Minute)))

	tests := []struct {
		name    string
		advance time.Duration
		token   string
		want    bool
	}{
		{"unexpired entry", 0, "live", true},
		{"expired by the clock", 0, "gone", false},
		{"clock passes expiry", 2 * time.Minute, "live", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = now.Add(tt.advance)
			ok, err := s.Blacklist().Contains(ctx, tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}

	t.Run("transactions share the clock", func(t *testing.T) {
		now = now.Add(-2 * time.Minute)
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			ok, err := tx.Blacklist().Contains(ctx, "live")
			require.NoError(t, err)
			require.True(t, ok)
			return nil
		}))
	})
}
