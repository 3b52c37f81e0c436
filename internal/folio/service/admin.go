package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200

	MsgSelfDelete  = "Cannot delete your own admin account"
	MsgSelfRole    = "Cannot change your own admin role"
	MsgSelfActive  = "Cannot deactivate your own admin account"
	MsgInvalidRole = `Invalid role. Must be "user" or "admin"`
)

// AdminService is the management surface for administrators. Callers are
// expected to be authorised as admins already.
type AdminService struct {
	Store    store.Store
	Profiles *ProfileService
	Clock    Clock
}

// AccountPage is one page of accounts. Limit and Offset are the values
// actually used after clamping.
type AccountPage struct {
	Accounts []AccountSummary
	Total    int64
	Limit    int
	Offset   int
}

// DeletedAccount reports what a cascading account delete removed.
type DeletedAccount struct {
	Projects int64
	Posts    int64
}

func (s *AdminService) ListAccounts(ctx context.Context, page store.Page) (AccountPage, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	page.Limit = min(page.Limit, MaxPageSize)
	page.Offset = max(page.Offset, 0)

	accounts, err := s.Store.Accounts().List(ctx, page)
	if err != nil {
		return AccountPage{}, internal(err)
	}
	total, err := s.Store.Accounts().Count(ctx)
	if err != nil {
		return AccountPage{}, internal(err)
	}
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, Summarize(a))
	}
	return AccountPage{Accounts: out, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *AdminService) GetAccount(ctx context.Context, id string) (AccountSummary, error) {
	a, err := s.Store.Accounts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, notFound("User")
		}
		return AccountSummary{}, internal(err)
	}
	summary := Summarize(a)
	summary.Profile = s.Profiles.reveal(ctx, a)
	return summary, nil
}

func (s *AdminService) GetPortfolio(ctx context.Context, id string) (PortfolioView, error) {
	return s.Profiles.Get(ctx, id)
}

func (s *AdminService) UpdatePortfolio(ctx context.Context, actor Actor, id string, u ProfileUpdate) (PortfolioView, error) {
	view, err := s.Profiles.Update(ctx, id, u)
	if err != nil {
		return PortfolioView{}, err
	}
	slogx.FromContext(ctx).Info("admin updated portfolio",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", id))
	return view, nil
}

// DeleteProject removes projectID if it belongs to accountID.
func (s *AdminService) DeleteProject(ctx context.Context, actor Actor, accountID, projectID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Projects().Get(ctx, projectID)
		if err != nil {
			return err
		}
		if p.AccountID != accountID {
			return store.ErrNotFound
		}
		return tx.Projects().Delete(ctx, projectID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Project")
		}
		return internal(err)
	}
	slogx.FromContext(ctx).Info("admin deleted project",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", accountID),
		slog.String("project_id", projectID))
	return nil
}

// DeletePost removes postID if it belongs to accountID.
func (s *AdminService) DeletePost(ctx context.Context, actor Actor, accountID, postID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Posts().Get(ctx, postID)
		if err != nil {
			return err
		}
		if p.AccountID != accountID {
			return store.ErrNotFound
		}
		return tx.Posts().Delete(ctx, postID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Post")
		}
		return internal(err)
	}
	slogx.FromContext(ctx).Info("admin deleted post",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", accountID),
		slog.String("post_id", postID))
	return nil
}

// DeleteAccount removes an account with all of its projects and posts in one
// transaction. Admins cannot delete themselves.
func (s *AdminService) DeleteAccount(ctx context.Context, actor Actor, id string) (DeletedAccount, error) {
	if actor.AccountID == id {
		return DeletedAccount{}, newError(KindValidation, MsgSelfDelete, ErrSelfAction)
	}

	var out DeletedAccount
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Accounts().GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		if out.Projects, err = tx.Projects().DeleteByAccount(ctx, id); err != nil {
			return err
		}
		if out.Posts, err = tx.Posts().DeleteByAccount(ctx, id); err != nil {
			return err
		}
		return tx.Accounts().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return DeletedAccount{}, notFound("User")
		}
		return DeletedAccount{}, internal(err)
	}

	slogx.FromContext(ctx).Info("admin deleted account",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", id),
		slog.Int64("projects", out.Projects), slog.Int64("posts", out.Posts))
	return out, nil
}

func (s *AdminService) SetActive(ctx context.Context, actor Actor, id string, active bool) (AccountSummary, error) {
	if actor.AccountID == id && !active {
		return AccountSummary{}, newError(KindValidation, MsgSelfActive, ErrSelfAction)
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetActive(ctx, id, active); err != nil {
			return err
		}
		if active {
			return nil
		}
		// Deactivation also ends existing sessions.
		return tx.Accounts().ReplaceRefreshTokens(ctx, id, nil)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, notFound("User")
		}
		return AccountSummary{}, internal(err)
	}
	slogx.FromContext(ctx).Info("admin changed account status",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", id),
		slog.Bool("active", active))
	return s.GetAccount(ctx, id)
}

func (s *AdminService) SetRole(ctx context.Context, actor Actor, id string, role domain.Role) (AccountSummary, error) {
	if !role.Valid() {
		return AccountSummary{}, validation(MsgInvalidRole, map[string]string{"role": MsgInvalidRole})
	}
	if actor.AccountID == id {
		return AccountSummary{}, newError(KindValidation, MsgSelfRole, ErrSelfAction)
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdateRole(ctx, id, role); err != nil {
			return err
		}
		// Sessions carry the role they were issued with.
		return tx.Accounts().ReplaceRefreshTokens(ctx, id, nil)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, notFound("User")
		}
		return AccountSummary{}, internal(err)
	}
	slogx.FromContext(ctx).Info("admin changed account role",
		slog.String("actor_id", actor.AccountID), slog.String("account_id", id),
		slog.String("role", string(role)))
	return s.GetAccount(ctx, id)
}
