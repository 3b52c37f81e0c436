package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

const MsgSlugTaken = "A post with this slug already exists"

// Actor is the authenticated caller of a content operation.
type Actor struct {
	AccountID string
	Role      domain.Role
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// PortfolioService manages projects and blog posts. Callers may only touch
// their own content unless they are admins.
type PortfolioService struct {
	Store store.Store
	Clock Clock
}

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Title               string
	Description         string
	DetailedDescription string
	Technologies        []string
	Links               domain.ProjectLinks
	Status              domain.ProjectStatus
	Category            string
	Featured            bool
	Priority            int
	Visibility          domain.Visibility
	Tags                []string
	StartDate           *time.Time
	EndDate             *time.Time
}

// PostInput carries the editable fields of a post. An empty Slug is derived
// from the title.
type PostInput struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	Tags       []string
	Categories []string
	Status     domain.PostStatus
	Featured   bool
}

func authorize(actor Actor, ownerID string) error {
	if actor.IsAdmin() || actor.AccountID == ownerID {
		return nil
	}
	return newError(KindForbidden, MsgNotOwner, ErrNotOwner)
}

func domainValidation(err error) (*Error, bool) {
	ve, ok := domain.AsValidationError(err)
	if !ok {
		return nil, false
	}
	return validation("Validation failed", ve.Fields), true
}

func (s *PortfolioService) ListProjects(ctx context.Context, actor Actor) ([]domain.Project, error) {
	projects, err := s.Store.Projects().ListByAccount(ctx, actor.AccountID, false)
	if err != nil {
		return nil, internal(err)
	}
	return projects, nil
}

func (s *PortfolioService) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (domain.Project, error) {
	now := s.Clock.Now()
	p := domain.Project{
		ID:        idx.NewAt(now).String(),
		AccountID: actor.AccountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.applyTo(&p)
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		if verr, ok := domainValidation(err); ok {
			return domain.Project{}, verr
		}
		return domain.Project{}, internal(err)
	}
	if err := s.Store.Projects().Create(ctx, p); err != nil {
		return domain.Project{}, internal(err)
	}
	slogx.FromContext(ctx).Info("project created",
		slog.String("account_id", actor.AccountID), slog.String("project_id", p.ID))
	return p, nil
}

func (s *PortfolioService) UpdateProject(ctx context.Context, actor Actor, id string, in ProjectInput) (domain.Project, error) {
	var updated domain.Project
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Projects().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, p.AccountID); err != nil {
			return err
		}
		in.applyTo(&p)
		p.ApplyDefaults()
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = s.Clock.Now()
		if err := tx.Projects().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return domain.Project{}, s.contentError(err, "Project")
	}
	return updated, nil
}

func (s *PortfolioService) DeleteProject(ctx context.Context, actor Actor, id string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Projects().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, p.AccountID); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return s.contentError(err, "Project")
	}
	slogx.FromContext(ctx).Info("project deleted",
		slog.String("actor_id", actor.AccountID), slog.String("project_id", id))
	return nil
}

func (s *PortfolioService) ListPosts(ctx context.Context, actor Actor) ([]domain.Post, error) {
	posts, err := s.Store.Posts().ListByAccount(ctx, actor.AccountID, false)
	if err != nil {
		return nil, internal(err)
	}
	return posts, nil
}

func (s *PortfolioService) CreatePost(ctx context.Context, actor Actor, in PostInput) (domain.Post, error) {
	now := s.Clock.Now()
	p := domain.Post{
		ID:        idx.NewAt(now).String(),
		AccountID: actor.AccountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.applyTo(&p)
	p.Prepare(now)
	if err := p.Validate(); err != nil {
		if verr, ok := domainValidation(err); ok {
			return domain.Post{}, verr
		}
		return domain.Post{}, internal(err)
	}
	if err := s.Store.Posts().Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Post{}, newError(KindConflict, MsgSlugTaken, err)
		}
		return domain.Post{}, internal(err)
	}
	slogx.FromContext(ctx).Info("post created",
		slog.String("account_id", actor.AccountID), slog.String("post_id", p.ID))
	return p, nil
}

// UpdatePost replaces the editable fields of a post. PublishedAt is kept once
// set, so republishing does not move a post.
func (s *PortfolioService) UpdatePost(ctx context.Context, actor Actor, id string, in PostInput) (domain.Post, error) {
	var updated domain.Post
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Posts().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, p.AccountID); err != nil {
			return err
		}
		in.applyTo(&p)
		now := s.Clock.Now()
		p.Prepare(now)
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = now
		if err := tx.Posts().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return domain.Post{}, s.contentError(err, "Post")
	}
	return updated, nil
}

func (s *PortfolioService) DeletePost(ctx context.Context, actor Actor, id string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Posts().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, p.AccountID); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, id)
	})
	if err != nil {
		return s.contentError(err, "Post")
	}
	slogx.FromContext(ctx).Info("post deleted",
		slog.String("actor_id", actor.AccountID), slog.String("post_id", id))
	return nil
}

// contentError maps errors from a content transaction to service errors.
func (s *PortfolioService) contentError(err error, what string) error {
	var se *Error
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, store.ErrNotFound):
		return notFound(what)
	case errors.Is(err, store.ErrAlreadyExists):
		return newError(KindConflict, MsgSlugTaken, err)
	}
	if verr, ok := domainValidation(err); ok {
		return verr
	}
	return internal(err)
}

func (in ProjectInput) applyTo(p *domain.Project) {
	p.Title = Sanitize(in.Title)
	p.Description = Sanitize(in.Description)
	p.DetailedDescription = SanitizeHTML(in.DetailedDescription)
	p.Technologies = sanitizeAll(in.Technologies)
	p.Links = domain.ProjectLinks{
		GitHub: SanitizeURL(in.Links.GitHub),
		Live:   SanitizeURL(in.Links.Live),
		Demo:   SanitizeURL(in.Links.Demo),
	}
	p.Status = in.Status
	p.Category = in.Category
	p.Featured = in.Featured
	p.Priority = in.Priority
	p.Visibility = in.Visibility
	p.Tags = sanitizeAll(in.Tags)
	p.StartDate = utcPtr(in.StartDate)
	p.EndDate = utcPtr(in.EndDate)
}

func (in PostInput) applyTo(p *domain.Post) {
	p.Title = Sanitize(in.Title)
	p.Slug = in.Slug
	p.Excerpt = Sanitize(in.Excerpt)
	p.Content = SanitizeHTML(in.Content)
	p.Tags = sanitizeAll(in.Tags)
	p.Categories = sanitizeAll(in.Categories)
	p.Status = in.Status
	p.Featured = in.Featured
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
