package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite/gen"
)

type projectsRepo struct {
	q *gen.Queries
}

type projectDocs struct {
	technologies string
	links        string
	tags         string
}

func encodeProject(p domain.Project) (projectDocs, error) {
	var (
		d   projectDocs
		err error
	)
	if d.technologies, err = marshalJSON(nonNil(p.Technologies)); err != nil {
		return d, fmt.Errorf("encode technologies: %w", err)
	}
	if d.links, err = marshalJSON(p.Links); err != nil {
		return d, fmt.Errorf("encode links: %w", err)
	}
	if d.tags, err = marshalJSON(nonNil(p.Tags)); err != nil {
		return d, fmt.Errorf("encode tags: %w", err)
	}
	return d, nil
}

func (r *projectsRepo) Create(ctx context.Context, p domain.Project) error {
	d, err := encodeProject(p)
	if err != nil {
		return err
	}
	err = r.q.CreateProject(ctx, gen.CreateProjectParams{
		ID:                  p.ID,
		AccountID:           p.AccountID,
		Title:               p.Title,
		Description:         p.Description,
		DetailedDescription: p.DetailedDescription,
		TechnologiesJson:    d.technologies,
		LinksJson:           d.links,
		Status:              string(p.Status),
		Category:            p.Category,
		Featured:            p.Featured,
		Priority:            int64(p.Priority),
		Visibility:          string(p.Visibility),
		TagsJson:            d.tags,
		StartDate:           mapOptionalTime(p.StartDate),
		EndDate:             mapOptionalTime(p.EndDate),
		CreatedAt:           orNow(p.CreatedAt),
		UpdatedAt:           orNow(p.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *projectsRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	row, err := r.q.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return mapProject(row)
}

func (r *projectsRepo) ListByAccount(ctx context.Context, accountID string, publicOnly bool) ([]domain.Project, error) {
	var (
		rows []gen.Project
		err  error
	)
	if publicOnly {
		rows, err = r.q.ListPublicProjectsByAccount(ctx, accountID)
	} else {
		rows, err = r.q.ListProjectsByAccount(ctx, accountID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		p, err := mapProject(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *projectsRepo) Update(ctx context.Context, p domain.Project) error {
	d, err := encodeProject(p)
	if err != nil {
		return err
	}
	return mustAffect(r.q.UpdateProject(ctx, gen.UpdateProjectParams{
		Title:               p.Title,
		Description:         p.Description,
		DetailedDescription: p.DetailedDescription,
		TechnologiesJson:    d.technologies,
		LinksJson:           d.links,
		Status:              string(p.Status),
		Category:            p.Category,
		Featured:            p.Featured,
		Priority:            int64(p.Priority),
		Visibility:          string(p.Visibility),
		TagsJson:            d.tags,
		StartDate:           mapOptionalTime(p.StartDate),
		EndDate:             mapOptionalTime(p.EndDate),
		UpdatedAt:           orNow(p.UpdatedAt),
		ID:                  p.ID,
	}))
}

func (r *projectsRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.DeleteProject(ctx, id))
}

func (r *projectsRepo) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	return r.q.DeleteProjectsByAccount(ctx, accountID)
}

func (r *projectsRepo) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	return r.q.CountProjectsByAccount(ctx, accountID)
}

func mapProject(row gen.Project) (domain.Project, error) {
	p := domain.Project{
		ID:                  row.ID,
		AccountID:           row.AccountID,
		Title:               row.Title,
		Description:         row.Description,
		DetailedDescription: row.DetailedDescription,
		Status:              domain.ProjectStatus(row.Status),
		Category:            row.Category,
		Featured:            row.Featured,
		Priority:            int(row.Priority),
		Visibility:          domain.Visibility(row.Visibility),
		StartDate:           mapNullTimePtr(row.StartDate),
		EndDate:             mapNullTimePtr(row.EndDate),
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.TechnologiesJson, &p.Technologies); err != nil {
		return domain.Project{}, fmt.Errorf("decode technologies of %s: %w", row.ID, err)
	}
	if err := unmarshalJSON(row.LinksJson, &p.Links); err != nil {
		return domain.Project{}, fmt.Errorf("decode links of %s: %w", row.ID, err)
	}
	if err := unmarshalJSON(row.TagsJson, &p.Tags); err != nil {
		return domain.Project{}, fmt.Errorf("decode tags of %s: %w", row.ID, err)
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return utc(time.Now())
	}
	return utc(t)
}
