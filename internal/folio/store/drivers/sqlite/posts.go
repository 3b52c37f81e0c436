package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite/gen"
)

type postsRepo struct {
	q *gen.Queries
}

func (r *postsRepo) Create(ctx context.Context, p domain.Post) error {
	tags, categories, err := encodePostLists(p)
	if err != nil {
		return err
	}
	err = r.q.CreatePost(ctx, gen.CreatePostParams{
		ID:             p.ID,
		AccountID:      p.AccountID,
		Title:          p.Title,
		Slug:           p.Slug,
		Excerpt:        p.Excerpt,
		Content:        p.Content,
		TagsJson:       tags,
		CategoriesJson: categories,
		Status:         string(p.Status),
		PublishedAt:    mapOptionalTime(p.PublishedAt),
		ReadTime:       int64(p.ReadTime),
		Featured:       p.Featured,
		CreatedAt:      orNow(p.CreatedAt),
		UpdatedAt:      orNow(p.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *postsRepo) Get(ctx context.Context, id string) (domain.Post, error) {
	row, err := r.q.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return mapPost(row)
}

func (r *postsRepo) ListByAccount(ctx context.Context, accountID string, publishedOnly bool) ([]domain.Post, error) {
	var (
		rows []gen.Post
		err  error
	)
	if publishedOnly {
		rows, err = r.q.ListPublishedPostsByAccount(ctx, accountID)
	} else {
		rows, err = r.q.ListPostsByAccount(ctx, accountID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		p, err := mapPost(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *postsRepo) Update(ctx context.Context, p domain.Post) error {
	tags, categories, err := encodePostLists(p)
	if err != nil {
		return err
	}
	n, err := r.q.UpdatePost(ctx, gen.UpdatePostParams{
		Title:          p.Title,
		Slug:           p.Slug,
		Excerpt:        p.Excerpt,
		Content:        p.Content,
		TagsJson:       tags,
		CategoriesJson: categories,
		Status:         string(p.Status),
		PublishedAt:    mapOptionalTime(p.PublishedAt),
		ReadTime:       int64(p.ReadTime),
		Featured:       p.Featured,
		UpdatedAt:      orNow(p.UpdatedAt),
		ID:             p.ID,
	})
	return mustAffect(n, mapConstraint(err))
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.DeletePost(ctx, id))
}

func (r *postsRepo) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	return r.q.DeletePostsByAccount(ctx, accountID)
}

func (r *postsRepo) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	return r.q.CountPostsByAccount(ctx, accountID)
}

func encodePostLists(p domain.Post) (tags, categories string, err error) {
	if tags, err = marshalJSON(nonNil(p.Tags)); err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	if categories, err = marshalJSON(nonNil(p.Categories)); err != nil {
		return "", "", fmt.Errorf("encode categories: %w", err)
	}
	return tags, categories, nil
}

func mapPost(row gen.Post) (domain.Post, error) {
	p := domain.Post{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Title:       row.Title,
		Slug:        row.Slug,
		Excerpt:     row.Excerpt,
		Content:     row.Content,
		Status:      domain.PostStatus(row.Status),
		PublishedAt: mapNullTimePtr(row.PublishedAt),
		ReadTime:    int(row.ReadTime),
		Featured:    row.Featured,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.TagsJson, &p.Tags); err != nil {
		return domain.Post{}, fmt.Errorf("decode tags of %s: %w", row.ID, err)
	}
	if err := unmarshalJSON(row.CategoriesJson, &p.Categories); err != nil {
		return domain.Post{}, fmt.Errorf("decode categories of %s: %w", row.ID, err)
	}
	return p, nil
}
