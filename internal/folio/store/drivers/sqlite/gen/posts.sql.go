package gen

import (
	"context"
	"database/sql"
	"time"
)

const postColumns = `id, account_id, title, slug, excerpt, content, tags_json, categories_json,
    status, published_at, read_time, featured, created_at, updated_at`

func scanPost(row rowScanner) (Post, error) {
	var i Post
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Title,
		&i.Slug,
		&i.Excerpt,
		&i.Content,
		&i.TagsJson,
		&i.CategoriesJson,
		&i.Status,
		&i.PublishedAt,
		&i.ReadTime,
		&i.Featured,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPost = `-- name: CreatePost :exec
INSERT INTO posts (` + postColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreatePostParams struct {
	ID             string
	AccountID      string
	Title          string
	Slug           string
	Excerpt        string
	Content        string
	TagsJson       string
	CategoriesJson string
	Status         string
	PublishedAt    sql.NullTime
	ReadTime       int64
	Featured       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) error {
	_, err := q.db.ExecContext(ctx, createPost,
		arg.ID,
		arg.AccountID,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.TagsJson,
		arg.CategoriesJson,
		arg.Status,
		arg.PublishedAt,
		arg.ReadTime,
		arg.Featured,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getPost = `-- name: GetPost :one
SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPost(ctx context.Context, id string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const listPostsByAccount = `-- name: ListPostsByAccount :many
SELECT ` + postColumns + ` FROM posts WHERE account_id = ?
ORDER BY featured DESC, COALESCE(published_at, created_at) DESC`

func (q *Queries) ListPostsByAccount(ctx context.Context, accountID string) ([]Post, error) {
	return q.listPosts(ctx, listPostsByAccount, accountID)
}

const listPublishedPostsByAccount = `-- name: ListPublishedPostsByAccount :many
SELECT ` + postColumns + ` FROM posts WHERE account_id = ? AND status = 'published'
ORDER BY featured DESC, published_at DESC`

func (q *Queries) ListPublishedPostsByAccount(ctx context.Context, accountID string) ([]Post, error) {
	return q.listPosts(ctx, listPublishedPostsByAccount, accountID)
}

func (q *Queries) listPosts(ctx context.Context, query, accountID string) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
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

const updatePost = `-- name: UpdatePost :execrows
UPDATE posts SET
    title = ?,
    slug = ?,
    excerpt = ?,
    content = ?,
    tags_json = ?,
    categories_json = ?,
    status = ?,
    published_at = ?,
    read_time = ?,
    featured = ?,
    updated_at = ?
WHERE id = ?`

type UpdatePostParams struct {
	Title          string
	Slug           string
	Excerpt        string
	Content        string
	TagsJson       string
	CategoriesJson string
	Status         string
	PublishedAt    sql.NullTime
	ReadTime       int64
	Featured       bool
	UpdatedAt      time.Time
	ID             string
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePost,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.TagsJson,
		arg.CategoriesJson,
		arg.Status,
		arg.PublishedAt,
		arg.ReadTime,
		arg.Featured,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePostsByAccount = `-- name: DeletePostsByAccount :execrows
DELETE FROM posts WHERE account_id = ?`

func (q *Queries) DeletePostsByAccount(ctx context.Context, accountID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePostsByAccount, accountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPostsByAccount = `-- name: CountPostsByAccount :one
SELECT COUNT(*) FROM posts WHERE account_id = ?`

func (q *Queries) CountPostsByAccount(ctx context.Context, accountID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPostsByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
