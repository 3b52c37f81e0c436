package gen

import (
	"context"
	"database/sql"
	"time"
)

const projectColumns = `id, account_id, title, description, detailed_description, technologies_json, links_json,
    status, category, featured, priority, visibility, tags_json, start_date, end_date, created_at, updated_at`

func scanProject(row rowScanner) (Project, error) {
	var i Project
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Title,
		&i.Description,
		&i.DetailedDescription,
		&i.TechnologiesJson,
		&i.LinksJson,
		&i.Status,
		&i.Category,
		&i.Featured,
		&i.Priority,
		&i.Visibility,
		&i.TagsJson,
		&i.StartDate,
		&i.EndDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createProject = `-- name: CreateProject :exec
INSERT INTO projects (` + projectColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateProjectParams struct {
	ID                  string
	AccountID           string
	Title               string
	Description         string
	DetailedDescription string
	TechnologiesJson    string
	LinksJson           string
	Status              string
	Category            string
	Featured            bool
	Priority            int64
	Visibility          string
	TagsJson            string
	StartDate           sql.NullTime
	EndDate             sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) error {
	_, err := q.db.ExecContext(ctx, createProject,
		arg.ID,
		arg.AccountID,
		arg.Title,
		arg.Description,
		arg.DetailedDescription,
		arg.TechnologiesJson,
		arg.LinksJson,
		arg.Status,
		arg.Category,
		arg.Featured,
		arg.Priority,
		arg.Visibility,
		arg.TagsJson,
		arg.StartDate,
		arg.EndDate,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getProject = `-- name: GetProject :one
SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProject, id))
}

const listProjectsByAccount = `-- name: ListProjectsByAccount :many
SELECT ` + projectColumns + ` FROM projects WHERE account_id = ?
ORDER BY featured DESC, priority DESC, created_at DESC`

func (q *Queries) ListProjectsByAccount(ctx context.Context, accountID string) ([]Project, error) {
	return q.listProjects(ctx, listProjectsByAccount, accountID)
}

const listPublicProjectsByAccount = `-- name: ListPublicProjectsByAccount :many
SELECT ` + projectColumns + ` FROM projects WHERE account_id = ? AND visibility = 'public'
ORDER BY featured DESC, priority DESC, created_at DESC`

func (q *Queries) ListPublicProjectsByAccount(ctx context.Context, accountID string) ([]Project, error) {
	return q.listProjects(ctx, listPublicProjectsByAccount, accountID)
}

func (q *Queries) listProjects(ctx context.Context, query, accountID string) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		i, err := scanProject(rows)
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

const updateProject = `-- name: UpdateProject :execrows
UPDATE projects SET
    title = ?,
    description = ?,
    detailed_description = ?,
    technologies_json = ?,
    links_json = ?,
    status = ?,
    category = ?,
    featured = ?,
    priority = ?,
    visibility = ?,
    tags_json = ?,
    start_date = ?,
    end_date = ?,
    updated_at = ?
WHERE id = ?`

type UpdateProjectParams struct {
	Title               string
	Description         string
	DetailedDescription string
	TechnologiesJson    string
	LinksJson           string
	Status              string
	Category            string
	Featured            bool
	Priority            int64
	Visibility          string
	TagsJson            string
	StartDate           sql.NullTime
	EndDate             sql.NullTime
	UpdatedAt           time.Time
	ID                  string
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateProject,
		arg.Title,
		arg.Description,
		arg.DetailedDescription,
		arg.TechnologiesJson,
		arg.LinksJson,
		arg.Status,
		arg.Category,
		arg.Featured,
		arg.Priority,
		arg.Visibility,
		arg.TagsJson,
		arg.StartDate,
		arg.EndDate,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteProject = `-- name: DeleteProject :execrows
DELETE FROM projects WHERE id = ?`

func (q *Queries) DeleteProject(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteProject, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteProjectsByAccount = `-- name: DeleteProjectsByAccount :execrows
DELETE FROM projects WHERE account_id = ?`

func (q *Queries) DeleteProjectsByAccount(ctx context.Context, accountID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteProjectsByAccount, accountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countProjectsByAccount = `-- name: CountProjectsByAccount :one
SELECT COUNT(*) FROM projects WHERE account_id = ?`

func (q *Queries) CountProjectsByAccount(ctx context.Context, accountID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProjectsByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
