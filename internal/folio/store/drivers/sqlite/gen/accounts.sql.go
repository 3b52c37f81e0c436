package gen

import (
	"context"
	"database/sql"
	"time"
)

const accountColumns = `id, username, email, password_hash, role, auth_provider, federated_subject,
    is_verified, is_active, failed_login_attempts, locked_until, last_login,
    password_reset_token_hash, password_reset_expires, verification_token_hash, verification_expires,
    profile_json, bio_encrypted, public_email_encrypted, profile_bio_legacy, profile_public_email_legacy,
    skills_json, social_json, preferences_json, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.Role,
		&i.AuthProvider,
		&i.FederatedSubject,
		&i.IsVerified,
		&i.IsActive,
		&i.FailedLoginAttempts,
		&i.LockedUntil,
		&i.LastLogin,
		&i.PasswordResetTokenHash,
		&i.PasswordResetExpires,
		&i.VerificationTokenHash,
		&i.VerificationExpires,
		&i.ProfileJson,
		&i.BioEncrypted,
		&i.PublicEmailEncrypted,
		&i.ProfileBioLegacy,
		&i.ProfilePublicEmailLegacy,
		&i.SkillsJson,
		&i.SocialJson,
		&i.PreferencesJson,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByEmail = `-- name: GetAccountByEmail :one
SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByEmail, email))
}

const getAccountByUsername = `-- name: GetAccountByUsername :one
SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByUsername, username))
}

const getAccountByFederatedSubject = `-- name: GetAccountByFederatedSubject :one
SELECT ` + accountColumns + ` FROM accounts WHERE federated_subject = ?`

func (q *Queries) GetAccountByFederatedSubject(ctx context.Context, subject string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByFederatedSubject, subject))
}

const getAccountByResetTokenHash = `-- name: GetAccountByResetTokenHash :one
SELECT ` + accountColumns + ` FROM accounts
WHERE password_reset_token_hash = ? AND password_reset_expires > ?`

type GetAccountByResetTokenHashParams struct {
	Digest string
	Now    time.Time
}

func (q *Queries) GetAccountByResetTokenHash(ctx context.Context, arg GetAccountByResetTokenHashParams) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByResetTokenHash, arg.Digest, arg.Now))
}

const getAccountByVerificationTokenHash = `-- name: GetAccountByVerificationTokenHash :one
SELECT ` + accountColumns + ` FROM accounts
WHERE verification_token_hash = ? AND verification_expires > ?`

type GetAccountByVerificationTokenHashParams struct {
	Digest string
	Now    time.Time
}

func (q *Queries) GetAccountByVerificationTokenHash(ctx context.Context, arg GetAccountByVerificationTokenHashParams) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByVerificationTokenHash, arg.Digest, arg.Now))
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (
    id, username, email, password_hash, role, auth_provider, federated_subject,
    is_verified, is_active, failed_login_attempts, locked_until, last_login,
    password_reset_token_hash, password_reset_expires, verification_token_hash, verification_expires,
    profile_json, bio_encrypted, public_email_encrypted,
    skills_json, social_json, preferences_json, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateAccountParams struct {
	ID                     string
	Username               string
	Email                  string
	PasswordHash           sql.NullString
	Role                   string
	AuthProvider           string
	FederatedSubject       sql.NullString
	IsVerified             bool
	IsActive               bool
	FailedLoginAttempts    int64
	LockedUntil            sql.NullTime
	LastLogin              sql.NullTime
	PasswordResetTokenHash sql.NullString
	PasswordResetExpires   sql.NullTime
	VerificationTokenHash  sql.NullString
	VerificationExpires    sql.NullTime
	ProfileJson            string
	BioEncrypted           sql.NullString
	PublicEmailEncrypted   sql.NullString
	SkillsJson             string
	SocialJson             string
	PreferencesJson        string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx, createAccount,
		arg.ID,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.AuthProvider,
		arg.FederatedSubject,
		arg.IsVerified,
		arg.IsActive,
		arg.FailedLoginAttempts,
		arg.LockedUntil,
		arg.LastLogin,
		arg.PasswordResetTokenHash,
		arg.PasswordResetExpires,
		arg.VerificationTokenHash,
		arg.VerificationExpires,
		arg.ProfileJson,
		arg.BioEncrypted,
		arg.PublicEmailEncrypted,
		arg.SkillsJson,
		arg.SocialJson,
		arg.PreferencesJson,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateAccountSecurity = `-- name: UpdateAccountSecurity :execrows
UPDATE accounts SET
    is_verified = ?,
    is_active = ?,
    failed_login_attempts = ?,
    locked_until = ?,
    last_login = ?,
    password_reset_token_hash = ?,
    password_reset_expires = ?,
    verification_token_hash = ?,
    verification_expires = ?,
    updated_at = ?
WHERE id = ?`

type UpdateAccountSecurityParams struct {
	IsVerified             bool
	IsActive               bool
	FailedLoginAttempts    int64
	LockedUntil            sql.NullTime
	LastLogin              sql.NullTime
	PasswordResetTokenHash sql.NullString
	PasswordResetExpires   sql.NullTime
	VerificationTokenHash  sql.NullString
	VerificationExpires    sql.NullTime
	UpdatedAt              time.Time
	ID                     string
}

func (q *Queries) UpdateAccountSecurity(ctx context.Context, arg UpdateAccountSecurityParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccountSecurity,
		arg.IsVerified,
		arg.IsActive,
		arg.FailedLoginAttempts,
		arg.LockedUntil,
		arg.LastLogin,
		arg.PasswordResetTokenHash,
		arg.PasswordResetExpires,
		arg.VerificationTokenHash,
		arg.VerificationExpires,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateAccountPasswordHash = `-- name: UpdateAccountPasswordHash :execrows
UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ? AND auth_provider = 'local'`

type UpdateAccountPasswordHashParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           string
}

func (q *Queries) UpdateAccountPasswordHash(ctx context.Context, arg UpdateAccountPasswordHashParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccountPasswordHash, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateAccountProfile = `-- name: UpdateAccountProfile :execrows
UPDATE accounts SET
    profile_json = ?,
    bio_encrypted = ?,
    public_email_encrypted = ?,
    skills_json = ?,
    social_json = ?,
    preferences_json = ?,
    updated_at = ?
WHERE id = ?`

type UpdateAccountProfileParams struct {
	ProfileJson          string
	BioEncrypted         sql.NullString
	PublicEmailEncrypted sql.NullString
	SkillsJson           string
	SocialJson           string
	PreferencesJson      string
	UpdatedAt            time.Time
	ID                   string
}

func (q *Queries) UpdateAccountProfile(ctx context.Context, arg UpdateAccountProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccountProfile,
		arg.ProfileJson,
		arg.BioEncrypted,
		arg.PublicEmailEncrypted,
		arg.SkillsJson,
		arg.SocialJson,
		arg.PreferencesJson,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateAccountRole = `-- name: UpdateAccountRole :execrows
UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`

type UpdateAccountRoleParams struct {
	Role      string
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdateAccountRole(ctx context.Context, arg UpdateAccountRoleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccountRole, arg.Role, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setAccountActive = `-- name: SetAccountActive :execrows
UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`

type SetAccountActiveParams struct {
	IsActive  bool
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) SetAccountActive(ctx context.Context, arg SetAccountActiveParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setAccountActive, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listAccounts = `-- name: ListAccounts :many
SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

type ListAccountsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		i, err := scanAccount(rows)
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

const countAccounts = `-- name: CountAccounts :one
SELECT COUNT(*) FROM accounts`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAccounts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listLegacyPlaintext = `-- name: ListLegacyPlaintext :many
SELECT id, username, profile_bio_legacy, profile_public_email_legacy FROM accounts
WHERE COALESCE(profile_bio_legacy, '') <> '' OR COALESCE(profile_public_email_legacy, '') <> ''
ORDER BY id`

type ListLegacyPlaintextRow struct {
	ID                       string
	Username                 string
	ProfileBioLegacy         sql.NullString
	ProfilePublicEmailLegacy sql.NullString
}

func (q *Queries) ListLegacyPlaintext(ctx context.Context) ([]ListLegacyPlaintextRow, error) {
	rows, err := q.db.QueryContext(ctx, listLegacyPlaintext)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListLegacyPlaintextRow
	for rows.Next() {
		var i ListLegacyPlaintextRow
		if err := rows.Scan(&i.ID, &i.Username, &i.ProfileBioLegacy, &i.ProfilePublicEmailLegacy); err != nil {
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

const clearLegacyPlaintext = `-- name: ClearLegacyPlaintext :exec
UPDATE accounts SET profile_bio_legacy = NULL, profile_public_email_legacy = NULL WHERE id = ?`

func (q *Queries) ClearLegacyPlaintext(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, clearLegacyPlaintext, id)
	return err
}

const setLegacyPlaintext = `-- name: SetLegacyPlaintext :exec
UPDATE accounts SET profile_bio_legacy = ?, profile_public_email_legacy = ? WHERE id = ?`

type SetLegacyPlaintextParams struct {
	ProfileBioLegacy         sql.NullString
	ProfilePublicEmailLegacy sql.NullString
	ID                       string
}

// SetLegacyPlaintext only exists to seed fixtures for the migration tooling.
func (q *Queries) SetLegacyPlaintext(ctx context.Context, arg SetLegacyPlaintextParams) error {
	_, err := q.db.ExecContext(ctx, setLegacyPlaintext, arg.ProfileBioLegacy, arg.ProfilePublicEmailLegacy, arg.ID)
	return err
}

const clearExpiredResetTokens = `-- name: ClearExpiredResetTokens :execrows
UPDATE accounts SET password_reset_token_hash = NULL, password_reset_expires = NULL
WHERE password_reset_expires IS NOT NULL AND password_reset_expires <= ?`

func (q *Queries) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearExpiredResetTokens, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearExpiredVerificationTokens = `-- name: ClearExpiredVerificationTokens :execrows
UPDATE accounts SET verification_token_hash = NULL, verification_expires = NULL
WHERE verification_expires IS NOT NULL AND verification_expires <= ?`

func (q *Queries) ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearExpiredVerificationTokens, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
