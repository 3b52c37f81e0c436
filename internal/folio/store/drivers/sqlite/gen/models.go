package gen

import (
	"database/sql"
	"time"
)

type Account struct {
	ID                       string
	Username                 string
	Email                    string
	PasswordHash             sql.NullString
	Role                     string
	AuthProvider             string
	FederatedSubject         sql.NullString
	IsVerified               bool
	IsActive                 bool
	FailedLoginAttempts      int64
	LockedUntil              sql.NullTime
	LastLogin                sql.NullTime
	PasswordResetTokenHash   sql.NullString
	PasswordResetExpires     sql.NullTime
	VerificationTokenHash    sql.NullString
	VerificationExpires      sql.NullTime
	ProfileJson              string
	BioEncrypted             sql.NullString
	PublicEmailEncrypted     sql.NullString
	ProfileBioLegacy         sql.NullString
	ProfilePublicEmailLegacy sql.NullString
	SkillsJson               string
	SocialJson               string
	PreferencesJson          string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type RefreshToken struct {
	AccountID        string
	TokenFingerprint string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Seq              int64
}

type TokenBlacklist struct {
	TokenFingerprint string
	ExpiresAt        time.Time
}

type Project struct {
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

type Post struct {
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
