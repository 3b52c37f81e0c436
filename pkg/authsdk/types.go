package authsdk

import "time"

// ============================================================================
// Envelopes
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Success is always false
	Success bool `json:"success"`

	// Code is the machine readable error kind (e.g., "validation_error", "unauthorized")
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains field-specific validation errors (field name: error message)
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is returned by operations that have nothing to report
// beyond an outcome message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthChecks reports the state of the dependencies the service needs.
type HealthChecks struct {
	Database  string `json:"database"`
	Blacklist string `json:"blacklist"`
	Cipher    string `json:"cipher,omitempty"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest creates a local account.
type RegisterRequest struct {
	// Username is 3-30 characters of letters, digits, _ or -
	Username string `json:"username" validate:"required,min=3,max=30,username"`

	// Email must be a valid address
	Email string `json:"email" validate:"required,email,max=254"`

	// Password is checked against the password policy by the server
	Password string `json:"password" validate:"required,max=128"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token for clients that cannot use the
// refreshToken cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LogoutRequest optionally names the refresh token to drop.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password. The reset token travels in the
// URL path.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=128"`
}

// AuthResponse is returned by a successful login. The refresh token is set
// as the HttpOnly refreshToken cookie, never in the body.
type AuthResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        Account   `json:"user"`
}

// RefreshResponse carries a new access token. The refresh token is not
// rotated.
type RefreshResponse struct {
	Success     bool      `json:"success"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RegisterResponse is returned with 201 after registration.
type RegisterResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	User    Account `json:"user"`
}

// ============================================================================
// Account and Profile Types
// ============================================================================

// Account is the sanitized view of an account. It never contains the
// password hash or security state.
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	AuthProvider string     `json:"authProvider"`
	IsVerified   bool       `json:"isVerified"`
	IsActive     bool       `json:"isActive"`
	FullName     string     `json:"fullName,omitempty"`
	Profile      Profile    `json:"profile"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Profile is the portfolio content of an account. Bio and PublicEmail are
// only present in the owner and admin views.
type Profile struct {
	FirstName      string      `json:"firstName,omitempty"`
	LastName       string      `json:"lastName,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
	Location       string      `json:"location,omitempty"`
	Website        string      `json:"website,omitempty"`
	GithubURL      string      `json:"githubUrl,omitempty"`
	LinkedinURL    string      `json:"linkedinUrl,omitempty"`
	Headline       string      `json:"headline,omitempty"`
	Subheadlines   []string    `json:"subheadlines,omitempty"`
	AboutTitle     string      `json:"aboutTitle,omitempty"`
	AboutContent   string      `json:"aboutContent,omitempty"`
	AboutCards     []AboutCard `json:"aboutCards,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	Bio            string      `json:"bio,omitempty"`
	PublicEmail    string      `json:"publicEmail,omitempty"`
}

type AboutCard struct {
	Category string `json:"category" validate:"max=100"`
	Content  string `json:"content" validate:"max=1000"`
}

type SkillGroup struct {
	Category string   `json:"category" validate:"required,max=100"`
	Items    []string `json:"items" validate:"dive,max=100"`
}

type Social struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PublicProfile      bool `json:"publicProfile"`
}

// ProfileInput is a partial profile update. Nil fields are left unchanged;
// an empty string clears the field.
type ProfileInput struct {
	FirstName      *string     `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName       *string     `json:"lastName,omitempty" validate:"omitempty,max=50"`
	ProfilePicture *string     `json:"profilePicture,omitempty"`
	Location       *string     `json:"location,omitempty" validate:"omitempty,max=100"`
	Website        *string     `json:"website,omitempty"`
	GithubURL      *string     `json:"githubUrl,omitempty"`
	LinkedinURL    *string     `json:"linkedinUrl,omitempty"`
	Headline       *string     `json:"headline,omitempty" validate:"omitempty,max=200"`
	Subheadlines   []string    `json:"subheadlines,omitempty" validate:"omitempty,dive,max=200"`
	AboutTitle     *string     `json:"aboutTitle,omitempty" validate:"omitempty,max=200"`
	AboutContent   *string     `json:"aboutContent,omitempty"`
	AboutCards     []AboutCard `json:"aboutCards,omitempty" validate:"omitempty,dive"`
	Phone          *string     `json:"phone,omitempty" validate:"omitempty,max=30"`
	Bio            *string     `json:"bio,omitempty"`
	PublicEmail    *string     `json:"publicEmail,omitempty"`
}

// PortfolioRequest updates the caller's portfolio. Absent sections are left
// unchanged.
type PortfolioRequest struct {
	Profile     *ProfileInput `json:"profile,omitempty"`
	Skills      []SkillGroup  `json:"skills,omitempty" validate:"omitempty,dive"`
	Social      *Social       `json:"social,omitempty"`
	Preferences *Preferences  `json:"preferences,omitempty"`
}

// Portfolio is the owner's (or an admin's) full view of an account.
type Portfolio struct {
	User        Account      `json:"user"`
	Skills      []SkillGroup `json:"skills"`
	Social      Social       `json:"social"`
	Preferences Preferences  `json:"preferences"`
	Projects    []Project    `json:"projects"`
	Posts       []Post       `json:"posts"`
}

type PortfolioResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    Portfolio `json:"data"`
}

// PublicPortfolio is what anonymous visitors see. It never includes the
// account email.
type PublicPortfolio struct {
	Username string       `json:"username"`
	FullName string       `json:"fullName,omitempty"`
	Profile  Profile      `json:"profile"`
	Skills   []SkillGroup `json:"skills"`
	Social   Social       `json:"social"`
	Projects []Project    `json:"projects"`
	Posts    []Post       `json:"posts"`
}

type PublicPortfolioResponse struct {
	Success bool            `json:"success"`
	Data    PublicPortfolio `json:"data"`
}

type DashboardStats struct {
	User     Account `json:"user"`
	Projects int64   `json:"projects"`
	Posts    int64   `json:"posts"`
}

type DashboardResponse struct {
	Success bool           `json:"success"`
	Data    DashboardStats `json:"data"`
}

// ============================================================================
// Project and Post Types
// ============================================================================

type ProjectLinks struct {
	GitHub string `json:"github,omitempty"`
	Live   string `json:"live,omitempty"`
	Demo   string `json:"demo,omitempty"`
}

type Project struct {
	ID                  string       `json:"id"`
	UserID              string       `json:"userId"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	DetailedDescription string       `json:"detailedDescription,omitempty"`
	Technologies        []string     `json:"technologies"`
	Links               ProjectLinks `json:"links"`
	Status              string       `json:"status"`
	Category            string       `json:"category"`
	Featured            bool         `json:"featured"`
	Priority            int          `json:"priority"`
	Visibility          string       `json:"visibility"`
	Tags                []string     `json:"tags"`
	StartDate           *time.Time   `json:"startDate,omitempty"`
	EndDate             *time.Time   `json:"endDate,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// ProjectRequest creates or replaces a project. Empty status, category,
// priority and visibility take their defaults.
type ProjectRequest struct {
	Title               string       `json:"title" validate:"required,max=100"`
	Description         string       `json:"description" validate:"required,max=500"`
	DetailedDescription string       `json:"detailedDescription,omitempty" validate:"max=2000"`
	Technologies        []string     `json:"technologies,omitempty" validate:"omitempty,dive,max=50"`
	Links               ProjectLinks `json:"links"`
	Status              string       `json:"status,omitempty"`
	Category            string       `json:"category,omitempty"`
	Featured            bool         `json:"featured"`
	Priority            int          `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	Visibility          string       `json:"visibility,omitempty"`
	Tags                []string     `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	StartDate           *time.Time   `json:"startDate,omitempty"`
	EndDate             *time.Time   `json:"endDate,omitempty"`
}

type ProjectResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Data    Project `json:"data"`
}

type ProjectListResponse struct {
	Success bool      `json:"success"`
	Data    []Project `json:"data"`
}

type Post struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Categories  []string   `json:"categories"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ReadTime    int        `json:"readTime"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PostRequest creates or replaces a blog post. An empty slug is derived from
// the title.
type PostRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Slug       string   `json:"slug,omitempty" validate:"max=250"`
	Excerpt    string   `json:"excerpt" validate:"required,max=300"`
	Content    string   `json:"content" validate:"required"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,dive,max=50"`
	Status     string   `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	Featured   bool     `json:"featured"`
}

type PostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Post   `json:"data"`
}

type PostListResponse struct {
	Success bool   `json:"success"`
	Data    []Post `json:"data"`
}

// ============================================================================
// Admin Types
// ============================================================================

type AccountListResponse struct {
	Success bool      `json:"success"`
	Data    []Account `json:"data"`
	Total   int64     `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}

type AccountResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Data    Account `json:"data"`
}

type SetActiveRequest struct {
	Active *bool `json:"isActive" validate:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// DeleteAccountResponse reports what was removed along with the account.
type DeleteAccountResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	DeletedProjects int64  `json:"deletedProjects"`
	DeletedPosts    int64  `json:"deletedPosts"`
}
