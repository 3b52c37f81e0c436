package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type AuthProvider string

const (
	ProviderLocal     AuthProvider = "local"
	ProviderFederated AuthProvider = "federated"
)

var (
	ErrUsernameInvalid   = errors.New("domain: invalid username")
	ErrEmailInvalid      = errors.New("domain: invalid email")
	ErrCredentialMissing = errors.New("domain: local account requires a password hash")
	ErrCredentialExtra   = errors.New("domain: federated account must not carry a password hash")
	ErrSubjectMissing    = errors.New("domain: federated account requires a subject")
)

// User-facing messages for the validation errors above.
const (
	MsgUsernameInvalid = "Username must be 3-30 characters and can only contain letters, numbers, periods, hyphens, and underscores"
	MsgEmailInvalid    = "Please provide a valid email"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Account is the aggregate root for a registered user.
type Account struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Role             Role
	AuthProvider     AuthProvider
	FederatedSubject string

	Security    SecurityState
	Profile     Profile
	Skills      []SkillGroup
	Social      Social
	Preferences Preferences

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the credential invariant: a local account has a password
// hash, a federated one has a subject and no hash.
func (a *Account) Validate() error {
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if _, err := NormalizeEmail(a.Email); err != nil {
		return err
	}
	switch a.AuthProvider {
	case ProviderFederated:
		if a.PasswordHash != "" {
			return ErrCredentialExtra
		}
		if a.FederatedSubject == "" {
			return ErrSubjectMissing
		}
	default:
		if a.PasswordHash == "" {
			return ErrCredentialMissing
		}
	}
	return nil
}

func (a *Account) IsLocal() bool { return a.AuthProvider != ProviderFederated }

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

// FullName falls back to the username when either name part is missing.
func (a *Account) FullName() string {
	if a.Profile.FirstName != "" && a.Profile.LastName != "" {
		return a.Profile.FirstName + " " + a.Profile.LastName
	}
	return a.Username
}

// ValidateUsername enforces 3-30 characters from [a-zA-Z0-9._-].
func ValidateUsername(u string) error {
	n := utf8.RuneCountInString(u)
	if n < 3 || n > 30 || !usernamePattern.MatchString(u) {
		return ErrUsernameInvalid
	}
	return nil
}

// NormalizeEmail trims and lowercases e and checks it is a bare address.
func NormalizeEmail(e string) (string, error) {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" {
		return "", ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || !strings.Contains(e[strings.LastIndex(e, "@")+1:], ".") {
		return "", ErrEmailInvalid
	}
	return e, nil
}
