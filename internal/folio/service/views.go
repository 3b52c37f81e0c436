package service

import (
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
)

// AccountSummary is an account with everything credential-related removed.
type AccountSummary struct {
	ID           string
	Username     string
	Email        string
	Role         domain.Role
	AuthProvider domain.AuthProvider
	IsVerified   bool
	IsActive     bool
	FullName     string
	Profile      PublicProfile
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the non-sensitive part of a profile. Bio and public
// email are added by ProfileService once decrypted.
type PublicProfile struct {
	FirstName      string
	LastName       string
	ProfilePicture string
	Location       string
	Website        string
	GithubURL      string
	LinkedinURL    string
	Headline       string
	Subheadlines   []string
	AboutTitle     string
	AboutContent   string
	AboutCards     []domain.AboutCard
	Phone          string
	Bio            string
	PublicEmail    string
}

func Summarize(a domain.Account) AccountSummary {
	return AccountSummary{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		Role:         a.Role,
		AuthProvider: a.AuthProvider,
		IsVerified:   a.Security.IsVerified,
		IsActive:     a.Security.IsActive,
		FullName:     a.FullName(),
		Profile:      publicProfile(a.Profile),
		LastLogin:    a.Security.LastLogin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func publicProfile(p domain.Profile) PublicProfile {
	return PublicProfile{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		ProfilePicture: p.ProfilePicture,
		Location:       p.Location,
		Website:        p.Website,
		GithubURL:      p.GithubURL,
		LinkedinURL:    p.LinkedinURL,
		Headline:       p.Headline,
		Subheadlines:   p.Subheadlines,
		AboutTitle:     p.AboutTitle,
		AboutContent:   p.AboutContent,
		AboutCards:     p.AboutCards,
		Phone:          p.Phone,
	}
}
