package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

const (
	maxBioLength  = 1000
	maxTextLength = 5000
)

// ProfileService reads and writes portfolio content. Bio and public email
// pass through Cipher on the way in and out.
type ProfileService struct {
	Store  store.Store
	Cipher *cryptox.FieldCipher
	Clock  Clock
}

// PortfolioView is everything an owner sees about their own portfolio.
type PortfolioView struct {
	Account     AccountSummary
	Skills      []domain.SkillGroup
	Social      domain.Social
	Preferences domain.Preferences
	Projects    []domain.Project
	Posts       []domain.Post
}

// PublicPortfolio is the anonymous view of a portfolio. It never carries the
// login email or anything from SecurityState.
type PublicPortfolio struct {
	Username string
	FullName string
	Profile  PublicProfile
	Skills   []domain.SkillGroup
	Social   domain.Social
	Projects []domain.Project
	Posts    []domain.Post
}

type DashboardStats struct {
	Account  AccountSummary
	Projects int64
	Posts    int64
}

// ProfilePatch holds the profile fields to change. Nil leaves a field as is.
type ProfilePatch struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	ProfilePicture *string
	Location       *string
	Website        *string
	GithubURL      *string
	LinkedinURL    *string
	Headline       *string
	Subheadlines   []string
	AboutTitle     *string
	AboutContent   *string
	AboutCards     []domain.AboutCard
	Phone          *string
	PublicEmail    *string
}

// ProfileUpdate is a partial portfolio update. Nil members are untouched.
type ProfileUpdate struct {
	Profile     *ProfilePatch
	Skills      []domain.SkillGroup
	Social      *domain.Social
	Preferences *domain.Preferences
}

// carriesSensitive reports whether applying u would need the cipher.
func (u ProfileUpdate) carriesSensitive() bool {
	if u.Profile == nil {
		return false
	}
	p := u.Profile
	return (p.Bio != nil && strings.TrimSpace(*p.Bio) != "") ||
		(p.PublicEmail != nil && strings.TrimSpace(*p.PublicEmail) != "")
}

// Get returns the owner's portfolio with sensitive fields decrypted. Fields
// that cannot be decrypted are left empty.
func (s *ProfileService) Get(ctx context.Context, accountID string) (PortfolioView, error) {
	a, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PortfolioView{}, notFound("User")
		}
		return PortfolioView{}, internal(err)
	}
	projects, err := s.Store.Projects().ListByAccount(ctx, a.ID, false)
	if err != nil {
		return PortfolioView{}, internal(err)
	}
	posts, err := s.Store.Posts().ListByAccount(ctx, a.ID, false)
	if err != nil {
		return PortfolioView{}, internal(err)
	}
	return s.view(ctx, a, projects, posts), nil
}

func (s *ProfileService) view(ctx context.Context, a domain.Account, projects []domain.Project, posts []domain.Post) PortfolioView {
	summary := Summarize(a)
	summary.Profile = s.reveal(ctx, a)
	return PortfolioView{
		Account:     summary,
		Skills:      a.Skills,
		Social:      a.Social,
		Preferences: a.Preferences,
		Projects:    projects,
		Posts:       posts,
	}
}

// reveal builds the public profile including decrypted bio and public email.
func (s *ProfileService) reveal(ctx context.Context, a domain.Account) PublicProfile {
	p := publicProfile(a.Profile)
	p.Bio = s.decrypt(ctx, a.ID, "bio", a.Profile.BioEncrypted)
	p.PublicEmail = s.decrypt(ctx, a.ID, "public_email", a.Profile.PublicEmailEncrypted)
	return p
}

func (s *ProfileService) decrypt(ctx context.Context, accountID, field, envelope string) string {
	if envelope == "" {
		return ""
	}
	plain, err := s.Cipher.Decrypt(envelope)
	switch {
	case err == nil:
		return plain
	case errors.Is(err, cryptox.ErrCipherNotConfigured):
		slogx.FromContext(ctx).Warn("field encryption not configured, omitting encrypted field",
			slog.String("account_id", accountID), slog.String("field", field))
	default:
		slogx.FromContext(ctx).Error("failed to decrypt profile field",
			slog.String("account_id", accountID), slog.String("field", field), slog.Any("error", err))
	}
	return ""
}

// Update applies u to the account's portfolio and returns the new view. A
// sensitive field with no cipher configured fails before anything is
// written.
func (s *ProfileService) Update(ctx context.Context, accountID string, u ProfileUpdate) (PortfolioView, error) {
	l := slogx.FromContext(ctx)

	if u.carriesSensitive() && !s.Cipher.Configured() {
		l.Error("refusing to store sensitive profile fields without an encryption key",
			slog.String("account_id", accountID))
		return PortfolioView{}, newError(KindConfiguration, MsgCipherUnavailable, ErrCipherUnavailable)
	}
	if details := validateUpdate(u); len(details) > 0 {
		return PortfolioView{}, validation("Validation failed", details)
	}

	var updated domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.apply(&a, u); err != nil {
			return err
		}
		a.UpdatedAt = s.Clock.Now()
		if err := tx.Accounts().UpdateProfile(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return PortfolioView{}, notFound("User")
	case errors.Is(err, cryptox.ErrCipherNotConfigured):
		return PortfolioView{}, newError(KindConfiguration, MsgCipherUnavailable, ErrCipherUnavailable)
	case err != nil:
		return PortfolioView{}, internal(err)
	}

	l.Info("portfolio updated", slog.String("account_id", accountID))
	return s.Get(ctx, updated.ID)
}

// apply merges u into a, sanitizing text and sealing sensitive fields.
func (s *ProfileService) apply(a *domain.Account, u ProfileUpdate) error {
	if p := u.Profile; p != nil {
		prof := &a.Profile
		setText(&prof.FirstName, p.FirstName)
		setText(&prof.LastName, p.LastName)
		setClean(&prof.ProfilePicture, p.ProfilePicture, SanitizeURL)
		setText(&prof.Location, p.Location)
		setClean(&prof.Website, p.Website, SanitizeURL)
		setClean(&prof.GithubURL, p.GithubURL, SanitizeURL)
		setClean(&prof.LinkedinURL, p.LinkedinURL, SanitizeURL)
		setText(&prof.Headline, p.Headline)
		setText(&prof.AboutTitle, p.AboutTitle)
		setClean(&prof.AboutContent, p.AboutContent, SanitizeHTML)
		setText(&prof.Phone, p.Phone)
		if p.Subheadlines != nil {
			prof.Subheadlines = sanitizeAll(p.Subheadlines)
		}
		if p.AboutCards != nil {
			cards := make([]domain.AboutCard, 0, len(p.AboutCards))
			for _, c := range p.AboutCards {
				cards = append(cards, domain.AboutCard{
					Category: Sanitize(c.Category),
					Content:  SanitizeHTML(c.Content),
				})
			}
			prof.AboutCards = cards
		}
		if err := s.seal(&prof.BioEncrypted, p.Bio, Sanitize); err != nil {
			return err
		}
		if err := s.seal(&prof.PublicEmailEncrypted, p.PublicEmail, normalizePublicEmail); err != nil {
			return err
		}
	}
	if u.Skills != nil {
		skills := make([]domain.SkillGroup, 0, len(u.Skills))
		for _, g := range u.Skills {
			skills = append(skills, domain.SkillGroup{
				Category: Sanitize(g.Category),
				Items:    sanitizeAll(g.Items),
			})
		}
		a.Skills = skills
	}
	if u.Social != nil {
		a.Social = domain.Social{
			Github:   SanitizeURL(u.Social.Github),
			Linkedin: SanitizeURL(u.Social.Linkedin),
			Twitter:  SanitizeURL(u.Social.Twitter),
			Website:  SanitizeURL(u.Social.Website),
		}
	}
	if u.Preferences != nil {
		a.Preferences = *u.Preferences
	}
	return nil
}

// seal encrypts the cleaned value of v into dst. An empty value clears dst.
func (s *ProfileService) seal(dst *string, v *string, clean func(string) string) error {
	if v == nil {
		return nil
	}
	plain := clean(*v)
	if plain == "" {
		*dst = ""
		return nil
	}
	env, err := s.Cipher.Encrypt(plain)
	if err != nil {
		return err
	}
	*dst = env
	return nil
}

func validateUpdate(u ProfileUpdate) map[string]string {
	details := map[string]string{}
	if p := u.Profile; p != nil {
		if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > maxBioLength {
			details["profile.bio"] = "Bio cannot exceed 1000 characters"
		}
		if p.AboutContent != nil && utf8.RuneCountInString(*p.AboutContent) > maxTextLength {
			details["profile.aboutContent"] = "About content cannot exceed 5000 characters"
		}
		if p.PublicEmail != nil && strings.TrimSpace(*p.PublicEmail) != "" {
			if _, err := domain.NormalizeEmail(*p.PublicEmail); err != nil {
				details["profile.publicEmail"] = domain.MsgEmailInvalid
			}
		}
		for field, v := range map[string]*string{
			"profile.website":        p.Website,
			"profile.githubUrl":      p.GithubURL,
			"profile.linkedinUrl":    p.LinkedinURL,
			"profile.profilePicture": p.ProfilePicture,
		} {
			if v != nil && *v != "" && !isWebURL(*v) {
				details[field] = "Must be a valid http or https URL"
			}
		}
	}
	return details
}

func isWebURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func normalizePublicEmail(s string) string {
	e, err := domain.NormalizeEmail(s)
	if err != nil {
		return ""
	}
	return e
}

func setText(dst *string, v *string) {
	setClean(dst, v, Sanitize)
}

func setClean(dst *string, v *string, clean func(string) string) {
	if v != nil {
		*dst = clean(*v)
	}
}

func sanitizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = Sanitize(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var (
	textPolicy = bluemonday.StrictPolicy()
	htmlPolicy = bluemonday.UGCPolicy()

	// textPolicy output carries no markup, so these escapes are safe to undo.
	textUnescaper = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)
)

// Sanitize reduces user supplied text to plain text. Tags are dropped along
// with the contents of script, style and frame elements.
func Sanitize(s string) string {
	return strings.TrimSpace(textUnescaper.Replace(textPolicy.Sanitize(s)))
}

// SanitizeHTML keeps the formatting subset of HTML in long form fields and
// drops scripts, event handlers, frames and unsafe link schemes.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(htmlPolicy.Sanitize(s))
}

// SanitizeURL returns s as plain text unless it names a scheme other than
// http, https or mailto. Bare handles pass through.
func SanitizeURL(s string) string {
	s = Sanitize(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return s
	default:
		return ""
	}
}

// PublicPortfolio returns the anonymous view of username's portfolio. Hidden
// and deactivated portfolios are reported as not found.
func (s *ProfileService) PublicPortfolio(ctx context.Context, username string) (PublicPortfolio, error) {
	a, err := s.Store.Accounts().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PublicPortfolio{}, notFound("Portfolio")
		}
		return PublicPortfolio{}, internal(err)
	}
	if !a.Security.IsActive || !a.Preferences.PublicProfile {
		return PublicPortfolio{}, notFound("Portfolio")
	}

	projects, err := s.Store.Projects().ListByAccount(ctx, a.ID, true)
	if err != nil {
		return PublicPortfolio{}, internal(err)
	}
	completed := projects[:0]
	for _, p := range projects {
		if p.Status == domain.ProjectCompleted {
			completed = append(completed, p)
		}
	}
	posts, err := s.Store.Posts().ListByAccount(ctx, a.ID, true)
	if err != nil {
		return PublicPortfolio{}, internal(err)
	}

	return PublicPortfolio{
		Username: a.Username,
		FullName: a.FullName(),
		Profile:  s.reveal(ctx, a),
		Skills:   a.Skills,
		Social:   a.Social,
		Projects: completed,
		Posts:    posts,
	}, nil
}

// Dashboard returns the owner's summary with content counts.
func (s *ProfileService) Dashboard(ctx context.Context, accountID string) (DashboardStats, error) {
	a, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return DashboardStats{}, notFound("User")
		}
		return DashboardStats{}, internal(err)
	}
	projects, err := s.Store.Projects().CountByAccount(ctx, a.ID)
	if err != nil {
		return DashboardStats{}, internal(err)
	}
	posts, err := s.Store.Posts().CountByAccount(ctx, a.ID)
	if err != nil {
		return DashboardStats{}, internal(err)
	}
	summary := Summarize(a)
	summary.Profile = s.reveal(ctx, a)
	return DashboardStats{Account: summary, Projects: projects, Posts: posts}, nil
}
