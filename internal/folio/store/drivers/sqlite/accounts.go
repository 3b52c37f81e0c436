package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite/gen"
)

type accountsRepo struct {
	q *gen.Queries
}

// profileDoc is the JSON shape of profile_json. Bio and public email are
// kept in their own encrypted columns and never appear here.
type profileDoc struct {
	FirstName      string             `json:"firstName,omitempty"`
	LastName       string             `json:"lastName,omitempty"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
	Location       string             `json:"location,omitempty"`
	Website        string             `json:"website,omitempty"`
	GithubURL      string             `json:"githubUrl,omitempty"`
	LinkedinURL    string             `json:"linkedinUrl,omitempty"`
	Headline       string             `json:"headline,omitempty"`
	Subheadlines   []string           `json:"subheadlines,omitempty"`
	AboutTitle     string             `json:"aboutTitle,omitempty"`
	AboutContent   string             `json:"aboutContent,omitempty"`
	AboutCards     []domain.AboutCard `json:"aboutCards,omitempty"`
	Phone          string             `json:"phone,omitempty"`
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	return r.load(ctx, row, err)
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := r.q.GetAccountByEmail(ctx, email)
	return r.load(ctx, row, err)
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row, err := r.q.GetAccountByUsername(ctx, username)
	return r.load(ctx, row, err)
}

func (r *accountsRepo) GetByFederatedSubject(ctx context.Context, subject string) (domain.Account, error) {
	row, err := r.q.GetAccountByFederatedSubject(ctx, subject)
	return r.load(ctx, row, err)
}

func (r *accountsRepo) GetByResetTokenHash(ctx context.Context, digest string, now time.Time) (domain.Account, error) {
	row, err := r.q.GetAccountByResetTokenHash(ctx, gen.GetAccountByResetTokenHashParams{
		Digest: digest,
		Now:    utc(now),
	})
	return r.load(ctx, row, err)
}

func (r *accountsRepo) GetByVerificationTokenHash(ctx context.Context, digest string, now time.Time) (domain.Account, error) {
	row, err := r.q.GetAccountByVerificationTokenHash(ctx, gen.GetAccountByVerificationTokenHashParams{
		Digest: digest,
		Now:    utc(now),
	})
	return r.load(ctx, row, err)
}

// load maps a row and attaches its refresh ring.
func (r *accountsRepo) load(ctx context.Context, row gen.Account, err error) (domain.Account, error) {
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a, err := mapAccount(row)
	if err != nil {
		return domain.Account{}, err
	}
	tokens, err := r.q.ListRefreshTokens(ctx, row.ID)
	if err != nil {
		return domain.Account{}, err
	}
	records := make([]domain.RefreshTokenRecord, 0, len(tokens))
	for _, t := range tokens {
		records = append(records, domain.RefreshTokenRecord{
			Token:     t.TokenFingerprint,
			CreatedAt: t.CreatedAt.UTC(),
			ExpiresAt: t.ExpiresAt.UTC(),
		})
	}
	a.Security.RefreshTokens = domain.NewRefreshTokenRing(domain.DefaultRefreshRingCap, records)
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	docs, err := encodeProfile(a)
	if err != nil {
		return err
	}
	now := utc(a.CreatedAt)
	if now.IsZero() {
		now = utc(time.Now())
	}
	updated := utc(a.UpdatedAt)
	if updated.IsZero() {
		updated = now
	}
	sec := a.Security
	err = r.q.CreateAccount(ctx, gen.CreateAccountParams{
		ID:                     a.ID,
		Username:               a.Username,
		Email:                  a.Email,
		PasswordHash:           mapStringNull(a.PasswordHash),
		Role:                   string(a.Role),
		AuthProvider:           string(a.AuthProvider),
		FederatedSubject:       mapStringNull(a.FederatedSubject),
		IsVerified:             sec.IsVerified,
		IsActive:               sec.IsActive,
		FailedLoginAttempts:    int64(sec.FailedLoginAttempts),
		LockedUntil:            mapOptionalTime(sec.LockedUntil),
		LastLogin:              mapOptionalTime(sec.LastLogin),
		PasswordResetTokenHash: mapStringNull(sec.PasswordResetTokenHash),
		PasswordResetExpires:   mapOptionalTime(sec.PasswordResetExpires),
		VerificationTokenHash:  mapStringNull(sec.VerificationTokenHash),
		VerificationExpires:    mapOptionalTime(sec.VerificationExpires),
		ProfileJson:            docs.profile,
		BioEncrypted:           mapStringNull(a.Profile.BioEncrypted),
		PublicEmailEncrypted:   mapStringNull(a.Profile.PublicEmailEncrypted),
		SkillsJson:             docs.skills,
		SocialJson:             docs.social,
		PreferencesJson:        docs.preferences,
		CreatedAt:              now,
		UpdatedAt:              updated,
	})
	if err != nil {
		return mapConstraint(err)
	}
	if n := a.Security.RefreshTokens.Len(); n > 0 {
		return r.ReplaceRefreshTokens(ctx, a.ID, a.Security.RefreshTokens.Records())
	}
	return nil
}

func (r *accountsRepo) UpdateSecurity(ctx context.Context, id string, sec domain.SecurityState) error {
	return mustAffect(r.q.UpdateAccountSecurity(ctx, gen.UpdateAccountSecurityParams{
		IsVerified:             sec.IsVerified,
		IsActive:               sec.IsActive,
		FailedLoginAttempts:    int64(max(sec.FailedLoginAttempts, 0)),
		LockedUntil:            mapOptionalTime(sec.LockedUntil),
		LastLogin:              mapOptionalTime(sec.LastLogin),
		PasswordResetTokenHash: mapStringNull(sec.PasswordResetTokenHash),
		PasswordResetExpires:   mapOptionalTime(sec.PasswordResetExpires),
		VerificationTokenHash:  mapStringNull(sec.VerificationTokenHash),
		VerificationExpires:    mapOptionalTime(sec.VerificationExpires),
		UpdatedAt:              utc(time.Now()),
		ID:                     id,
	}))
}

func (r *accountsRepo) ReplaceRefreshTokens(ctx context.Context, id string, records []domain.RefreshTokenRecord) error {
	if err := r.q.DeleteRefreshTokensByAccount(ctx, id); err != nil {
		return err
	}
	for i, rec := range records {
		err := r.q.InsertRefreshToken(ctx, gen.InsertRefreshTokenParams{
			AccountID:        id,
			TokenFingerprint: rec.Token,
			CreatedAt:        utc(rec.CreatedAt),
			ExpiresAt:        utc(rec.ExpiresAt),
			Seq:              int64(i),
		})
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return mustAffect(r.q.UpdateAccountPasswordHash(ctx, gen.UpdateAccountPasswordHashParams{
		PasswordHash: hash,
		UpdatedAt:    utc(time.Now()),
		ID:           id,
	}))
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, a domain.Account) error {
	docs, err := encodeProfile(a)
	if err != nil {
		return err
	}
	return mustAffect(r.q.UpdateAccountProfile(ctx, gen.UpdateAccountProfileParams{
		ProfileJson:          docs.profile,
		BioEncrypted:         mapStringNull(a.Profile.BioEncrypted),
		PublicEmailEncrypted: mapStringNull(a.Profile.PublicEmailEncrypted),
		SkillsJson:           docs.skills,
		SocialJson:           docs.social,
		PreferencesJson:      docs.preferences,
		UpdatedAt:            utc(time.Now()),
		ID:                   a.ID,
	}))
}

func (r *accountsRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return mustAffect(r.q.UpdateAccountRole(ctx, gen.UpdateAccountRoleParams{
		Role:      string(role),
		UpdatedAt: utc(time.Now()),
		ID:        id,
	}))
}

func (r *accountsRepo) SetActive(ctx context.Context, id string, active bool) error {
	return mustAffect(r.q.SetAccountActive(ctx, gen.SetAccountActiveParams{
		IsActive:  active,
		UpdatedAt: utc(time.Now()),
		ID:        id,
	}))
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.DeleteAccount(ctx, id))
}

func (r *accountsRepo) List(ctx context.Context, page store.Page) ([]domain.Account, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.ListAccounts(ctx, gen.ListAccountsParams{
		Limit:  int64(limit),
		Offset: int64(max(page.Offset, 0)),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		a, err := mapAccount(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *accountsRepo) Count(ctx context.Context) (int64, error) {
	return r.q.CountAccounts(ctx)
}

func (r *accountsRepo) ListLegacyPlaintext(ctx context.Context) ([]store.LegacyPlaintext, error) {
	rows, err := r.q.ListLegacyPlaintext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]store.LegacyPlaintext, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.LegacyPlaintext{
			AccountID:   row.ID,
			Username:    row.Username,
			Bio:         mapNullString(row.ProfileBioLegacy),
			PublicEmail: mapNullString(row.ProfilePublicEmailLegacy),
		})
	}
	return out, nil
}

func (r *accountsRepo) ClearLegacyPlaintext(ctx context.Context, id string) error {
	return r.q.ClearLegacyPlaintext(ctx, id)
}

func (r *accountsRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, utc(now))
}

func (r *accountsRepo) ClearExpiredOneTimeTokens(ctx context.Context, now time.Time) (int64, error) {
	resets, err := r.q.ClearExpiredResetTokens(ctx, utc(now))
	if err != nil {
		return 0, err
	}
	verifications, err := r.q.ClearExpiredVerificationTokens(ctx, utc(now))
	if err != nil {
		return resets, err
	}
	return resets + verifications, nil
}

type encodedProfile struct {
	profile     string
	skills      string
	social      string
	preferences string
}

func encodeProfile(a domain.Account) (encodedProfile, error) {
	p := a.Profile
	var (
		out encodedProfile
		err error
	)
	out.profile, err = marshalJSON(profileDoc{
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
	})
	if err != nil {
		return out, fmt.Errorf("encode profile: %w", err)
	}
	skills := a.Skills
	if skills == nil {
		skills = []domain.SkillGroup{}
	}
	if out.skills, err = marshalJSON(skills); err != nil {
		return out, fmt.Errorf("encode skills: %w", err)
	}
	if out.social, err = marshalJSON(a.Social); err != nil {
		return out, fmt.Errorf("encode social: %w", err)
	}
	if out.preferences, err = marshalJSON(a.Preferences); err != nil {
		return out, fmt.Errorf("encode preferences: %w", err)
	}
	return out, nil
}

func mapAccount(row gen.Account) (domain.Account, error) {
	var doc profileDoc
	if err := unmarshalJSON(row.ProfileJson, &doc); err != nil {
		return domain.Account{}, fmt.Errorf("decode profile of %s: %w", row.ID, err)
	}
	a := domain.Account{
		ID:               row.ID,
		Username:         row.Username,
		Email:            row.Email,
		PasswordHash:     mapNullString(row.PasswordHash),
		Role:             domain.Role(row.Role),
		AuthProvider:     domain.AuthProvider(row.AuthProvider),
		FederatedSubject: mapNullString(row.FederatedSubject),
		Security: domain.SecurityState{
			IsVerified:             row.IsVerified,
			IsActive:               row.IsActive,
			FailedLoginAttempts:    int(row.FailedLoginAttempts),
			LockedUntil:            mapNullTimePtr(row.LockedUntil),
			LastLogin:              mapNullTimePtr(row.LastLogin),
			PasswordResetTokenHash: mapNullString(row.PasswordResetTokenHash),
			PasswordResetExpires:   mapNullTimePtr(row.PasswordResetExpires),
			VerificationTokenHash:  mapNullString(row.VerificationTokenHash),
			VerificationExpires:    mapNullTimePtr(row.VerificationExpires),
			RefreshTokens:          domain.NewRefreshTokenRing(domain.DefaultRefreshRingCap, nil),
		},
		Profile: domain.Profile{
			FirstName:            doc.FirstName,
			LastName:             doc.LastName,
			ProfilePicture:       doc.ProfilePicture,
			Location:             doc.Location,
			Website:              doc.Website,
			GithubURL:            doc.GithubURL,
			LinkedinURL:          doc.LinkedinURL,
			Headline:             doc.Headline,
			Subheadlines:         doc.Subheadlines,
			AboutTitle:           doc.AboutTitle,
			AboutContent:         doc.AboutContent,
			AboutCards:           doc.AboutCards,
			Phone:                doc.Phone,
			BioEncrypted:         mapNullString(row.BioEncrypted),
			PublicEmailEncrypted: mapNullString(row.PublicEmailEncrypted),
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.SkillsJson, &a.Skills); err != nil {
		return domain.Account{}, fmt.Errorf("decode skills of %s: %w", row.ID, err)
	}
	if err := unmarshalJSON(row.SocialJson, &a.Social); err != nil {
		return domain.Account{}, fmt.Errorf("decode social of %s: %w", row.ID, err)
	}
	if err := unmarshalJSON(row.PreferencesJson, &a.Preferences); err != nil {
		return domain.Account{}, fmt.Errorf("decode preferences of %s: %w", row.ID, err)
	}
	return a, nil
}
