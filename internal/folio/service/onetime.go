package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
)

// Purpose selects which SecurityState fields a OneTimeTokens manages.
type Purpose int

const (
	PurposePasswordReset Purpose = iota
	PurposeEmailVerification
)

func (p Purpose) String() string {
	if p == PurposeEmailVerification {
		return "email_verification"
	}
	return "password_reset"
}

const (
	DefaultPasswordResetTTL     = time.Hour
	DefaultEmailVerificationTTL = 24 * time.Hour
)

// OneTimeTokens issues single-use tokens. The raw token goes to the user;
// only its SHA-256 digest is stored.
type OneTimeTokens struct {
	Purpose Purpose
	TTL     time.Duration
	Clock   Clock
}

func NewPasswordResetTokens(clock Clock, ttl time.Duration) *OneTimeTokens {
	if ttl <= 0 {
		ttl = DefaultPasswordResetTTL
	}
	return &OneTimeTokens{Purpose: PurposePasswordReset, TTL: ttl, Clock: clock}
}

func NewEmailVerificationTokens(clock Clock, ttl time.Duration) *OneTimeTokens {
	if ttl <= 0 {
		ttl = DefaultEmailVerificationTTL
	}
	return &OneTimeTokens{Purpose: PurposeEmailVerification, TTL: ttl, Clock: clock}
}

func (o *OneTimeTokens) fields(sec *domain.SecurityState) (*string, **time.Time) {
	if o.Purpose == PurposeEmailVerification {
		return &sec.VerificationTokenHash, &sec.VerificationExpires
	}
	return &sec.PasswordResetTokenHash, &sec.PasswordResetExpires
}

// Generate replaces any previous token of this purpose and returns the raw
// value.
func (o *OneTimeTokens) Generate(sec *domain.SecurityState) (string, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	digest, expires := o.fields(sec)
	exp := o.Clock.Now().Add(o.TTL)
	*digest = cryptox.DigestToken(raw)
	*expires = &exp
	return raw, nil
}

// Verify checks raw against the stored digest and expiry.
func (o *OneTimeTokens) Verify(sec *domain.SecurityState, raw string) bool {
	digest, expires := o.fields(sec)
	if *expires == nil || !(*expires).After(o.Clock.Now()) {
		return false
	}
	return cryptox.DigestMatches(raw, *digest)
}

// Consume clears the digest and expiry so the token cannot be reused.
func (o *OneTimeTokens) Consume(sec *domain.SecurityState) {
	digest, expires := o.fields(sec)
	*digest = ""
	*expires = nil
}

// Lookup finds the account holding a live token matching raw.
func (o *OneTimeTokens) Lookup(ctx context.Context, accounts store.Accounts, raw string) (domain.Account, error) {
	digest := cryptox.DigestToken(raw)
	now := o.Clock.Now()
	var (
		a   domain.Account
		err error
	)
	if o.Purpose == PurposeEmailVerification {
		a, err = accounts.GetByVerificationTokenHash(ctx, digest, now)
	} else {
		a, err = accounts.GetByResetTokenHash(ctx, digest, now)
	}
	if err != nil {
		return domain.Account{}, err
	}
	if !o.Verify(&a.Security, raw) {
		return domain.Account{}, store.ErrNotFound
	}
	return a, nil
}
