package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
)

// TokenIssuer pairs JWT signing with the per-account refresh ring.
type TokenIssuer struct {
	JWT     *jwtx.HS256Issuer
	Clock   Clock
	RingCap int
}

// IssueAccess signs an access token carrying the account identity.
func (t *TokenIssuer) IssueAccess(a domain.Account) (string, jwtx.Claims, error) {
	return t.JWT.IssueAccess(jwtx.AccessSubject{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     string(a.Role),
	})
}

// IssueRefreshFor signs a refresh token, records its fingerprint in the
// account's ring and persists the ring through accounts, which should be
// bound to the caller's transaction. The oldest session falls off past the
// cap.
func (t *TokenIssuer) IssueRefreshFor(ctx context.Context, accounts store.Accounts, a *domain.Account) (string, error) {
	token, claims, err := t.JWT.IssueRefresh(a.ID)
	if err != nil {
		return "", err
	}

	ring := &a.Security.RefreshTokens
	if t.RingCap > 0 {
		ring.Cap = t.RingCap
	}
	ring.PruneExpired(t.Clock.Now())
	ring.Append(domain.RefreshTokenRecord{
		Token:     cryptox.FingerprintToken(token),
		CreatedAt: t.Clock.Now(),
		ExpiresAt: claims.ExpiresAt.Time,
	})

	if err := accounts.ReplaceRefreshTokens(ctx, a.ID, ring.Records()); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyRefresh checks the signature and kind of a refresh token.
func (t *TokenIssuer) VerifyRefresh(token string) (jwtx.Claims, error) {
	return t.JWT.Verify(token, jwtx.KindRefresh)
}

// AccessExpiry reads exp from an access token without verifying it. The
// second result is false when the token cannot be decoded or has no exp.
func (t *TokenIssuer) AccessExpiry(token string) (time.Time, bool) {
	claims, err := t.JWT.Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.JWT.RefreshTTL() }
