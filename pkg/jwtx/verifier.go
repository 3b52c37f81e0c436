package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrKindMismatch = errors.New("jwtx: token kind mismatch")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")

	// ErrExpired and ErrInvalid are the two outcomes callers branch on.
	// Every other error above is wrapped in ErrInvalid.
	ErrExpired = errors.New("jwtx: token expired")
	ErrInvalid = errors.New("jwtx: invalid token")

	ErrWeakSecret = errors.New("jwtx: secret must be at least 32 bytes")
)

// Verifier validates an access token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Config configures an HS256Issuer.
type HS256Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// HS256Issuer signs and verifies access and refresh tokens with two
// independent HMAC secrets.
type HS256Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	leeway        time.Duration
	now           func() time.Time
}

// NewHS256Issuer checks the secrets and fills in default TTLs.
func NewHS256Issuer(cfg HS256Config) (*HS256Issuer, error) {
	if len(cfg.AccessSecret) < MinSecretLength {
		return nil, fmt.Errorf("%w: access secret", ErrWeakSecret)
	}
	if len(cfg.RefreshSecret) < MinSecretLength {
		return nil, fmt.Errorf("%w: refresh secret", ErrWeakSecret)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}

	i := &HS256Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		leeway:        cfg.Leeway,
		now:           cfg.Now,
	}
	if i.accessTTL <= 0 {
		i.accessTTL = DefaultAccessTokenTTL
	}
	if i.refreshTTL <= 0 {
		i.refreshTTL = DefaultRefreshTokenTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i, nil
}

// RefreshTTL returns the configured refresh token lifetime.
func (i *HS256Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess signs a short-lived access token for sub.
func (i *HS256Issuer) IssueAccess(sub AccessSubject) (string, Claims, error) {
	claims := Claims{
		RegisteredClaims: newRegistered(sub.ID, i.issuer, i.accessTTL, i.now().UTC()),
		Type:             KindAccess,
		Username:         sub.Username,
		Email:            sub.Email,
		Role:             sub.Role,
	}
	token, err := i.sign(claims, i.accessSecret)
	return token, claims, err
}

// IssueRefresh signs a refresh token that only identifies the account.
func (i *HS256Issuer) IssueRefresh(accountID string) (string, Claims, error) {
	claims := Claims{
		RegisteredClaims: newRegistered(accountID, i.issuer, i.refreshTTL, i.now().UTC()),
		Type:             KindRefresh,
	}
	token, err := i.sign(claims, i.refreshSecret)
	return token, claims, err
}

func (i *HS256Issuer) sign(claims Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature with the secret for kind, then the time
// claims, issuer and type. The error is ErrExpired or wraps ErrInvalid.
func (i *HS256Issuer) Verify(tokenStr string, kind Kind) (Claims, error) {
	secret := i.accessSecret
	if kind == KindRefresh {
		secret = i.refreshSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithLeeway(i.leeway),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, ErrMalformed)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, ErrInvalidSig)
		default:
			return Claims{}, fmt.Errorf("%w: parse or verify: %w", ErrInvalid, err)
		}
	}

	if claims.Type != kind {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, ErrKindMismatch)
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, ErrIssuer)
	}
	return claims, nil
}

// Decode parses a token without checking its signature or expiry. Only use
// the result for bookkeeping such as reading exp on logout.
func (i *HS256Issuer) Decode(tokenStr string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return claims, nil
}

// AccessVerifier adapts the issuer to the Verifier interface for access
// tokens.
type AccessVerifier struct{ *HS256Issuer }

func (a AccessVerifier) Verify(token string) (Claims, error) {
	return a.HS256Issuer.Verify(token, KindAccess)
}
