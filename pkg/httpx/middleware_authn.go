package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

// BlacklistChecker reports whether a raw access token was revoked.
type BlacklistChecker interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// AccountState is the stored standing of the account a token names.
type AccountState struct {
	Role   string
	Active bool
}

// AccountChecker loads the current state of an account. Implementations
// return ErrAccountNotFound when the account no longer exists.
type AccountChecker interface {
	LookupAccount(ctx context.Context, id string) (AccountState, error)
}

// ErrAccountNotFound is returned by an AccountChecker for deleted accounts.
var ErrAccountNotFound = errors.New("httpx: account not found")

const (
	msgUnauthorized    = "Unauthorized. Please login."
	msgTokenExpired    = "Token expired. Please refresh or login again."
	msgTokenRevoked    = "Token has been invalidated. Please login again."
	msgAuthnFailClose  = "Unable to validate token. Please login again."
	msgAccountInactive = "Account is deactivated"
)

// AuthnMiddleware verifies the bearer access token, checks it against the
// blacklist and then reloads the account. Deleted or deactivated accounts
// are rejected and the stored role replaces the role claim. Lookup
// failures reject the request.
func AuthnMiddleware(v jwtx.Verifier, bl BlacklistChecker, accounts AccountChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token", msgUnauthorized)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					writeBearerError(w, "token expired", msgTokenExpired)
					return
				}
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed", msgUnauthorized)
				return
			}

			if bl != nil {
				revoked, err := bl.Contains(ctx, raw)
				if err != nil {
					log.Error("blacklist lookup failed", "err", err)
					writeBearerError(w, "token status unavailable", msgAuthnFailClose)
					return
				}
				if revoked {
					writeBearerError(w, "token revoked", msgTokenRevoked)
					return
				}
			}

			if accounts != nil {
				state, err := accounts.LookupAccount(ctx, claims.Subject)
				switch {
				case errors.Is(err, ErrAccountNotFound):
					writeBearerError(w, "account not found", msgUnauthorized)
					return
				case err != nil:
					log.Error("account lookup failed", "err", err)
					writeBearerError(w, "account status unavailable", msgAuthnFailClose)
					return
				case !state.Active:
					writeBearerError(w, "account inactive", msgAccountInactive)
					return
				}
				claims.Role = state.Role
			}

			ctx = contextWithAuth(ctx, claims, raw)
			ctx = slogx.WithAccount(ctx, claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}
