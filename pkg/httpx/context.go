package httpx

import (
	"context"

	"github.com/aussiebroadwan/folio/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"
	CtxKeyRole        ctxKey = "role"
	CtxKeyClaims      ctxKey = "claims"
	CtxKeyAccessToken ctxKey = "access_token"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyAccessToken, raw)
	return ctx
}

// UserIDFromContext returns the authenticated account ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// RoleFromContext returns the role claim of the authenticated caller.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRole).(string)
	return v
}

// ClaimsFromContext returns the verified access token claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// AccessTokenFromContext returns the raw bearer token, needed to blacklist
// it on logout.
func AccessTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyAccessToken).(string)
	return v
}
