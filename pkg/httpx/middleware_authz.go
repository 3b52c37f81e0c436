package httpx

import (
	"net/http"
	"slices"
)

// RequireRole lets the request through only if the caller's role claim is
// one of roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", msgUnauthorized)
				return
			}
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "forbidden",
					"Forbidden. You do not have permission to access this resource.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
