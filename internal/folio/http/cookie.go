package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

// setRefreshCookie stores the refresh token for browser clients. SameSite
// None lets a frontend on another origin send it; browsers require Secure
// with it.
func setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// refreshTokenFrom prefers the cookie and falls back to the body value.
func refreshTokenFrom(r *http.Request, body string) string {
	if c, err := r.Cookie(authsdk.RefreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return body
}
