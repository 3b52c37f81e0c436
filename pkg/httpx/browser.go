package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/unrolled/secure"
)

// CORSConfig names the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string      `koanf:"allowedOrigins"`
	AllowCredentials bool          `koanf:"allowCredentials"`
	MaxAge           time.Duration `koanf:"maxAge"`
}

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	}
	corsHeaders = []string{"Content-Type", "Authorization"}
)

// CORS answers preflight requests and tags responses for the configured
// origins. Requests from other origins get no CORS headers.
func CORS(cfg CORSConfig) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
	return c.Handler
}

// SecurityHeadersConfig tunes the response hardening headers.
type SecurityHeadersConfig struct {
	// HSTSMaxAge of zero omits Strict-Transport-Security.
	HSTSMaxAge time.Duration `koanf:"hstsMaxAge"`
}

// DefaultHSTSMaxAge is one year.
const DefaultHSTSMaxAge = 365 * 24 * time.Hour

// ContentSecurityPolicy is sent on every response. The API serves JSON and
// the swagger UI, neither of which loads third-party assets.
var ContentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"script-src 'self'",
	"img-src 'self' data: https:",
	"connect-src 'self'",
	"font-src 'self'",
	"object-src 'none'",
	"media-src 'self'",
	"frame-src 'none'",
	"frame-ancestors 'none'",
	"form-action 'self'",
	"base-uri 'self'",
	"upgrade-insecure-requests",
}, "; ")

// SecurityHeaders sets CSP, HSTS, frame denial and MIME sniffing headers.
// HSTS is sent regardless of req.TLS since TLS usually ends at a proxy.
func SecurityHeaders(cfg SecurityHeadersConfig) Middleware {
	s := secure.New(secure.Options{
		STSSeconds:            int64(cfg.HSTSMaxAge.Seconds()),
		STSIncludeSubdomains:  true,
		STSPreload:            true,
		ForceSTSHeader:        true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: ContentSecurityPolicy,
	})
	return s.Handler
}
