package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/httpx"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/aussiebroadwan/folio/pkg/slogx"

	_ "github.com/aussiebroadwan/folio/api/folio" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits groups the per-route limits. Zero values take the httpx
// defaults.
type RateLimits struct {
	Login         httpx.RateLimitConfig `koanf:"login"`
	Register      httpx.RateLimitConfig `koanf:"register"`
	PasswordReset httpx.RateLimitConfig `koanf:"passwordReset"`
	API           httpx.RateLimitConfig `koanf:"api"`
}

// DefaultRateLimits mirrors the httpx profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Login:         httpx.AuthLimit,
		Register:      httpx.RegisterLimit,
		PasswordReset: httpx.PasswordResetLimit,
		API:           httpx.APILimit,
	}
}

func (l RateLimits) withDefaults() RateLimits {
	d := DefaultRateLimits()
	if l.Login.RequestsPerWindow == 0 {
		l.Login = d.Login
	}
	if l.Register.RequestsPerWindow == 0 {
		l.Register = d.Register
	}
	if l.PasswordReset.RequestsPerWindow == 0 {
		l.PasswordReset = d.PasswordReset
	}
	if l.API.RequestsPerWindow == 0 {
		l.API = d.API
	}
	return l
}

// BrowserPolicy configures the middlewares that face browser clients.
type BrowserPolicy struct {
	CORS    httpx.CORSConfig
	Headers httpx.SecurityHeadersConfig
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	blacklist    store.Blacklist
	cipher       *cryptox.FieldCipher
	limits       RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	AuthService      *service.AuthService
	ProfileService   *service.ProfileService
	PortfolioService *service.PortfolioService
	AdminService     *service.AdminService

	// api is the shared general limiter for every /v1 route.
	api httpx.Middleware
}

func NewRouter(
	verifier jwtx.Verifier,
	bl store.Blacklist,
	cipher *cryptox.FieldCipher,
	limits RateLimits,
	browser BrowserPolicy,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		blacklist:    bl,
		cipher:       cipher,
		limits:       limits.withDefaults(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
	r.api = httpx.RateLimitByIP(r.limits.API)

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SecurityHeaders(browser.Headers),
		httpx.CORS(browser.CORS),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPortfolio()
	r.registerContent()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Folio Portfolio API
//	@version		0.1.0
//	@description	Portfolio backend with account registration, JWT sessions, password reset and encrypted profile fields.
//	@description
//	@description				Access tokens are HS256 JWTs valid for 15 minutes. Refresh tokens travel in the HttpOnly refreshToken cookie.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/folio
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed chains the general limit, bearer authentication and any extra
// middlewares in front of h.
func (r *Router) authed(h http.HandlerFunc, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{
		r.api,
		httpx.AuthnMiddleware(r.verifier, r.blacklist, accountChecker{accounts: r.store.Accounts()}),
	}, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Login counts failed attempts per IP and email; successful logins are refunded.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.api,
			httpx.RateLimitByIPAndJSONField(r.limits.Login, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.api,
			httpx.RateLimitByIP(r.limits.Register),
		),
	)

	// Forgot and reset share one budget per IP.
	reset := httpx.RateLimitByIP(r.limits.PasswordReset)
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword), r.api, reset),
	)
	r.Mux.Handle("POST /v1/auth/reset-password/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword), r.api, reset),
	)
	r.Mux.Handle("POST /v1/auth/resend-verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification), r.api, reset),
	)

	r.Mux.Handle("POST /v1/auth/refresh", httpx.Chain(http.HandlerFunc(h.HandleRefresh), r.api))
	r.Mux.Handle("POST /v1/auth/verify-email/{token}", httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail), r.api))

	r.Mux.Handle("POST /v1/auth/logout", r.authed(h.HandleLogout))
	r.Mux.Handle("POST /v1/auth/change-password", r.authed(h.HandleChangePassword))
}

func (r *Router) registerPortfolio() {
	h := &PortfolioHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/me/portfolio", r.authed(h.HandleGet))
	r.Mux.Handle("PUT /v1/me/portfolio", r.authed(h.HandleUpdate))
	r.Mux.Handle("GET /v1/me/dashboard", r.authed(h.HandleDashboard))

	r.Mux.Handle("GET /v1/portfolio/{username}", httpx.Chain(http.HandlerFunc(h.HandlePublic), r.api))
}

func (r *Router) registerContent() {
	h := &ContentHandler{PortfolioService: r.PortfolioService}

	r.Mux.Handle("GET /v1/me/projects", r.authed(h.HandleListProjects))
	r.Mux.Handle("POST /v1/me/projects", r.authed(h.HandleCreateProject))
	r.Mux.Handle("PUT /v1/me/projects/{id}", r.authed(h.HandleUpdateProject))
	r.Mux.Handle("DELETE /v1/me/projects/{id}", r.authed(h.HandleDeleteProject))

	r.Mux.Handle("GET /v1/me/posts", r.authed(h.HandleListPosts))
	r.Mux.Handle("POST /v1/me/posts", r.authed(h.HandleCreatePost))
	r.Mux.Handle("PUT /v1/me/posts/{id}", r.authed(h.HandleUpdatePost))
	r.Mux.Handle("DELETE /v1/me/posts/{id}", r.authed(h.HandleDeletePost))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}
	admin := httpx.RequireRole(string(domain.RoleAdmin))

	r.Mux.Handle("GET /v1/admin/users", r.authed(h.HandleList, admin))
	r.Mux.Handle("GET /v1/admin/users/{id}", r.authed(h.HandleGet, admin))
	r.Mux.Handle("DELETE /v1/admin/users/{id}", r.authed(h.HandleDelete, admin))
	r.Mux.Handle("GET /v1/admin/users/{id}/portfolio", r.authed(h.HandleGetPortfolio, admin))
	r.Mux.Handle("PUT /v1/admin/users/{id}/portfolio", r.authed(h.HandleUpdatePortfolio, admin))
	r.Mux.Handle("DELETE /v1/admin/users/{id}/projects/{projectID}", r.authed(h.HandleDeleteProject, admin))
	r.Mux.Handle("DELETE /v1/admin/users/{id}/posts/{postID}", r.authed(h.HandleDeletePost, admin))
	r.Mux.Handle("PUT /v1/admin/users/{id}/active", r.authed(h.HandleSetActive, admin))
	r.Mux.Handle("PUT /v1/admin/users/{id}/role", r.authed(h.HandleSetRole, admin))
}

func (r *Router) registerSystem() {
	// Health checks sit outside the general limit; monitors poll them often.
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.blacklist, r.cipher))
}
