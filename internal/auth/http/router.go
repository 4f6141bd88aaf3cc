package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/handshake"
	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/httpx"
	"github.com/aussiebroadwan/pres/pkg/slogx"

	_ "github.com/aussiebroadwan/pres/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	authn        *httpx.Authenticator
	keys         KeyChecker
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db           Pinger
	refreshStore Pinger // nil when refresh tokens live in db
	handshake    *handshake.Cache

	TokenService     *service.TokenService
	PrincipalService *service.PrincipalService
	IdentityService  *service.IdentityService // Optional: provider login is off without it

	TestTokensEnabled bool
}

func NewRouter(
	authn *httpx.Authenticator,
	keys KeyChecker,
	buildVersion string,
	db Pinger,
	refreshStore Pinger,
	hs *handshake.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		authn:        authn,
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		db:           db,
		refreshStore: refreshStore,
		handshake:    hs,
		logger:       logger,
	}

	// Logging first so the filter's debug lines carry the request id.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.AuthnMiddleware(r.authn),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerCredentials()
	r.registerTokens()
	r.registerProvider()
	r.registerPrincipal()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Pres Authentication Service API
//	@version		0.1.0
//	@description	Stateless authentication: HS256 JWT access tokens, one stored refresh token per account, local credentials and Kakao login.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/pres
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCredentials() {
	// Strict by IP: these are the brute force targets.
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(&SignupHandler{PrincipalService: r.PrincipalService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{PrincipalService: r.PrincipalService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTokens() {
	r.Mux.Handle("POST /api/token",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	if r.TestTokensEnabled {
		r.logger.Warn("test token endpoint enabled")
		r.Mux.Handle("POST /test-token",
			httpx.Chain(&TestTokenHandler{PrincipalService: r.PrincipalService},
				httpx.RateLimitByIP(httpx.StrictLimit),
			),
		)
	}
}

func (r *Router) registerProvider() {
	if r.IdentityService == nil {
		return
	}

	login := httpx.Chain(
		&ProviderLoginHandler{IdentityService: r.IdentityService, Handshake: r.handshake},
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /auth/kakao/login", login)
	r.Mux.Handle("POST /auth/kakao/login", login)

	r.Mux.Handle("GET /auth/kakao/callback",
		httpx.Chain(&ProviderCallbackHandler{IdentityService: r.IdentityService, Handshake: r.handshake},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPrincipal() {
	r.Mux.Handle("GET /api/me",
		httpx.Chain(&MeHandler{PrincipalService: r.PrincipalService},
			httpx.RequireAuthenticated(),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/logout-all",
		httpx.Chain(&LogoutAllHandler{TokenService: r.TokenService},
			httpx.RequireAuthenticated(),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.refreshStore, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
