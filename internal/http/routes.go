package httpx

import (
	"log/slog"
	"net/http"

	"github.com/deskops/console-api/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Core *service.Core
	// BaseURL, when set, overrides request-derived OAuth2 callback URLs.
	BaseURL string
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router. Public routes (login,
// login options, the OIDC legs) are reachable without a token; everything
// else sits behind the bearer-token middleware. Every request, public or
// not, drives the maintenance tick on its way out.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Core: services.Core, Logger: logger}
	abHandlers := &AddressBookHandlers{Core: services.Core}
	oidcHandlers := &OidcHandlers{Core: services.Core, BaseURL: services.BaseURL, Logger: logger}

	registerPublicRoutes(mux, authHandlers, oidcHandlers)
	registerSessionRoutes(mux, authHandlers, abHandlers, services.Core)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Maintenance(services.Core)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerPublicRoutes(mux *http.ServeMux, auth *AuthHandlers, oidc *OidcHandlers) {
	mux.HandleFunc("POST /api/login", auth.Login)
	mux.HandleFunc("GET /api/login-options", auth.LoginOptions)
	mux.HandleFunc("POST /api/oidc/auth", oidc.Auth)
	mux.HandleFunc("GET /api/oidc/callback", oidc.Callback)
	mux.HandleFunc("GET /api/oidc/auth-query", oidc.AuthQuery)
}

func registerSessionRoutes(
	mux *http.ServeMux,
	auth *AuthHandlers,
	ab *AddressBookHandlers,
	core *service.Core,
) {
	wrap := RequireAuth(core)
	mux.Handle("POST /api/logout", wrap(http.HandlerFunc(auth.Logout)))
	mux.Handle("POST /api/currentUser", wrap(http.HandlerFunc(auth.CurrentUser)))
	mux.Handle("PUT /api/user", wrap(http.HandlerFunc(auth.ChangePassword)))
	mux.Handle("GET /api/ab", wrap(http.HandlerFunc(ab.Get)))
	mux.Handle("POST /api/ab/get", wrap(http.HandlerFunc(ab.Get)))
	mux.Handle("POST /api/ab", wrap(http.HandlerFunc(ab.Put)))
}
