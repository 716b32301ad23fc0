package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Noah170803/eventio/internal/api/handlers"
	"github.com/Noah170803/eventio/internal/api/middleware"
	"github.com/Noah170803/eventio/internal/audit"
	"github.com/Noah170803/eventio/internal/auth"
	"github.com/Noah170803/eventio/internal/config"
	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/Noah170803/eventio/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Repo      storage.Repository
	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the HTTP handler tree for the API, health probes and
// metrics.
func NewRouter(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	logger := deps.Logger

	if deps.Repo == nil {
		return nil, fmt.Errorf("router: repository is required")
	}
	backend, err := storage.BackendFor(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	scheme, err := users.PasswordSchemeByName(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}

	auditLogger := audit.NewLogger(logger)
	userService := users.NewService(deps.Repo.Users(), logger,
		users.WithPasswordScheme(scheme),
		users.WithSessionTTL(cfg.Auth.SessionTTL),
		users.WithAuditLogger(auditLogger),
	)
	sessions := auth.NewSessionValidator(deps.Repo.Users())
	eventService := events.NewService(deps.Repo.Events(), sessions, auditLogger, logger)

	authHandler := handlers.NewAuthHandler(userService, cfg.Environment, cfg.Auth.SessionCookieName, cfg.IsProduction())
	eventsHandler := handlers.NewEventsHandler(eventService, cfg.Environment)
	health := handlers.NewHealthChecker(deps.Repo, deps.Repo.MigrationVersion, string(backend), deps.Version, deps.GitCommit)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /health", health.Health())
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /api/openapi.json", OpenAPIHandler())

	mux.HandleFunc("GET /api", handlers.Index)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodDelete: http.HandlerFunc(eventsHandler.Delete),
	}))
	mux.HandleFunc("POST /api/events/{id}/participate", eventsHandler.Participate)
	mux.HandleFunc("POST /api/events/{id}/unparticipate", eventsHandler.Unparticipate)

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = audit.Middleware(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.IsProduction())(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.Recover(logger, cfg.Environment)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
