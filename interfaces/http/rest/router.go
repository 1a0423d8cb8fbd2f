package rest

import (
	"context"
	"net/http"
	"time"

	"dailytens/application/commands/bus"
	"dailytens/application/ports"
	querybus "dailytens/application/queries/bus"
	"dailytens/interfaces/http/rest/handlers"
	"dailytens/interfaces/http/rest/middleware"
	pkgerrors "dailytens/pkg/errors"
	"dailytens/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// readyProbeDate is a key no game will ever use; reading it exercises the
// store without depending on content.
const readyProbeDate = "0001-01-01"

const readyTimeout = 3 * time.Second

// RouterConfig holds the HTTP surface options
type RouterConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	Auth           middleware.AuthConfig
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	repo         ports.GameRepository
	errorHandler *pkgerrors.ErrorHandler
	metrics      *observability.Collector
	config       RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	repo ports.GameRepository,
	errorHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		repo:         repo,
		errorHandler: errorHandler,
		metrics:      metrics,
		config:       config,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.config.EnableCORS {
		origins := rt.config.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	gameHandler := handlers.NewGameHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/config", gameHandler.GetConfig)

		r.Route("/game", func(r chi.Router) {
			r.Get("/", gameHandler.GetGame)
			r.Get("/{date}", gameHandler.GetGame)
			r.With(middleware.RequireAuthor(rt.config.Auth, rt.logger)).Post("/", gameHandler.CreateGame)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the store answers a point read
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if _, _, err := rt.repo.Get(ctx, readyProbeDate); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
