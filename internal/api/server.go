// Package api provides the ops HTTP server: health and readiness probes and
// read-only lookup endpoints over the settings store.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/models"
)

// Interfaces for dependency injection and testing

// ResolverInterface defines the lookup operations the API exposes
type ResolverInterface interface {
	ResolvePro(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error)
	ResolveTeams(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error)
}

// StatsProvider defines the record counters behind the stats endpoint
type StatsProvider interface {
	CountPro(ctx context.Context) (int64, error)
	CountReddit(ctx context.Context) (int64, error)
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkerStatus reports the inbox worker's health
type WorkerStatus interface {
	Status() (running bool, lastPoll time.Time, processed uint64)
}

// Server represents the ops HTTP server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	resolver   ResolverInterface
	stats      StatsProvider
	db         Pinger
	cache      Pinger
	worker     WorkerStatus
	config     *ServerConfig
	logger     *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	RequestsPerIP int
}

// NewServer creates a new ops server instance. cache and worker may be nil;
// the readiness and stats handlers degrade accordingly.
func NewServer(
	config *ServerConfig,
	resolver ResolverInterface,
	stats StatsProvider,
	db Pinger,
	cache Pinger,
	worker WorkerStatus,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		resolver: resolver,
		stats:    stats,
		db:       db,
		cache:    cache,
		worker:   worker,
		config:   config,
		logger:   logger.WithField("component", "api"),
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rps := s.config.RequestsPerIP
	if rps <= 0 {
		rps = 10
	}
	rateLimiter := NewRateLimiter(rps)

	// Middleware order matters: the request id must exist before logging.
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/players", s.handlePlayers).Methods("GET")
	api.HandleFunc("/teams", s.handleTeams).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting ops API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
