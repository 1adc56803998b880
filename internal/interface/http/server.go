// Package http implements the REST API for the learning hub: XP awards,
// rankings, profiles, the top-member badge, and administrative maintenance
// endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/query"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration

	// AdminKeyHash is the bcrypt hash of the admin API key. Empty disables
	// the admin endpoints entirely.
	AdminKeyHash string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports readiness of the server's dependencies.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Dependencies contains everything the handlers call into.
type Dependencies struct {
	// Commands (CQRS write side)
	AwardXP      *command.AwardXPHandler
	Reconcile    *command.ReconcileMonthlyXPHandler
	SyncLevels   *command.SyncLevelHandler
	SyncCeilings *command.SyncMonthlyCeilingHandler

	// Queries (CQRS read side)
	GetRanking   *query.GetRankingHandler
	GetTopMember *query.GetTopMemberHandler
	GetProfile   *query.GetProfileHandler

	// Health
	Health HealthChecker

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	log        *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a Server with routes registered.
func NewServer(cfg Config, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		log:    log,
	}

	router := mux.NewRouter()
	router.Use(s.recoverMiddleware, s.loggingMiddleware)

	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/xp/awards", s.handleAwardXP).Methods(http.MethodPost)
	api.HandleFunc("/ranking", s.handleGetRanking).Methods(http.MethodGet)
	api.HandleFunc("/members/top", s.handleGetTopMember).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/profile", s.handleGetProfile).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.adminAuthMiddleware)
	admin.HandleFunc("/reconcile", s.handleReconcile).Methods(http.MethodPost)
	admin.HandleFunc("/sync-level", s.handleSyncLevel).Methods(http.MethodPost)
	admin.HandleFunc("/sync-ceiling", s.handleSyncCeiling).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.log.Info("http server starting", logger.String("addr", s.config.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http: server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.log.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}
