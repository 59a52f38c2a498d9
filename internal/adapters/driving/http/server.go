// Package http exposes the pipeline over a JSON REST API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *slog.Logger
	version    string

	// Services
	retrievalService  driving.RetrievalService
	ingestionService  driving.IngestionService
	generationService driving.GenerationService
	settingsService   driving.SettingsService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// AuthSecret is the HMAC secret for bearer tokens. Empty disables auth.
	AuthSecret string

	// AllowedOrigins for CORS. Empty disables CORS handling.
	AllowedOrigins []string

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Services groups the driving ports the server dispatches to.
type Services struct {
	Retrieval  driving.RetrievalService
	Ingestion  driving.IngestionService
	Generation driving.GenerationService
	Settings   driving.SettingsService
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	services Services,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:            http.NewServeMux(),
		logger:            logger,
		version:           cfg.Version,
		retrievalService:  services.Retrieval,
		ingestionService:  services.Ingestion,
		generationService: services.Generation,
		settingsService:   services.Settings,
		taskQueue:         taskQueue,
		db:                db,
		redisClient:       redisClient,
	}

	s.setupRoutes(cfg)

	handler := http.Handler(s.router)
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	authMiddleware := NewAuthMiddleware(cfg.AuthSecret)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// protected registers an authenticated route
	protected := func(pattern string, h http.HandlerFunc) {
		s.router.Handle(pattern, authMiddleware.Authenticate(h))
	}

	// Retrieval
	protected("POST /api/v1/search", s.handleSearch)

	// Ingestion (synchronous)
	protected("POST /api/v1/ingest", s.handleIngest)
	protected("POST /api/v1/ingest/batch", s.handleIngestBatch)

	// Ingestion (background, via task queue)
	protected("POST /api/v1/ingest/file", s.handleIngestFileAsync)
	protected("POST /api/v1/ingest/folder", s.handleIngestFolderAsync)
	protected("GET /api/v1/tasks/{id}", s.handleGetTask)

	// Source registry
	protected("GET /api/v1/sources", s.handleListSources)
	protected("DELETE /api/v1/sources/{id...}", s.handleDeleteSource)
	protected("GET /api/v1/stats", s.handleStats)

	// Drafting
	protected("POST /api/v1/drafts", s.handleGenerateDraft)
	protected("POST /api/v1/drafts/refine", s.handleRefineDraft)
	protected("POST /api/v1/drafts/compare", s.handleCompareDrafts)
	protected("POST /api/v1/drafts/sections", s.handleExtractSections)
	protected("POST /api/v1/drafts/suggestions", s.handleSuggestImprovements)

	// AI settings
	protected("GET /api/v1/settings/ai", s.handleGetAISettings)
	protected("PUT /api/v1/settings/ai", s.handleUpdateAISettings)
	protected("GET /api/v1/settings/ai/status", s.handleGetAIStatus)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or listen failure
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
