package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"ladderscope/internal/auth"
	"ladderscope/internal/config"
	"ladderscope/internal/ingest"
	"ladderscope/internal/predict"
	"ladderscope/internal/presets"
	"ladderscope/internal/storage"
)

// scanQueueTimeout is how long a rank or group request waits for a free
// scan slot before it is shed.
const scanQueueTimeout = 2 * time.Second

// Pinger reports whether the round store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// BatchLister lists recent ingest batches, newest first
type BatchLister interface {
	RecentBatches(ctx context.Context, limit int) ([]storage.IngestBatch, error)
}

// Deps are the services behind the handlers. Importer, Guard, Store and
// Batches may be nil: ingest is then disabled, /ready skips the store check
// and /stats omits the import history.
type Deps struct {
	Engine   *predict.Engine
	Presets  *presets.Registry
	Importer *ingest.Importer
	Guard    *auth.IngestGuard
	Store    Pinger
	Batches  BatchLister
	Logger   *slog.Logger
}

// Server represents the HTTP API server
type Server struct {
	router *http.ServeMux
	server *http.Server
	addr   string
	cfg    config.ServerConfig
	mcfg   config.MetricsConfig
	logger *slog.Logger

	engine   *predict.Engine
	presets  *presets.Registry
	importer *ingest.Importer
	guard    *auth.IngestGuard
	store    Pinger
	batches  BatchLister
	scans    *ScanLimiter
	started  time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Presets == nil {
		deps.Presets = presets.Builtin()
	}
	if deps.Guard == nil {
		deps.Guard = auth.NewIngestGuard("", nil)
	}

	s := &Server{
		router:   http.NewServeMux(),
		addr:     cfg.Addr(),
		cfg:      cfg.Server,
		mcfg:     cfg.Metrics,
		logger:   deps.Logger,
		engine:   deps.Engine,
		presets:  deps.Presets,
		importer: deps.Importer,
		guard:    deps.Guard,
		store:    deps.Store,
		batches:  deps.Batches,
		scans:    NewScanLimiter(cfg.Server.MaxConcurrentScans, scanQueueTimeout),
		started:  time.Now(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  seconds(cfg.Server.ReadTimeoutSec, 15),
		WriteTimeout: seconds(cfg.Server.WriteTimeoutSec, 15),
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// Addr returns the listen address
func (s *Server) Addr() string { return s.addr }

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = TimeoutMiddleware(seconds(s.cfg.RequestTimeoutSec, 10))(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware(s.cfg.CORSOrigin)(handler)
	if s.cfg.Gzip {
		handler = gzhttp.GzipHandler(handler)
	}
	return handler
}
