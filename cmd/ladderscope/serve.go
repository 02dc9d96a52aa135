package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ladderscope/internal/api"
	"ladderscope/internal/auth"
	"ladderscope/internal/ingest"
	"ladderscope/internal/storage"
)

var (
	servePort int
	serveHost string
)

// pruneInterval is how often the retention sweep runs while serving.
const pruneInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the ladderscope HTTP API server. It serves predictions, rankings,
group predictions and history stats over the stored rounds, and accepts
round batches on POST /rounds when an ingest token hash is configured.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: server.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLogs()

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}

	logger := logFactory.ServerLogger()
	if err := logFactory.Err(); err != nil {
		logger.Warn("Log file unavailable, logging to stderr only", "error", err.Error())
	}

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := newEngine(cfg, repo)
	if err != nil {
		return err
	}
	reg, err := loadPresets(cfg)
	if err != nil {
		return err
	}

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	limiter := auth.NewRateLimiter(cfg.Server.IngestRateLimit, 0, logger)
	limiter.StartCleanup(bg, 5*time.Minute)
	guard := auth.NewIngestGuard(cfg.Server.IngestTokenHash, limiter)

	var importer *ingest.Importer
	if guard.Enabled() {
		importer = ingest.NewImporter(repo, db, logFactory.IngestLogger())
	} else {
		logger.Info("Ingest disabled: server.ingestTokenHash is not set")
	}

	if cfg.Store.RetentionDays > 0 {
		go pruneLoop(bg, repo, cfg.Store.RetentionDays, logFactory.StoreLogger())
	}

	server := api.NewServer(cfg, api.Deps{
		Engine:   engine,
		Presets:  reg,
		Importer: importer,
		Guard:    guard,
		Store:    db,
		Batches:  db,
		Logger:   logger,
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("ladderscope HTTP API server listening on http://%s\n", server.Addr())
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}

		logger.Info("Server stopped gracefully")
	}

	return nil
}

// pruneLoop drops rounds older than the retention window once at start
// and then every pruneInterval until ctx is cancelled.
func pruneLoop(ctx context.Context, repo *storage.RoundRepository, days int, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		if _, err := repo.DeleteBefore(ctx, retentionCutoff(time.Now(), days)); err != nil && ctx.Err() == nil {
			logger.Warn("Retention prune failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
