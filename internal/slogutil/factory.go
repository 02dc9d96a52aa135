package slogutil

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"ladderscope/internal/config"
)

// LoggerFactory hands out per-component loggers sharing one set of sinks.
// Level precedence is CLI flag, then logging.level from config, then info.
type LoggerFactory struct {
	cfg      *config.Config
	cliLevel *slog.Level
	stderr   io.Writer

	once    sync.Once
	handler slog.Handler
	closer  io.Closer
	openErr error
}

// NewLoggerFactory creates a factory. cliLevel is nil when no verbosity
// flag was given.
func NewLoggerFactory(cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{cfg: cfg, cliLevel: cliLevel, stderr: os.Stderr}
}

// Level returns the effective level.
func (f *LoggerFactory) Level() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.cfg.Logging.Level != "" {
		return LevelFromString(f.cfg.Logging.Level)
	}
	return slog.LevelInfo
}

// Logger returns a logger tagged with component=name. When logging.file is
// set, records go to stderr and the (optionally rotated) file. A file that
// cannot be opened degrades to stderr only and is reported by Err.
func (f *LoggerFactory) Logger(name string) *slog.Logger {
	f.once.Do(f.build)
	return slog.New(f.handler).With("component", name)
}

// ServerLogger is the logger for the HTTP server.
func (f *LoggerFactory) ServerLogger() *slog.Logger { return f.Logger("server") }

// IngestLogger is the logger for round imports.
func (f *LoggerFactory) IngestLogger() *slog.Logger { return f.Logger("ingest") }

// StoreLogger is the logger for the round store.
func (f *LoggerFactory) StoreLogger() *slog.Logger { return f.Logger("store") }

// Err reports a failure to open the log file.
func (f *LoggerFactory) Err() error {
	f.once.Do(f.build)
	return f.openErr
}

func (f *LoggerFactory) build() {
	level := f.Level()
	format := f.cfg.Logging.Format
	console := NewHandler(f.stderr, level, format)

	if f.cfg.Logging.File == "" {
		f.handler = console
		return
	}

	w, err := OpenLogFile(f.cfg.Logging.File, f.cfg.Logging.MaxSize, f.cfg.Logging.MaxBackups)
	if err != nil {
		f.openErr = err
		f.handler = console
		return
	}
	f.closer = w
	f.handler = NewTeeHandler(console, NewHandler(w, level, format))
}

// Close closes the log file, if one was opened.
func (f *LoggerFactory) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}
