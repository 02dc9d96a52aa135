package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ladderscope/internal/config"
	"ladderscope/internal/predict"
	"ladderscope/internal/presets"
	"ladderscope/internal/slogutil"
	"ladderscope/internal/storage"
)

var (
	cfgOnce    sync.Once
	cfgInst    *config.Config
	cfgErr     error
	logFactory *slogutil.LoggerFactory
)

// loadConfig loads <data-dir>/config.json once per process and sets up
// the logger factory.
func loadConfig() (*config.Config, error) {
	cfgOnce.Do(func() {
		cfgInst, cfgErr = config.LoadConfig(dataDirFlag)
		if cfgErr != nil {
			return
		}
		logFactory = slogutil.NewLoggerFactory(cfgInst, cliLevel())
	})
	return cfgInst, cfgErr
}

// componentLogger returns a tagged logger, or a discarding one when the
// config never loaded.
func componentLogger(name string) *slog.Logger {
	if logFactory == nil {
		return slogutil.NewDiscardLogger()
	}
	return logFactory.Logger(name)
}

// openStore opens the round database for cfg.
func openStore(cfg *config.Config) (*storage.DB, *storage.RoundRepository, error) {
	db, err := storage.Open(cfg.StoreDir(), logFactory.StoreLogger())
	if err != nil {
		return nil, nil, err
	}
	return db, storage.NewRoundRepository(db, cfg.Store.FetchLimit), nil
}

// newEngine builds a prediction engine over source with the config defaults.
func newEngine(cfg *config.Config, source predict.RoundSource) (*predict.Engine, error) {
	opts, err := predict.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return predict.NewEngine(source, opts, componentLogger("predict")), nil
}

// loadPresets reads the presets file over the built-ins and applies the
// configured default.
func loadPresets(cfg *config.Config) (*presets.Registry, error) {
	reg, err := presets.Load(cfg.PresetsPath())
	if err != nil {
		return nil, err
	}
	if cfg.Prediction.DefaultPreset != "" {
		if err := reg.SetDefault(cfg.Prediction.DefaultPreset); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// engineHandle bundles an engine with whatever must be closed after use.
type engineHandle struct {
	cfg     *config.Config
	engine  *predict.Engine
	db      *storage.DB
	presets *presets.Registry
}

func (h *engineHandle) Close() {
	if h.db != nil {
		_ = h.db.Close()
	}
	closeLogs()
}

// closeLogs flushes and closes the log file, if any.
func closeLogs() {
	if logFactory != nil {
		_ = logFactory.Close()
	}
}

// getEngine opens the engine over the round store, or over the rounds in
// file when it is set.
func getEngine(file, fileFormat string) (*engineHandle, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	h := &engineHandle{cfg: cfg}

	var source predict.RoundSource
	if file != "" {
		rounds, err := readRoundsFile(file, fileFormat)
		if err != nil {
			return nil, err
		}
		source = predict.NewStaticSource(rounds)
	} else {
		db, repo, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		h.db = db
		source = repo
	}

	h.engine, err = newEngine(cfg, source)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.presets, err = loadPresets(cfg)
	if err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// newContext is cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
