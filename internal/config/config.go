package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// CurrentVersion is the config schema version written by Save
	CurrentVersion = 1
	// EnvPrefix prefixes every environment override, e.g. LADDERSCOPE_SERVER_PORT
	EnvPrefix = "LADDERSCOPE"
	// DefaultDataDir holds config.json, presets.toml and the round database
	DefaultDataDir = ".ladderscope"
	// FileName is the config file name inside the data dir
	FileName = "config.json"
)

// Config represents the complete ladderscope configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	DataDir string `json:"dataDir" mapstructure:"dataDir"`

	Store      StoreConfig      `json:"store" mapstructure:"store"`
	Server     ServerConfig     `json:"server" mapstructure:"server"`
	Prediction PredictionConfig `json:"prediction" mapstructure:"prediction"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
	Metrics    MetricsConfig    `json:"metrics" mapstructure:"metrics"`
}

// StoreConfig contains round store configuration
type StoreConfig struct {
	// Path is the database directory; empty means the data dir, ":memory:" an in-memory store
	Path          string `json:"path" mapstructure:"path"`
	FetchLimit    int    `json:"fetchLimit" mapstructure:"fetchLimit"`
	RetentionDays int    `json:"retentionDays" mapstructure:"retentionDays"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string `json:"host" mapstructure:"host"`
	Port              int    `json:"port" mapstructure:"port"`
	ReadTimeoutSec    int    `json:"readTimeoutSec" mapstructure:"readTimeoutSec"`
	WriteTimeoutSec   int    `json:"writeTimeoutSec" mapstructure:"writeTimeoutSec"`
	RequestTimeoutSec int    `json:"requestTimeoutSec" mapstructure:"requestTimeoutSec"`
	// IngestTokenHash is the bcrypt hash guarding POST /rounds; empty disables ingest over HTTP
	IngestTokenHash string `json:"ingestTokenHash,omitempty" mapstructure:"ingestTokenHash"`
	// IngestRateLimit is POST /rounds attempts per minute per client; 0 disables limiting
	IngestRateLimit int    `json:"ingestRateLimit" mapstructure:"ingestRateLimit"`
	MaxBodyBytes    int64  `json:"maxBodyBytes" mapstructure:"maxBodyBytes"`
	CORSOrigin      string `json:"corsOrigin" mapstructure:"corsOrigin"`
	Gzip            bool   `json:"gzip" mapstructure:"gzip"`
	// MaxConcurrentScans caps in-flight /rank and /group requests; 0 disables the cap
	MaxConcurrentScans int `json:"maxConcurrentScans" mapstructure:"maxConcurrentScans"`
}

// PredictionConfig contains defaults for prediction requests
type PredictionConfig struct {
	DefaultMode   string   `json:"defaultMode" mapstructure:"defaultMode"`
	DisplayLimit  int      `json:"displayLimit" mapstructure:"displayLimit"`
	TopK          int      `json:"topK" mapstructure:"topK"`
	Sizes         []int    `json:"sizes" mapstructure:"sizes"`
	Transforms    []string `json:"transforms" mapstructure:"transforms"`
	DefaultPreset string   `json:"defaultPreset" mapstructure:"defaultPreset"`
	// PresetsFile is relative to the data dir unless absolute
	PresetsFile string `json:"presetsFile" mapstructure:"presetsFile"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// MetricsConfig contains metrics configuration
type MetricsConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		DataDir: DefaultDataDir,
		Store: StoreConfig{
			Path:          "",
			FetchLimit:    3000,
			RetentionDays: 0,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5000,
			ReadTimeoutSec:    15,
			WriteTimeoutSec:   15,
			RequestTimeoutSec: 10,
			IngestRateLimit:   30,
			MaxBodyBytes:      8 << 20,
			CORSOrigin:        "*",
			Gzip:              true,

			MaxConcurrentScans: 8,
		},
		Prediction: PredictionConfig{
			DefaultMode:   "3block_orig",
			DisplayLimit:  50,
			TopK:          3,
			Sizes:         []int{3, 4, 5, 6},
			Transforms:    []string{"orig", "flip_full", "flip_start", "flip_odd_even"},
			DefaultPreset: "ladder4",
			PresetsFile:   "presets.toml",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("dataDir", d.DataDir)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.fetchLimit", d.Store.FetchLimit)
	v.SetDefault("store.retentionDays", d.Store.RetentionDays)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.readTimeoutSec", d.Server.ReadTimeoutSec)
	v.SetDefault("server.writeTimeoutSec", d.Server.WriteTimeoutSec)
	v.SetDefault("server.requestTimeoutSec", d.Server.RequestTimeoutSec)
	v.SetDefault("server.ingestTokenHash", d.Server.IngestTokenHash)
	v.SetDefault("server.ingestRateLimit", d.Server.IngestRateLimit)
	v.SetDefault("server.maxBodyBytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.corsOrigin", d.Server.CORSOrigin)
	v.SetDefault("server.gzip", d.Server.Gzip)
	v.SetDefault("server.maxConcurrentScans", d.Server.MaxConcurrentScans)

	v.SetDefault("prediction.defaultMode", d.Prediction.DefaultMode)
	v.SetDefault("prediction.displayLimit", d.Prediction.DisplayLimit)
	v.SetDefault("prediction.topK", d.Prediction.TopK)
	v.SetDefault("prediction.sizes", d.Prediction.Sizes)
	v.SetDefault("prediction.transforms", d.Prediction.Transforms)
	v.SetDefault("prediction.defaultPreset", d.Prediction.DefaultPreset)
	v.SetDefault("prediction.presetsFile", d.Prediction.PresetsFile)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.endpoint", d.Metrics.Endpoint)
}

// LoadConfig loads configuration from <dataDir>/config.json, then applies
// LADDERSCOPE_* environment overrides. A missing file yields the defaults
// (still subject to environment overrides). PORT is honoured for the
// server port, like most PaaS runtimes expect.
func LoadConfig(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetDefault("dataDir", dataDir)

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("json")
	v.AddConfigPath(dataDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <dataDir>/config.json
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dataDir, FileName), data, 0644)
}

// PresetsPath resolves the presets file against the data dir
func (c *Config) PresetsPath() string {
	if c.Prediction.PresetsFile == "" || filepath.IsAbs(c.Prediction.PresetsFile) {
		return c.Prediction.PresetsFile
	}
	return filepath.Join(c.DataDir, c.Prediction.PresetsFile)
}

// StoreDir resolves the database directory
func (c *Config) StoreDir() string {
	if c.Store.Path == "" {
		return c.DataDir
	}
	return c.Store.Path
}

// Addr returns host:port for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.Store.FetchLimit <= 0 {
		return &ConfigError{Field: "store.fetchLimit", Message: "must be positive"}
	}
	if c.Store.RetentionDays < 0 {
		return &ConfigError{Field: "store.retentionDays", Message: "must not be negative"}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be in [0, 65535]"}
	}
	if c.Server.IngestRateLimit < 0 {
		return &ConfigError{Field: "server.ingestRateLimit", Message: "must not be negative"}
	}
	if c.Server.MaxConcurrentScans < 0 {
		return &ConfigError{Field: "server.maxConcurrentScans", Message: "must not be negative"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "server.maxBodyBytes", Message: "must be positive"}
	}
	if c.Prediction.TopK <= 0 {
		return &ConfigError{Field: "prediction.topK", Message: "must be positive"}
	}
	if c.Prediction.DisplayLimit < 0 {
		return &ConfigError{Field: "prediction.displayLimit", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'human' or 'json'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
