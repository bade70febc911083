package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"FastDict/internal/analysis"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Environment variables overriding file values.
const (
	EnvPort      = "FASTDICT_PORT"
	EnvWords     = "FASTDICT_WORDS"
	EnvNormalize = "FASTDICT_NORMALIZE"
	EnvLogLevel  = "FASTDICT_LOG_LEVEL"
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the top-level configuration file.
type Config struct {
	Dictionary Dictionary `toml:"dictionary"`
	Server     Server     `toml:"server"`
	Log        Log        `toml:"log"`
}

// Dictionary configures the word list.
type Dictionary struct {
	// Words is a word-list path or doublestar glob.
	Words string `toml:"words"`

	// Normalize names the case normalizer: "none", "lower" or "upper".
	Normalize string `toml:"normalize"`

	// Watch reloads the dictionary when the word list changes.
	Watch bool `toml:"watch"`

	// WatchDebounce is the quiet period after a change before reloading.
	WatchDebounce Duration `toml:"watch_debounce"`
}

// Server configures the HTTP service.
type Server struct {
	Port         string   `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout"`

	// MaxBatch is the largest number of texts accepted by one batch request.
	MaxBatch int `toml:"max_batch"`

	// BatchWorkers bounds concurrent scans within one batch request.
	BatchWorkers int `toml:"batch_workers"`

	// LeakThreshold is how long a request may hold a dictionary generation
	// before it is reported. Zero disables reporting.
	LeakThreshold Duration `toml:"leak_threshold"`

	// LeakCheckInterval is how often held generations are checked.
	LeakCheckInterval Duration `toml:"leak_check_interval"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dictionary: Dictionary{
			Normalize:     "none",
			WatchDebounce: Duration{250 * time.Millisecond},
		},
		Server: Server{
			Port:         "8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			IdleTimeout:  Duration{120 * time.Second},
			MaxBatch:     1000,
			BatchWorkers: 8,

			LeakThreshold:     Duration{5 * time.Minute},
			LeakCheckInterval: Duration{time.Minute},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides fields from FASTDICT_* environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnv(EnvPort, c.Server.Port)
	c.Dictionary.Words = getEnv(EnvWords, c.Dictionary.Words)
	c.Dictionary.Normalize = getEnv(EnvNormalize, c.Dictionary.Normalize)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := analysis.Lookup(c.Dictionary.Normalize); err != nil {
		return fmt.Errorf("%w: dictionary.normalize: %v", ErrInvalidConfig, err)
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("%w: server.port %q", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("%w: server.max_batch must be positive", ErrInvalidConfig)
	}
	if c.Server.BatchWorkers <= 0 {
		return fmt.Errorf("%w: server.batch_workers must be positive", ErrInvalidConfig)
	}
	if c.Server.LeakThreshold.Duration < 0 {
		return fmt.Errorf("%w: server.leak_threshold is negative", ErrInvalidConfig)
	}
	if c.Server.LeakThreshold.Duration > 0 && c.Server.LeakCheckInterval.Duration <= 0 {
		return fmt.Errorf("%w: server.leak_check_interval must be positive", ErrInvalidConfig)
	}
	if c.Dictionary.WatchDebounce.Duration < 0 {
		return fmt.Errorf("%w: dictionary.watch_debounce is negative", ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// SlogLevel maps Log.Level onto a slog level.
func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
