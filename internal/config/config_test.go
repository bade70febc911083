package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fastdict.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "none", cfg.Dictionary.Normalize)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Duration)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[dictionary]
words = "lists/**/*.txt"
normalize = "lower"
watch = true
watch_debounce = "1s"

[server]
port = "9090"
read_timeout = "5s"
max_batch = 10

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lists/**/*.txt", cfg.Dictionary.Words)
	assert.Equal(t, "lower", cfg.Dictionary.Normalize)
	assert.True(t, cfg.Dictionary.Watch)
	assert.Equal(t, time.Second, cfg.Dictionary.WatchDebounce.Duration)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 10, cfg.Server.MaxBatch)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, 8, cfg.Server.BatchWorkers)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \"9090\"\n")
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvWords, "/srv/words.txt")
	t.Setenv(EnvNormalize, "upper")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "/srv/words.txt", cfg.Dictionary.Words)
	assert.Equal(t, "upper", cfg.Dictionary.Normalize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[server]\nportt = \"1\"\n"},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n"},
		{"bad normalizer", "[dictionary]\nnormalize = \"title\"\n"},
		{"bad port", "[server]\nport = \"http\"\n"},
		{"port out of range", "[server]\nport = \"70000\"\n"},
		{"zero batch", "[server]\nmax_batch = 0\n"},
		{"zero workers", "[server]\nbatch_workers = 0\n"},
		{"negative leak threshold", "[server]\nleak_threshold = \"-1s\"\n"},
		{"zero leak interval", "[server]\nleak_check_interval = \"0s\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"not toml", "this is = = not toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dictionary.Words = "words.txt"
	cfg.Dictionary.Normalize = "lower"

	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "read_timeout")
	assert.Contains(t, string(data), "30s")

	var back Config
	require.NoError(t, Parse(data, &back))
	assert.Equal(t, cfg, back)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Log{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Log{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Log{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Log{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Log{}.SlogLevel())
}
