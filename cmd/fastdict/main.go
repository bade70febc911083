package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"FastDict/internal/analysis"
	"FastDict/internal/config"
	"FastDict/internal/dictionary"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fastdict: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "fastdict",
		Usage:   "Find which dictionary words occur in a text",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file path",
				EnvVars: []string{"FASTDICT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error (overrides config)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			c.App.Metadata = map[string]interface{}{configKey: cfg}
			return nil
		},
		Commands: []*cli.Command{
			matchCommand(),
			serveCommand(),
			dumpCommand(),
			benchCommand(),
		},
	}
}

// loadConfig loads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func configFrom(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
}

// Flags shared by the commands that load a word list directly.
var (
	wordsFlag = &cli.StringFlag{
		Name:    "words",
		Aliases: []string{"w"},
		Usage:   "Word-list file or glob (overrides config)",
	}
	normalizeFlag = &cli.StringFlag{
		Name:    "normalize",
		Aliases: []string{"n"},
		Usage:   "Case normalization: none, lower or upper (overrides config)",
	}
)

// loadDictionary builds a dictionary from the --words and --normalize flags,
// falling back to the config file.
func loadDictionary(c *cli.Context, logger *slog.Logger) (*dictionary.Dictionary, error) {
	cfg := configFrom(c)
	words := cfg.Dictionary.Words
	if v := c.String("words"); v != "" {
		words = v
	}
	if words == "" {
		return nil, fmt.Errorf("no word list: pass --words or set dictionary.words")
	}
	norm := cfg.Dictionary.Normalize
	if v := c.String("normalize"); v != "" {
		norm = v
	}
	normalizer, err := analysis.Lookup(norm)
	if err != nil {
		return nil, err
	}

	dict := dictionary.New(
		dictionary.WithNormalizer(normalizer),
		dictionary.WithLogger(logger),
	)
	if err := dict.LoadGlob(words); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", words, err)
	}
	return dict, nil
}
