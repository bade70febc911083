package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"FastDict/internal/config"
	"FastDict/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP matching service",
		Flags: []cli.Flag{
			wordsFlag,
			normalizeFlag,
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the dictionary when the word list changes",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg := configFrom(c)
	if v := c.String("words"); v != "" {
		cfg.Dictionary.Words = v
	}
	if v := c.String("normalize"); v != "" {
		cfg.Dictionary.Normalize = v
	}
	if v := c.String("port"); v != "" {
		cfg.Server.Port = v
	}
	if c.Bool("watch") {
		cfg.Dictionary.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(c.App.Writer, cfg)
	slog.SetDefault(logger)

	logger.Info("starting FastDict",
		"version", Version,
		"port", cfg.Server.Port,
		"words", cfg.Dictionary.Words,
		"normalize", cfg.Dictionary.Normalize,
	)

	mgr, err := server.NewDictionaryManager(cfg.Dictionary, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dictionary: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newMux(mgr, cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshots := mgr.Snapshots()
	snapshots.LeakThreshold = cfg.Server.LeakThreshold.Duration

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Dictionary.Watch {
		g.Go(func() error { return mgr.Watch(ctx) })
	}
	g.Go(func() error {
		return snapshots.MonitorLeaks(ctx, cfg.Server.LeakCheckInterval.Duration)
	})
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newMux registers the API routes plus the health and readiness probes.
func newMux(mgr *server.DictionaryManager, cfg config.Config, logger *slog.Logger) *http.ServeMux {
	handler := server.NewHandler(mgr, server.HandlerOptions{
		MaxBatch:     cfg.Server.MaxBatch,
		BatchWorkers: cfg.Server.BatchWorkers,
	}, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	// Health check endpoint.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})

	// Readiness probe: ready once a generation is published.
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		gen := mgr.Snapshots().CurrentGeneration()
		if gen == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "loading"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ready",
			"generation": gen,
		})
	})

	// Root info endpoint.
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name":    "FastDict",
			"version": Version,
		})
	})
	return mux
}
