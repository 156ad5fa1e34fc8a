// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/algiz/internal/api"
	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/mcpserver"
	"github.com/starford/algiz/internal/scan"
	"github.com/starford/algiz/internal/summarize"
	"github.com/starford/algiz/internal/watch"
)

// setup applies options, checks the config requirement, and installs
// the JSON logger writing to logDst.
func setup(opts []Option, logDst io.Writer) (*application, *slog.Logger, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(logDst, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func openIndex(cfg *Config) (*index.DB, error) {
	db, err := index.Open(cfg.SQLite.Path, index.Config{
		SnapshotLimit: cfg.Index.SnapshotLimit,
		QueryLimit:    cfg.Index.QueryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	return db, nil
}

func newSummarizer(cfg *Config) *summarize.Client {
	return summarize.NewClient(summarize.ClientConfig{
		Host:         cfg.Summarizer.Host,
		Model:        cfg.Summarizer.Model,
		PromptBudget: cfg.Summarizer.PromptBudget,
	})
}

// Run starts the HTTP service surface with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("summarize_host", cfg.Summarizer.Host),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client := newSummarizer(cfg)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("summarize backend not reachable",
			slog.String("host", cfg.Summarizer.Host),
			slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(db, client, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunIndex executes one batch indexing run over the configured roots.
func RunIndex(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	db, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	scanner, err := scan.New(cfg.Vault.Roots, cfg.Vault.Exclude, logger)
	if err != nil {
		return fmt.Errorf("init scanner: %w", err)
	}

	client := newSummarizer(cfg)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("summarize backend not reachable",
			slog.String("host", cfg.Summarizer.Host),
			slog.String("error", err.Error()))
	}

	idx := index.NewIndexer(db, scanner, client, cfg.Vault.Source, logger)
	sum, err := idx.Run(ctx)
	if err != nil {
		logger.Error("index run failed",
			slog.Int("indexed", sum.Indexed),
			slog.Int("skipped", sum.Skipped),
			slog.String("error", err.Error()))
		return err
	}

	docs, chunks, err := db.Stats()
	if err != nil {
		return err
	}
	logger.Info("index run complete",
		slog.Int("indexed", sum.Indexed),
		slog.Int("skipped", sum.Skipped),
		slog.Int("docs", docs),
		slog.Int("chunks", chunks))
	return nil
}

// RunQuery prints public-layer matches for keyword, one block per hit:
// a "---" delimiter, the document path, then its public summary.
func RunQuery(_ context.Context, keyword string, opts ...Option) error {
	app, _, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	db, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.SearchPublic(keyword, 0)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Fprintln(app.out, "---")
		fmt.Fprintln(app.out, res.Path)
		fmt.Fprintln(app.out, res.Summary)
	}
	return nil
}

// RunWatch runs the relay poller until ctx is cancelled or an
// interrupt arrives.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	// Handle shutdown signals; the watcher prints its stop notice on
	// the way out.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(watch.Config{
		Files:     cfg.Watch.Files,
		Inbox:     cfg.Watch.Inbox,
		Interval:  cfg.Watch.Interval(),
		TailLines: cfg.Watch.TailLines,
	}, app.out, logger)
	return w.Run(ctx)
}

// RunMCP serves the public side of the index over MCP on stdio.
func RunMCP(_ context.Context, opts ...Option) error {
	// Logs go to stderr: stdout carries the MCP protocol.
	app, logger, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	db, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(db, newSummarizer(cfg))
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
