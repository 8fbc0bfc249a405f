// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/halver/careband/internal/api"
	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/mcpserver"
	"github.com/halver/careband/internal/sse"
	"github.com/halver/careband/internal/storage"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.Bool("demo", cfg.Demo),
		slog.String("log_level", cfg.App.LogLevel.String()))

	adapter, fileKV, err := openAdapter(cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	// SSE broker; store changes fan out to subscribed UI clients.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build the health store and load its initial state.
	store := health.NewStore(adapter, broker.PublishChange)
	if cfg.Demo {
		store.LoadDemo()
		logger.Info("Demo dataset loaded; all writes suppressed")
	} else if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	apiRouter := api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Watch the data directory for external edits (file driver only).
	if fileKV != nil && !cfg.Demo {
		g.Go(func() error {
			return storage.Watch(gCtx, fileKV.Root(), logger, store.Reload)
		})
	}

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

// RunMCP serves the MCP tools over stdio. Logs go to stderr so stdout
// stays clean for the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	adapter, _, err := openAdapter(cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	store := health.NewStore(adapter, nil)
	if cfg.Demo {
		store.LoadDemo()
	} else if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(store).ServeStdio()
}

// openAdapter builds the configured persistence adapter. The returned
// *storage.FileKV is non-nil only for the file driver, where the caller
// may attach the data-directory watcher.
func openAdapter(cfg *Config, logger *slog.Logger) (storage.Adapter, *storage.FileKV, error) {
	switch cfg.Storage.Driver {
	case StorageDriverFile:
		kv, err := storage.NewFileKV(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage: %w", err)
		}
		return storage.NewKV(kv, logger), kv, nil
	default:
		adapter, err := storage.OpenSQLiteAdapter(cfg.Storage.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage: %w", err)
		}
		return adapter, nil, nil
	}
}
