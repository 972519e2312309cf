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
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/hugin/internal/api"
	"github.com/starford/hugin/internal/mcpserver"
	"github.com/starford/hugin/internal/sse"
	"github.com/starford/hugin/internal/vaultservice"
)

// newLogger builds the JSON logger. With a log file configured, output
// goes through a size-rotated file instead of the given writer.
func newLogger(cfg *Config, fallback io.Writer) *slog.Logger {
	out := fallback
	if cfg.App.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// openVault creates the vault directory if needed and opens it.
func openVault(svc *vaultservice.Service, path string, logger *slog.Logger) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	stats, err := svc.Open(path)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	logger.Info("Vault opened",
		slog.String("path", path),
		slog.Int("files", stats.Files),
		slog.Int("nodes", stats.Nodes),
		slog.Int("edges", stats.Edges))
	return nil
}

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

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg, os.Stdout)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Vault session coordinator.
	svc := vaultservice.NewService(cfg.Store.Driver, cfg.Store.Path, logger, broker)
	defer func() { _ = svc.Close() }()

	// Open the configured vault; with no path the server starts empty and
	// a vault is opened through the API.
	if cfg.Vault.Path != "" {
		if err := openVault(svc, cfg.Vault.Path, logger); err != nil {
			return err
		}
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

// RunMCP starts the MCP server on stdio. Logs go to stderr (or the
// configured log file) so stdout stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg, os.Stderr)
	}
	slog.SetDefault(logger)

	if cfg.Vault.Path == "" {
		return fmt.Errorf("vault path is required in MCP mode")
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := vaultservice.NewService(cfg.Store.Driver, cfg.Store.Path, logger, broker)
	defer func() { _ = svc.Close() }()

	if err := openVault(svc, cfg.Vault.Path, logger); err != nil {
		return err
	}

	logger.Info("MCP server starting on stdio", slog.String("vault_path", cfg.Vault.Path))
	return mcpserver.New(svc).ServeStdio()
}
