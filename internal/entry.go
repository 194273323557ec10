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

	"github.com/formvault/formvault/internal/advisory"
	"github.com/formvault/formvault/internal/aiclient"
	"github.com/formvault/formvault/internal/api"
	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/formservice"
	"github.com/formvault/formvault/internal/mcpserver"
	"github.com/formvault/formvault/internal/sse"
	"github.com/formvault/formvault/internal/storage"
	"github.com/formvault/formvault/internal/vault"
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
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("uploads_path", cfg.Uploads.Path),
		slog.Bool("ai_enabled", cfg.AI.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure uploads directory exists.
	if err := os.MkdirAll(cfg.Uploads.Path, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	// Initialize the document store.
	docs, err := storage.NewFS(cfg.Uploads.Path)
	if err != nil {
		return fmt.Errorf("init uploads storage: %w", err)
	}

	// Initialize the SQLite vault.
	db, err := vault.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// AI gateway client; nil when no key is configured.
	var ai *aiclient.Client
	if cfg.AI.Enabled() {
		ai = aiclient.New(aiclient.Config{
			BaseURL:        cfg.AI.BaseURL,
			APIKey:         cfg.AI.APIKey,
			ChatModel:      cfg.AI.ChatModel,
			ExtractModel:   cfg.AI.ExtractModel,
			TranslateModel: cfg.AI.TranslateModel,
			Timeout:        cfg.AI.Timeout(),
		})
	} else {
		logger.Warn("AI gateway disabled, extraction/chat/advisory unavailable")
	}

	// Advisory dispatcher; a nil advisor skips the advisory phase.
	advCfg := advisory.Config{
		Events:       broker,
		Logger:       logger,
		Timeout:      cfg.Advisory.Timeout(),
		MaxLines:     cfg.Advisory.MaxLines,
		DedupePrefix: cfg.Advisory.DedupePrefix,
	}
	if ai != nil {
		advCfg.Advisor = ai
	}
	dispatcher := advisory.NewDispatcher(advCfg)

	// Template registry and form service.
	registry := forms.NewRegistry()
	svc := formservice.NewService(db, registry, dispatcher)

	var assistant api.Assistant
	if ai != nil {
		assistant = ai
	}
	apiRouter := api.NewRouter(svc, registry, db, docs, assistant, broker,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Watch the uploads directory for documents dropped in out-of-band.
	g.Go(func() error {
		if err := storage.Watch(gCtx, cfg.Uploads.Path, logger, func(kind, filename string) {
			if kind == "added" {
				broker.PublishDocumentEvent(filename)
			}
		}); err != nil {
			logger.Warn("uploads watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

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

// RunMCP starts the stdio MCP server over the same vault and templates.
func RunMCP(opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Logs go to stderr: stdout is the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := vault.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	defer db.Close()

	registry := forms.NewRegistry()
	svc := formservice.NewService(db, registry, advisory.NewDispatcher(advisory.Config{Logger: logger}))

	logger.Info("MCP server starting on stdio", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(db, registry, svc).ServeStdio()
}
