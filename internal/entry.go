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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vitrine/internal/auth"
	"github.com/starford/vitrine/internal/contentservice"
	"github.com/starford/vitrine/internal/media"
	"github.com/starford/vitrine/internal/sse"
	"github.com/starford/vitrine/internal/storage"
	"github.com/starford/vitrine/internal/watch"
	"github.com/starford/vitrine/internal/web"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("upload_dir", cfg.Media.UploadDir),
		slog.String("thumb_dir", cfg.Media.ThumbDir),
		slog.Bool("cookie_secure", cfg.Auth.CookieSecure),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if app.secretGenerated {
		logger.Warn("SECRET_KEY is not set; using a random session secret, sessions end on restart")
	}

	store, lib, err := prepare(ctx, cfg)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(0)
	defer broker.Close()

	svc := contentservice.NewService(store, lib, broker)
	gate := auth.NewGate(cfg.Auth.Password, auth.NewCookieStore([]byte(cfg.Auth.SessionSecret), cfg.Auth.CookieSecure))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(store, web.NewRouter(svc, gate, lib, broker)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start content watcher with SSE callback.
	g.Go(func() error {
		err := watch.Content(gCtx, store, watch.DefaultDebounce, logger, func(kind string, data map[string]string) {
			broker.PublishContentEvent(kind, data)
		})
		if err != nil {
			logger.Warn("content watcher unavailable", slog.String("error", err.Error()))
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Init creates the media directories and the content document, then returns.
func Init(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config)

	store, lib, err := prepare(ctx, app.config)
	if err != nil {
		return err
	}
	logger.Info("Site initialized",
		slog.String("content_path", store.Path()),
		slog.String("upload_dir", lib.UploadDir()),
		slog.String("thumb_dir", lib.ThumbDir()))
	return nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger as the default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// prepare opens the content store and media library, materializing the
// default document and both directories when missing.
func prepare(ctx context.Context, cfg *Config) (*storage.FS, *media.Library, error) {
	lib := media.NewLibrary(cfg.Media.UploadDir, cfg.Media.ThumbDir)
	if err := lib.EnsureDirs(); err != nil {
		return nil, nil, fmt.Errorf("init media: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	if _, err := store.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("load content: %w", err)
	}
	return store, lib, nil
}

// newRootRouter wraps the site routes with middleware, health checks and metrics.
func newRootRouter(store storage.Provider, site http.Handler) chi.Router {
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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Load(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/", site)
	return r
}
