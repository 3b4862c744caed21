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

	"github.com/starford/canvas/internal/api"
	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/database"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/importer"
	"github.com/starford/canvas/internal/mcpserver"
	"github.com/starford/canvas/internal/postservice"
	"github.com/starford/canvas/internal/render"
	"github.com/starford/canvas/internal/sse"
	"github.com/starford/canvas/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// errShutdown cancels the group so the sweeper stops with the server.
var errShutdown = errors.New("shutdown")

// services are the components shared by every command.
type services struct {
	db       *database.DB
	blobs    storage.Provider
	renderer *render.Renderer
	auth     *auth.Service
	posts    *postservice.Service
	editor   *editor.Editor
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// openServices opens the database and blob store and builds the services on
// top of them. notify, if non-nil, receives post change events.
func openServices(ctx context.Context, cfg *Config, logger *slog.Logger, notify func(kind, postID string)) (*services, error) {
	db, err := database.Open(ctx, cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	blobs, err := openBlobStore(ctx, &cfg.Blob)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	edOpts := []editor.Option{
		editor.WithLogger(logger),
		editor.WithIdleTTL(cfg.Editor.IdleTTL),
		editor.WithMaxAssetBytes(cfg.Editor.MaxUploadBytes),
	}
	if notify != nil {
		edOpts = append(edOpts, editor.WithNotifier(notify))
	}

	renderer := render.New(cfg.Editor.CodeStyle)
	return &services{
		db:       db,
		blobs:    blobs,
		renderer: renderer,
		auth:     auth.NewService(db, auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)),
		posts:    postservice.NewService(db, renderer, notify),
		editor:   editor.New(db, blobs, edOpts...),
	}, nil
}

func (s *services) close() {
	_ = s.db.Close()
}

func openBlobStore(ctx context.Context, cfg *BlobConfig) (storage.Provider, error) {
	if cfg.Backend == BlobBackendS3 {
		return storage.NewS3(ctx, cfg.S3.Options())
	}
	if err := os.MkdirAll(cfg.FS.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	return storage.NewFS(cfg.FS.Dir, cfg.FS.BaseURL)
}

// author resolves the account the mcp and import commands save as.
func (s *services) author(ctx context.Context, email string) (*auth.Session, error) {
	if email == "" {
		return nil, nil
	}
	return s.auth.SessionFor(ctx, email)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("blob_backend", cfg.Blob.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, err := openServices(ctx, cfg, logger, broker.PublishPostEvent)
	if err != nil {
		return err
	}
	defer svc.close()

	apiRouter := api.NewRouter(api.Deps{
		Auth:           svc.auth,
		Editor:         svc.editor,
		Posts:          svc.posts,
		Events:         broker,
		MaxUploadBytes: cfg.Editor.MaxUploadBytes,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.HideQueryToken)
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
		if err := svc.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Uploaded images for the fs backend; S3 objects are served by the bucket.
	if cfg.Blob.Backend == BlobBackendFS {
		r.Get(cfg.Blob.FS.BaseURL+"/*", api.NewAssetHandler(svc.blobs).ServeFile)
	}

	// Public post pages.
	r.Get("/p/{id}", api.NewViewerHandler(svc.posts, svc.renderer.CSS()).ServePost)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Close drafts nobody has touched for the idle TTL.
	g.Go(func() error {
		svc.editor.RunSweeper(gCtx, cfg.Editor.SweepInterval)
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

		// SSE streams only end when their subscriber channels close.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	svc, err := openServices(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.close()

	author, err := svc.author(ctx, cfg.Editor.AuthorEmail)
	if err != nil {
		return fmt.Errorf("resolve author: %w", err)
	}
	if author == nil {
		logger.Warn("editor.author_email is not set; save_post will be refused")
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc.editor, svc.posts, author).ServeStdio()
}

// RunImport imports a directory of markdown files as the configured author,
// then optionally watches it for changes.
func RunImport(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if app.importDir == "" {
		return errors.New("import directory is required")
	}
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	svc, err := openServices(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.close()

	author, err := svc.author(ctx, cfg.Editor.AuthorEmail)
	if err != nil {
		return fmt.Errorf("resolve author: %w", err)
	}
	if author == nil {
		return errors.New("editor.author_email must name a registered user to import")
	}

	files, err := storage.NewFS(app.importDir, "")
	if err != nil {
		return fmt.Errorf("open import dir: %w", err)
	}
	im := importer.New(svc.editor, svc.db, files, author, logger)

	res, err := im.Sync(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	logger.Info("Import finished",
		slog.String("dir", files.Root()),
		slog.Int("imported", res.Imported),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed))

	if !app.watch {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return im.Watch(watchCtx, nil)
}
