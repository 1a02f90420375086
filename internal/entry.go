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

	"github.com/starford/vaultclip/internal/api"
	"github.com/starford/vaultclip/internal/clipper"
	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/fetch"
	"github.com/starford/vaultclip/internal/markdown"
	"github.com/starford/vaultclip/internal/mcpserver"
	"github.com/starford/vaultclip/internal/sse"
	"github.com/starford/vaultclip/internal/storage"
	"github.com/starford/vaultclip/internal/templatestore"
	"github.com/starford/vaultclip/internal/vault"
)

// ClipOptions are the inputs of a one-shot clip.
type ClipOptions struct {
	URL        string
	HTMLFile   string
	TemplateID string
	DryRun     bool
}

// runtime holds the components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	db     *templatestore.DB
	clips  *clipservice.Service
}

func (rt *runtime) Close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close template store", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup builds the logger, template store and clip service. Logs go to logOut
// so stdio commands keep stdout free for their own output.
func (a *application) setup(logOut io.Writer, clipOpts ...clipservice.Option) (*runtime, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("templates_dir", cfg.Templates.Dir),
		slog.String("sqlite_path", cfg.Templates.SQLitePath),
		slog.String("converter", cfg.Extract.Converter),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := templatestore.Open(cfg.Templates.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("init template store: %w", err)
	}

	if cfg.Templates.Dir != "" {
		if err := templatestore.SyncDir(db, cfg.Templates.Dir, logger); err != nil {
			logger.Warn("initial template sync failed", slog.String("error", err.Error()))
		}
	}

	converter, err := markdown.ForName(cfg.Extract.Converter)
	if err != nil {
		db.Close()
		return nil, err
	}
	engine := clipper.New(
		clipper.WithConverter(converter),
		clipper.WithReadability(cfg.Extract.Readability),
	)

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithMaxBytes(cfg.Fetch.MaxBodyBytes),
	)

	writerOpts := []vault.Option{}
	if cfg.Vault.DailyFolder != "" {
		writerOpts = append(writerOpts, vault.WithDailyFolder(cfg.Vault.DailyFolder))
	}

	opts := append([]clipservice.Option{
		clipservice.WithFetcher(fetcher),
		clipservice.WithVaultName(cfg.Vault.Name),
		clipservice.WithLogger(logger),
	}, clipOpts...)
	clips := clipservice.NewService(engine, db, vault.NewWriter(store, writerOpts...), opts...)

	return &runtime{cfg: cfg, logger: logger, db: db, clips: clips}, nil
}

// Run starts the HTTP server and template watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	broker := sse.NewBroker(cfg.SSE.Throttle)
	defer broker.Close()

	rt, err := app.setup(os.Stdout, clipservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	apiRouter := api.NewRouter(rt.clips, rt.db, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORSMiddleware(cfg.App.HTTP.CORSOrigins))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := rt.db.Ping(); err != nil {
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:         cfg.App.HTTP.Address(),
		Handler:      r,
		ReadTimeout:  cfg.App.HTTP.ReadTimeout,
		WriteTimeout: cfg.App.HTTP.WriteTimeout,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Templates.Watch {
		g.Go(func() error {
			err := templatestore.Watch(gCtx, rt.db, cfg.Templates.Dir, logger, func(_, path string) {
				broker.PublishTemplateEvent(sse.KindSynced, path)
			})
			if err != nil {
				logger.Error("template watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblocks the watcher when shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.clips, rt.db).ServeStdio()
}

// RunClip performs one clip and prints the written path, or the note itself
// on a dry run.
func RunClip(ctx context.Context, in ClipOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	input := clipservice.Input{URL: in.URL, TemplateID: in.TemplateID, DryRun: in.DryRun}
	if in.HTMLFile != "" {
		data, err := os.ReadFile(in.HTMLFile)
		if err != nil {
			return fmt.Errorf("read html: %w", err)
		}
		input.HTML = string(data)
	}

	res, err := rt.clips.Clip(ctx, input)
	if err != nil {
		return err
	}
	if len(res.Prompts) > 0 {
		rt.logger.Warn("template prompts left unanswered", slog.Int("count", len(res.Prompts)))
	}
	if res.Written {
		_, err = fmt.Fprintln(app.out, res.Path)
		return err
	}
	_, err = io.WriteString(app.out, res.Content)
	return err
}

// RunImport imports template interchange files into the store and reports
// one line per template. It fails if any template was rejected.
func RunImport(ctx context.Context, files []string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	var failed int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		results, err := templatestore.Import(rt.db, data)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(app.out, "%s: %s: %v\n", file, r.Name, r.Err)
				continue
			}
			fmt.Fprintf(app.out, "%s: imported %s (%s)\n", file, r.Name, r.ID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d template(s) failed to import", failed)
	}
	return nil
}
