package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/quizbank/internal/bank"
	"github.com/p-n-ai/quizbank/internal/catalog"
	"github.com/p-n-ai/quizbank/internal/httpapi"
	"github.com/p-n-ai/quizbank/internal/platform/cache"
	"github.com/p-n-ai/quizbank/internal/platform/config"
	"github.com/p-n-ai/quizbank/internal/platform/database"
	"github.com/p-n-ai/quizbank/internal/platform/logging"
	"github.com/p-n-ai/quizbank/internal/progress"
	"github.com/p-n-ai/quizbank/internal/session"
	"github.com/p-n-ai/quizbank/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cat, err := catalog.Load(cfg.Content.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	kv, checks, closeKV, err := openProgressKV(ctx, cfg)
	if err != nil {
		slog.Error("failed to open progress storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeKV()

	repo := bank.NewRepository(bank.Config{
		Source:  source.NewDirSource(cfg.Content.QuestionsDir),
		Catalog: cat,
		Logger:  logger,
	})
	api := httpapi.NewHandler(httpapi.Config{
		Catalog:   cat,
		Bank:      repo,
		Assembler: session.NewAssembler(repo, cfg.Replay.WrongLimit),
		Wrong:     progress.NewWrongAnswerStore(kv, logger),
		Bookmarks: progress.NewBookmarkStore(kv, logger),
		WebSocket: cfg.Server.WebSocket,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newMux(api, checks...),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"topics", len(cat.TopicIDs()),
			"storage", cfg.Storage.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// readinessCheck is probed by /readyz.
type readinessCheck struct {
	name  string
	check func(context.Context) error
}

// openProgressKV opens the configured slot backend. The returned close
// function is always safe to call.
func openProgressKV(ctx context.Context, cfg *config.Config) (progress.KV, []readinessCheck, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return progress.NewMemoryKV(), nil, noop, nil

	case config.BackendFile:
		if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
			return nil, nil, noop, fmt.Errorf("creating progress dir: %w", err)
		}
		return progress.NewFileKV(cfg.Storage.Dir), nil, noop, nil

	case config.BackendRedis:
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return nil, nil, noop, err
		}
		checks := []readinessCheck{{name: "cache", check: c.HealthCheck}}
		return c.ProgressKV(), checks, func() { c.Close() }, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		kv, err := db.ProgressKV(ctx)
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		checks := []readinessCheck{{name: "database", check: db.HealthCheck}}
		return kv, checks, db.Close, nil
	}

	return nil, nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// newMux creates the HTTP router with health check endpoints. api may be nil.
func newMux(api *httpapi.Handler, checks ...readinessCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", readyzHandler(checks))
	if api != nil {
		api.Register(mux)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func readyzHandler(checks []readinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				slog.Warn("readiness check failed", "check", c.name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"unavailable","check":%q}`, c.name)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
