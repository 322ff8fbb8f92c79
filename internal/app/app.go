package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/coursekeeper-backend/internal/data/db"
	"github.com/yungbote/coursekeeper-backend/internal/data/repos"
	"github.com/yungbote/coursekeeper-backend/internal/http"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	Store    *db.Store
	Cfg      Config
	Repos    repos.Set
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *http.Server

	shutdownOtel func(context.Context) error
}

// New loads configuration and opens every dependency. The caller owns the App and must
// Close it.
func New(ctx context.Context) (*App, error) {
	if err := envutil.LoadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init(log)

	store, err := db.Open(log, cfg.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = store
	if cfg.AutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	a.Repos = wireRepos(store.DB(), log)

	clients, err := wireClients(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	a.Services = wireServices(store.DB(), log, cfg, a.Repos, clients, a.Metrics)
	a.Server = wireServer(log, cfg, wireHandlers(log, a.Services, a.Metrics), a.Metrics)
	return a, nil
}

// Run serves HTTP until ctx is done or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.Cfg.Port
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Store close failed", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.shutdownOtel(ctx); err != nil && !errors.Is(err, context.Canceled) && a.Log != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
