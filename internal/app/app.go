package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	apphttp "github.com/yungbote/deckforge-backend/internal/http"
	"github.com/yungbote/deckforge-backend/internal/observability"
	"github.com/yungbote/deckforge-backend/internal/platform/gcp"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

const Version = "1.0.0"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Store    tasks.Store
	Bucket   gcp.DeckBucket
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(logger.Options{
		Mode:       cfg.Log.Mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New wires the HTTP server and everything behind it.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	for _, dir := range []string{"uploads", "outputs"} {
		if err := os.MkdirAll(filepath.Join(cfg.Storage.ScratchDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Tracing, Version)

	store, err := openTaskStore(ctx, log, cfg.Tasks)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	bucket, err := resolveDeckBucket(ctx, log, cfg.Storage)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svcs, err := wireServices(log, cfg, store, bucket)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	handlers := wireHandlers(log, cfg, svcs, store, bucket)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store,
		Bucket:       bucket,
		Services:     svcs,
		Server:       wireServer(log, cfg, handlers),
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is canceled, then drains the server and the runner.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Server.Run)
	g.Go(func() error { return purgeLoop(gctx, a.Log, a.Store, taskPurgeInterval) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.Log.Info("Shutting down")
		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := a.Services.Runner.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("runner shutdown: %w", err))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Bucket != nil {
		_ = a.Bucket.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
