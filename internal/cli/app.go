// Package cli assembles the workspace, its stores and the catalog from
// configuration, and hosts the helpers shared by the ussdflow commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/ussdflow/internal/config"
	"github.com/aretw0/ussdflow/pkg/adapters/file"
	catalogHTTP "github.com/aretw0/ussdflow/pkg/adapters/http"
	loamAdapter "github.com/aretw0/ussdflow/pkg/adapters/loam"
	"github.com/aretw0/ussdflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/ussdflow/pkg/adapters/redis"
	"github.com/aretw0/ussdflow/pkg/graph"
	"github.com/aretw0/ussdflow/pkg/observability"
	"github.com/aretw0/ussdflow/pkg/ports"
	"github.com/aretw0/ussdflow/pkg/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

// App is a fully wired ussdflow process.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	Store     ports.SnapshotStore
	Catalog   ports.Catalog
	Manager   *workspace.Manager
	Workspace *workspace.Workspace

	// source is the catalog before instrumentation, kept for optional
	// capabilities such as Watch.
	source  ports.Catalog
	closers []func() error
}

// NewApp builds every component selected by cfg. The workspace is not
// hydrated yet.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(app.Registry)

	var client *backend.Client
	if cfg.UsesRedis() {
		client = redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		app.closers = append(app.closers, client.Close)

		if cfg.Snapshot.Backend == config.BackendRedis {
			app.Store = redisAdapter.NewFromClient(client,
				redisAdapter.WithPrefix(cfg.Redis.Prefix+"workspace:"),
				redisAdapter.WithTTL(cfg.SnapshotTTL()),
			)
		}
		if cfg.Catalog.Backend == config.BackendRedis {
			app.source = redisAdapter.NewCatalog(client, redisAdapter.WithPrefix(cfg.Redis.Prefix+"flow:"))
		}
	}

	var err error
	if app.Store == nil {
		app.Store, err = newSnapshotStore(cfg)
		if err != nil {
			return nil, app.abort(err)
		}
	}
	if app.source == nil {
		app.source, err = newCatalog(cfg)
		if err != nil {
			return nil, app.abort(err)
		}
	}
	app.Catalog = app.Metrics.InstrumentCatalog(app.source)

	managerOpts := []workspace.ManagerOption{workspace.WithManagerLogger(logger)}
	if ttl := cfg.LockTTL(); ttl > 0 {
		managerOpts = append(managerOpts, workspace.WithLockTTL(ttl))
	}
	if client != nil && cfg.Snapshot.Backend == config.BackendRedis {
		managerOpts = append(managerOpts, workspace.WithLocker(
			redisAdapter.NewLocker(client, cfg.Redis.Prefix+"lock:"),
		))
	} else {
		managerOpts = append(managerOpts, workspace.WithLocker(memory.NewLocker()))
	}
	app.Manager = workspace.NewManager(app.Store, managerOpts...)

	store := graph.New(
		graph.WithLogger(logger),
		graph.WithHooks(chainHooks(app.Metrics.Hooks(), debugHooks(logger))),
	)
	app.Workspace = workspace.New(cfg.Workspace, app.Manager, app.Catalog,
		workspace.WithGraph(store),
		workspace.WithLogger(logger),
	)
	return app, nil
}

func newSnapshotStore(cfg *config.Config) (ports.SnapshotStore, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendFile:
		return file.New(cfg.Snapshot.Dir), nil
	}
	return nil, fmt.Errorf("%w: snapshot backend %q", config.ErrInvalidConfig, cfg.Snapshot.Backend)
}

func newCatalog(cfg *config.Config) (ports.Catalog, error) {
	switch cfg.Catalog.Backend {
	case config.BackendMemory:
		return memory.NewCatalog()
	case config.BackendLoam:
		c, err := loamAdapter.Open(cfg.Catalog.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog at %s: %w", cfg.Catalog.Dir, err)
		}
		return c, nil
	case config.BackendHTTP:
		return catalogHTTP.NewClient(cfg.Catalog.URL, catalogHTTP.WithTimeout(cfg.CatalogTimeout())), nil
	}
	return nil, fmt.Errorf("%w: catalog backend %q", config.ErrInvalidConfig, cfg.Catalog.Backend)
}

// Source returns the catalog without instrumentation.
func (a *App) Source() ports.Catalog { return a.source }

// Hydrate restores the workspace snapshot.
func (a *App) Hydrate(ctx context.Context) error {
	if err := a.Workspace.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate workspace %q: %w", a.Config.Workspace, err)
	}
	return nil
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) abort(err error) error {
	return errors.Join(err, a.Close())
}
