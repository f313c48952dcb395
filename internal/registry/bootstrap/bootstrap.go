// Package bootstrap assembles the registry's stores and services from process
// configuration. The server and the operator CLI share it.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"tns/internal/platform/config"
	"tns/internal/platform/postgres"
	"tns/internal/platform/redis"
	"tns/internal/registry/gate"
	registrymetrics "tns/internal/registry/metrics"
	"tns/internal/registry/oracle"
	"tns/internal/registry/ports"
	"tns/internal/registry/service"
	"tns/internal/registry/store/asset"
	"tns/internal/registry/store/ledger"
	"tns/internal/registry/store/quote"
)

// Ledger is a ledger the keeper can scan and the relay can drain.
type Ledger interface {
	ports.Ledger
	ports.SymbolScanner
	ports.Outbox
}

// App holds the wired registry and the resources it owns.
type App struct {
	Config   config.Server
	Logger   *slog.Logger
	Metrics  *registrymetrics.Metrics
	Ledger   Ledger
	Assets   ports.AssetSource
	Registry *service.Service

	db    *sql.DB
	redis *redis.Client
}

// New connects the configured backends, falling back to in-memory stores for
// any that are not configured.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: registrymetrics.New(reg),
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.Ledger = ledger.NewPostgres(db, cfg.TxTimeout)
		app.Assets = asset.NewPostgres(db)
		logger.InfoContext(ctx, "using postgres ledger")
	} else {
		app.Ledger = ledger.NewInMemory()
		assets := asset.NewInMemory()
		n, err := assets.LoadFixturesFile(cfg.AssetFixturesFile)
		if err != nil {
			return nil, err
		}
		app.Assets = assets
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory ledger",
			"asset_fixtures", n)
		if n == 0 {
			logger.WarnContext(ctx, "in-memory asset mirror is empty, set ASSET_FIXTURES_FILE to make registrations possible")
		}
	}

	reserved, err := gate.LoadReservedList(cfg.ReservedTickersFile)
	if err != nil {
		app.Close()
		return nil, err
	}
	logger.InfoContext(ctx, "reserved ticker list loaded", "tickers", reserved.Len())

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(app.Metrics),
		service.WithGate(gate.New(reserved)),
	}

	if cfg.Oracle.PublicKey != nil {
		store, err := app.quoteStore(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
		adapter, err := oracle.NewAdapter(oracle.NewVerifier(cfg.Oracle.PublicKey), store,
			oracle.WithLogger(logger),
			oracle.WithMetrics(app.Metrics),
		)
		if err != nil {
			app.Close()
			return nil, err
		}
		opts = append(opts, service.WithQuotes(adapter))
	} else {
		logger.WarnContext(ctx, "ORACLE_PUBLIC_KEY not set, native payments are disabled")
	}

	app.Registry, err = service.New(app.Ledger, app.Assets, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) quoteStore(ctx context.Context) (oracle.QuoteStore, error) {
	client, err := redis.New(ctx, a.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return quote.NewInMemory(), nil
	}
	a.redis = client
	return quote.NewRedis(client.Client), nil
}

// DB is the Postgres handle, or nil when running in memory.
func (a *App) DB() *sql.DB {
	return a.db
}

// Health checks every connected backend.
func (a *App) Health(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
