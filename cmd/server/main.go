package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "tns/internal/jwt_token"
	"tns/internal/platform/config"
	"tns/internal/platform/httpserver"
	"tns/internal/platform/kafka"
	"tns/internal/platform/logger"
	"tns/internal/platform/metrics"
	"tns/internal/platform/middleware"
	"tns/internal/platform/postgres"
	"tns/internal/registry/bootstrap"
	"tns/internal/registry/handler"
	"tns/internal/registry/keeper"
	"tns/internal/registry/outbox"
	"tns/pkg/platform/httputil"
)

// main wires the registry, its HTTP surface and the background workers, and
// keeps the process lifecycle small. Business logic lives in internal/registry.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := bootstrap.New(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer app.Close()

	if db := app.DB(); db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recover(log))
	router.Use(middleware.Logger(log, metrics.New(reg)))

	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	handler.New(app.Registry, jwttoken.NewJWTService(cfg.JWTAudience), log).Register(router)

	srv := httpserver.New(cfg.Addr, router)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.InfoContext(ctx, "starting tns registry", "addr", cfg.Addr)
		return httpserver.Run(ctx, srv, nil)
	})

	if !cfg.KeeperAddress.IsZero() {
		k, err := keeper.New(app.Registry, app.Ledger, app.Assets, cfg.KeeperAddress,
			keeper.WithLogger(log),
			keeper.WithMetrics(app.Metrics),
			keeper.WithInterval(cfg.KeeperInterval),
		)
		if err != nil {
			return err
		}
		g.Go(func() error { return k.Run(ctx) })
	} else {
		log.InfoContext(ctx, "KEEPER_ADDRESS not set, keeper disabled")
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.WarnContext(ctx, "could not ensure events topic", "error", err)
		}
		relay, err := outbox.New(app.Ledger, producer,
			outbox.WithLogger(log),
			outbox.WithMetrics(app.Metrics),
		)
		if err != nil {
			return err
		}
		g.Go(func() error { return relay.Run(ctx) })
	} else {
		log.InfoContext(ctx, "KAFKA_BROKERS not set, event relay disabled")
	}

	return g.Wait()
}
