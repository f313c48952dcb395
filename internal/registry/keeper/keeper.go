// Package keeper runs the permissionless maintenance sweeps: closing abandoned
// records and records whose asset metadata drifted from their symbol.
package keeper

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tns/internal/registry/metadata"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
	"tns/internal/registry/service"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
	"tns/pkg/requestcontext"
)

// Registry is the subset of the registry service a keeper drives.
type Registry interface {
	Cancel(ctx context.Context, symbol string) (*service.CloseResult, error)
	VerifyOrClose(ctx context.Context, symbol string, metadataAccount domain.Address) (*service.CloseResult, error)
}

type Metrics interface {
	IncKeeperAction(action, result string)
}

// Report summarises one sweep.
type Report struct {
	Canceled int
	Drifted  int
	Failed   int
	Rewards  uint64
}

// Keeper sweeps the registry on an interval, signing as identity so that
// rewards accrue to it.
type Keeper struct {
	registry  Registry
	scanner   ports.SymbolScanner
	assets    ports.AssetSource
	identity  domain.Address
	logger    *slog.Logger
	metrics   Metrics
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

type Option func(*Keeper)

func WithLogger(logger *slog.Logger) Option {
	return func(k *Keeper) {
		k.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(k *Keeper) {
		k.metrics = m
	}
}

func WithInterval(d time.Duration) Option {
	return func(k *Keeper) {
		if d > 0 {
			k.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(k *Keeper) {
		if n > 0 {
			k.batchSize = n
		}
	}
}

// WithClock overrides the sweep clock.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) {
		k.now = now
	}
}

func New(registry Registry, scanner ports.SymbolScanner, assets ports.AssetSource, identity domain.Address, opts ...Option) (*Keeper, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if scanner == nil {
		return nil, errors.New("symbol scanner is required")
	}
	if assets == nil {
		return nil, errors.New("asset source is required")
	}
	if identity.IsZero() {
		return nil, errors.New("keeper identity is required")
	}
	k := &Keeper{
		registry:  registry,
		scanner:   scanner,
		assets:    assets,
		identity:  identity,
		logger:    slog.Default(),
		interval:  time.Hour,
		batchSize: 100,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Run sweeps until ctx is done. A failed sweep is logged and retried on the
// next tick.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		if _, err := k.Sweep(ctx); err != nil && ctx.Err() == nil {
			k.logger.ErrorContext(ctx, "keeper sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type counters struct {
	canceled, drifted, failed atomic.Int64
	rewards                   atomic.Uint64
}

// Sweep runs the abandonment and drift passes concurrently.
func (k *Keeper) Sweep(ctx context.Context) (Report, error) {
	now := k.now()
	ctx = requestcontext.WithSigner(ctx, k.identity)
	ctx = requestcontext.WithTime(ctx, now)

	var c counters
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return k.cancelAbandoned(ctx, now, &c)
	})
	g.Go(func() error {
		return k.closeDrifted(ctx, &c)
	})
	err := g.Wait()

	report := Report{
		Canceled: int(c.canceled.Load()),
		Drifted:  int(c.drifted.Load()),
		Failed:   int(c.failed.Load()),
		Rewards:  c.rewards.Load(),
	}
	k.logger.InfoContext(ctx, "keeper sweep finished",
		"canceled", report.Canceled,
		"drifted", report.Drifted,
		"failed", report.Failed,
		"rewards", report.Rewards,
	)
	return report, err
}

// cancelAbandoned pages through records past their grace period. Canceled
// records disappear from the listing, so paging stops once a full batch
// makes no progress.
func (k *Keeper) cancelAbandoned(ctx context.Context, now time.Time, c *counters) error {
	cutoff := now.Add(-models.GracePeriod)
	skip := make(map[string]struct{})
	for {
		recs, err := k.scanner.ListExpiredBefore(ctx, cutoff, k.batchSize+len(skip))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expired symbols")
		}
		progressed := false
		for _, rec := range recs {
			if _, seen := skip[rec.Symbol]; seen {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := k.registry.Cancel(ctx, rec.Symbol)
			switch {
			case err == nil:
				progressed = true
				c.canceled.Add(1)
				c.rewards.Add(res.Reward)
				k.record("cancel", "closed")
			case dErrors.HasCode(err, models.CodeNotYetCancelable), dErrors.HasCode(err, dErrors.CodeNotFound):
				skip[rec.Symbol] = struct{}{}
				k.record("cancel", "skipped")
			default:
				skip[rec.Symbol] = struct{}{}
				c.failed.Add(1)
				k.record("cancel", "failed")
				k.logger.WarnContext(ctx, "keeper failed to cancel symbol", "symbol", rec.Symbol, "error", err)
			}
		}
		if !progressed || len(recs) < k.batchSize+len(skip) {
			return nil
		}
	}
}

// closeDrifted checks every record's metadata once per sweep.
func (k *Keeper) closeDrifted(ctx context.Context, c *counters) error {
	after := ""
	for {
		recs, err := k.scanner.ListSymbols(ctx, after, k.batchSize)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list symbols")
		}
		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				return err
			}
			after = rec.Symbol
			k.verify(ctx, rec, c)
		}
		if len(recs) < k.batchSize {
			return nil
		}
	}
}

func (k *Keeper) verify(ctx context.Context, rec *models.SymbolRecord, c *counters) {
	asset, err := k.assets.Asset(ctx, rec.Mint)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			k.record("verify", "skipped")
			return
		}
		c.failed.Add(1)
		k.record("verify", "failed")
		k.logger.WarnContext(ctx, "keeper failed to read asset", "symbol", rec.Symbol, "error", err)
		return
	}

	res, err := k.registry.VerifyOrClose(ctx, rec.Symbol, metadata.MetadataAccountFor(asset))
	switch {
	case err == nil:
		c.drifted.Add(1)
		c.rewards.Add(res.Reward)
		k.record("verify", "closed")
	case dErrors.HasCode(err, models.CodeNoDriftDetected):
		k.record("verify", "ok")
	case dErrors.HasCode(err, dErrors.CodeNotFound),
		dErrors.HasCode(err, models.CodeInvalidMetadata),
		dErrors.HasCode(err, models.CodeInvalidMint):
		k.record("verify", "skipped")
	default:
		c.failed.Add(1)
		k.record("verify", "failed")
		k.logger.WarnContext(ctx, "keeper failed to verify symbol", "symbol", rec.Symbol, "error", err)
	}
}

func (k *Keeper) record(action, result string) {
	if k.metrics != nil {
		k.metrics.IncKeeperAction(action, result)
	}
}
