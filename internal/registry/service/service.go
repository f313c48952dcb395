// Package service orchestrates the symbol registry: every mutation runs the
// access gate, pricing, metadata checks and the state transition inside one
// ledger transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tns/internal/registry/gate"
	"tns/internal/registry/metadata"
	registrymetrics "tns/internal/registry/metrics"
	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/internal/registry/ports"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
	"tns/pkg/requestcontext"
)

// QuoteScope posts a signed price quote for the duration of fn.
type QuoteScope interface {
	WithQuote(ctx context.Context, signed string, fn func(q *oracle.Quote) error) error
}

// Service is the symbol registry.
type Service struct {
	ledger   ports.Ledger
	assets   ports.AssetSource
	enforcer *metadata.Enforcer
	gate     *gate.Gate
	quotes   QuoteScope
	logger   *slog.Logger
	metrics  *registrymetrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithQuotes enables oracle-priced payment methods.
func WithQuotes(q QuoteScope) Option {
	return func(s *Service) {
		s.quotes = q
	}
}

func WithGate(g *gate.Gate) Option {
	return func(s *Service) {
		s.gate = g
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(ledger ports.Ledger, assets ports.AssetSource, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if assets == nil {
		return nil, errors.New("asset source is required")
	}
	s := &Service{
		ledger:   ledger,
		assets:   assets,
		enforcer: metadata.New(assets),
		logger:   slog.Default(),
		tracer:   otel.Tracer("tns/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gate == nil {
		s.gate = gate.New(nil)
	}
	return s, nil
}

// Payment carries the caller's settlement choices for a fee-bearing call.
type Payment struct {
	Method         models.PaymentMethod
	MaxCost        uint64
	PlatformFeeBps uint16
	Platform       *domain.Address
	PriceQuote     string
}

func (p Payment) validate() error {
	if p.PlatformFeeBps > models.MaxPlatformFeeBps {
		return dErrors.New(models.CodePlatformFeeExceedsMax,
			fmt.Sprintf("platform fee %d bps exceeds %d", p.PlatformFeeBps, models.MaxPlatformFeeBps))
	}
	if p.PlatformFeeBps > 0 && (p.Platform == nil || p.Platform.IsZero()) {
		return dErrors.New(models.CodeInvalidOwner, "platform fee requires a platform account")
	}
	return nil
}

// observe opens a span for op and returns a finisher that records the
// outcome on the span and in metrics.
func (s *Service) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		code := "ok"
		if err != nil {
			if c, ok := dErrors.CodeOf(err); ok {
				code = string(c)
			} else {
				code = string(dErrors.CodeInternal)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
		}
		span.End()
		s.metrics.ObserveOperation(op, code, time.Since(start))
	}
}

// caller returns the verified signer or fails Unauthorized.
func caller(ctx context.Context) (domain.Address, error) {
	signer := requestcontext.Signer(ctx)
	if signer.IsZero() {
		return domain.Address{}, models.ErrUnauthorized("request is not signed")
	}
	return signer, nil
}

func loadConfig(ctx context.Context, store ports.LedgerStore) (*models.Config, error) {
	cfg, err := store.Config(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registry is not initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load config")
	}
	return cfg, nil
}

func loadSymbol(ctx context.Context, store ports.LedgerStore, symbol string) (*models.SymbolRecord, error) {
	rec, err := store.FindSymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("symbol %q is not registered", symbol))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load symbol")
	}
	return rec, nil
}

func createSymbol(ctx context.Context, store ports.LedgerStore, rec *models.SymbolRecord) error {
	if err := store.CreateSymbol(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(models.CodeAlreadyInUse, fmt.Sprintf("symbol %q is already registered", rec.Symbol))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create symbol")
	}
	return nil
}

func saveSymbol(ctx context.Context, store ports.LedgerStore, rec *models.SymbolRecord) error {
	if err := store.SaveSymbol(ctx, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save symbol")
	}
	return nil
}

func deleteSymbol(ctx context.Context, store ports.LedgerStore, symbol string) error {
	if err := store.DeleteSymbol(ctx, symbol); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close symbol")
	}
	return nil
}

func debit(ctx context.Context, store ports.LedgerStore, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	if err := store.Debit(ctx, account, currency, amount); err != nil {
		if errors.Is(err, sentinel.ErrInsufficient) {
			return dErrors.New(models.CodeInsufficientFunds,
				fmt.Sprintf("%s balance of %s is below %d", currency, account, amount))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit balance")
	}
	return nil
}

func credit(ctx context.Context, store ports.LedgerStore, account domain.Address, currency models.PaymentMethod, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := store.Credit(ctx, account, currency, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit balance")
	}
	return nil
}

// settle moves a priced fee from payer to the fee collector and platform.
func settle(ctx context.Context, store ports.LedgerStore, cfg *models.Config, payer domain.Address, p Payment, amount uint64) (models.Charge, error) {
	charge, err := models.SplitPlatformFee(p.Method, amount, p.PlatformFeeBps)
	if err != nil {
		return models.Charge{}, err
	}
	if err := debit(ctx, store, payer, p.Method, charge.Total); err != nil {
		return models.Charge{}, err
	}
	if err := credit(ctx, store, cfg.FeeCollector, p.Method, charge.CollectorFee); err != nil {
		return models.Charge{}, err
	}
	if charge.PlatformFee > 0 {
		if err := credit(ctx, store, *p.Platform, p.Method, charge.PlatformFee); err != nil {
			return models.Charge{}, err
		}
	}
	return charge, nil
}

func appendEvent(ctx context.Context, store ports.LedgerStore, ev models.Event) error {
	ev.RequestID = requestcontext.RequestID(ctx)
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = requestcontext.Now(ctx)
	}
	if err := store.AppendEvent(ctx, ev); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record event")
	}
	return nil
}

// withQuote scopes the signed quote around fn. Without an oracle only
// payments that need no quote are possible.
func (s *Service) withQuote(ctx context.Context, signed string, fn func(q *oracle.Quote) error) error {
	if s.quotes == nil {
		if signed != "" {
			return dErrors.New(models.CodeInvalidPriceFeed, "no price oracle is configured")
		}
		return fn(nil)
	}
	return s.quotes.WithQuote(ctx, signed, fn)
}
