// Package oracle turns off-chain signed price quotes into short-lived quote
// accounts that the pricing engine reads within a single operation.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tns/internal/registry/models"
	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
	"tns/pkg/platform/sentinel"
)

// QuoteStore holds posted quote accounts until they are released.
type QuoteStore interface {
	Put(ctx context.Context, addr domain.Address, q *Quote) error
	Get(ctx context.Context, addr domain.Address) (*Quote, error)
	Delete(ctx context.Context, addr domain.Address) error
}

// Adapter posts verified quotes and guarantees their release.
type Adapter struct {
	verifier *Verifier
	store    QuoteStore
	logger   *slog.Logger
	metrics  Metrics
}

// Metrics observes quote account churn.
type Metrics interface {
	IncQuotesPosted()
	IncQuoteReleaseFailures()
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

func NewAdapter(verifier *Verifier, store QuoteStore, opts ...Option) (*Adapter, error) {
	if verifier == nil {
		return nil, fmt.Errorf("quote verifier is required")
	}
	if store == nil {
		return nil, fmt.Errorf("quote store is required")
	}
	a := &Adapter{
		verifier: verifier,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// QuoteAddress derives the account address for a signed quote. The same
// token always maps to the same account, so it backs one operation at a time.
func QuoteAddress(signed string) domain.Address {
	return domain.DeriveAddress("quote", []byte(signed))
}

// WithQuote posts the signed quote as a scoped account, runs fn against the
// stored copy and releases the account on every exit path. An empty signed
// quote runs fn with nil, for payment methods that need no oracle.
func (a *Adapter) WithQuote(ctx context.Context, signed string, fn func(q *Quote) error) error {
	if signed == "" {
		return fn(nil)
	}

	parsed, err := a.verifier.Parse(signed)
	if err != nil {
		return err
	}

	addr := QuoteAddress(signed)
	if err := a.store.Put(ctx, addr, parsed); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, models.CodeQuoteInUse, "price quote is already backing another operation")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to post price quote")
	}
	if a.metrics != nil {
		a.metrics.IncQuotesPosted()
	}
	defer a.release(ctx, addr)

	q, err := a.store.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return dErrors.Wrap(err, models.CodeStalePriceFeed, "price quote account expired before use")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read price quote")
	}
	return fn(q)
}

func (a *Adapter) release(ctx context.Context, addr domain.Address) {
	if err := a.store.Delete(context.WithoutCancel(ctx), addr); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		if a.metrics != nil {
			a.metrics.IncQuoteReleaseFailures()
		}
		a.logger.ErrorContext(ctx, "failed to release price quote account",
			"quote", addr.String(),
			"error", err,
		)
	}
}
