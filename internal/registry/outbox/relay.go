// Package outbox relays events committed to the ledger outbox to Kafka.
package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tns/internal/platform/kafka"
	"tns/internal/registry/models"
	"tns/internal/registry/ports"
)

// Publisher is the Kafka side of the relay.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// Metrics records relay throughput.
type Metrics interface {
	AddEventsRelayed(n int)
	IncRelayFailures()
}

// Relay polls the outbox in sequence order and publishes pending entries.
// An entry is marked published only after the broker acknowledges it, so
// delivery is at-least-once.
type Relay struct {
	outbox    ports.Outbox
	publisher Publisher
	logger    *slog.Logger
	metrics   Metrics
	interval  time.Duration
	batchSize int
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

func New(outbox ports.Outbox, publisher Publisher, opts ...Option) (*Relay, error) {
	if outbox == nil {
		return nil, errors.New("outbox is required")
	}
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run relays until ctx is cancelled. Publish failures are logged and retried
// on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			if r.metrics != nil {
				r.metrics.IncRelayFailures()
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, len(entries))
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		msgs[i] = toMessage(e)
		ids[i] = e.ID
	}
	if err := r.publisher.Publish(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := r.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
		return 0, err
	}
	if r.metrics != nil {
		r.metrics.AddEventsRelayed(len(entries))
	}
	r.logger.DebugContext(ctx, "outbox batch relayed", "count", len(entries))
	return len(entries), nil
}

// toMessage keys by symbol so one symbol's events stay ordered in a partition.
func toMessage(e models.OutboxEntry) kafka.Message {
	key := e.Symbol
	if key == "" {
		key = string(e.Type)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: e.Payload,
		Headers: map[string]string{
			"event_id":   e.ID.String(),
			"event_type": string(e.Type),
		},
	}
}
