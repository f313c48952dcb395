package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the symbol registry.
type Metrics struct {
	// Registry operations by name and outcome code ("ok" on success)
	Operations       *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Fees settled by currency
	FeesCollected *prometheus.CounterVec

	// Ownership claims by path: update_authority, mint_authority, majority_holder
	Claims *prometheus.CounterVec

	// Deposits paid to keepers by reason: cancel, drift, admin_close
	KeeperRewards *prometheus.CounterVec

	QuotesPosted         prometheus.Counter
	QuoteReleaseFailures prometheus.Counter

	EventsRelayed prometheus.Counter
	RelayFailures prometheus.Counter

	KeeperSweeps *prometheus.CounterVec
}

// New registers the registry metrics on reg, or on the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tns_registry_operations_total",
			Help: "Registry operations by operation and result code",
		}, []string{"operation", "code"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tns_registry_operation_duration_seconds",
			Help:    "Duration of registry operations including the ledger transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		FeesCollected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tns_registry_fees_collected_total",
			Help: "Fees settled in currency subunits by payment method",
		}, []string{"method"}),

		Claims: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tns_registry_ownership_claims_total",
			Help: "Successful ownership claims by eligibility path",
		}, []string{"claim_type"}),

		KeeperRewards: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tns_registry_keeper_rewards_total",
			Help: "Storage deposits paid to closers by reason",
		}, []string{"reason"}),

		QuotesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "tns_oracle_quotes_posted_total",
			Help: "Signed price quotes posted as scoped accounts",
		}),

		QuoteReleaseFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "tns_oracle_quote_release_failures_total",
			Help: "Quote accounts that could not be released after use",
		}),

		EventsRelayed: f.NewCounter(prometheus.CounterOpts{
			Name: "tns_outbox_events_relayed_total",
			Help: "Outbox events published to Kafka",
		}),

		RelayFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "tns_outbox_relay_failures_total",
			Help: "Failed outbox relay attempts",
		}),

		KeeperSweeps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tns_keeper_actions_total",
			Help: "Keeper actions by kind and result",
		}, []string{"action", "result"}),
	}
}

// ObserveOperation records an operation's outcome and latency.
func (m *Metrics) ObserveOperation(op, code string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(op, code).Inc()
		m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (m *Metrics) AddFees(method string, amount uint64) {
	if m != nil {
		m.FeesCollected.WithLabelValues(method).Add(float64(amount))
	}
}

func (m *Metrics) IncClaim(claimType string) {
	if m != nil {
		m.Claims.WithLabelValues(claimType).Inc()
	}
}

func (m *Metrics) AddKeeperReward(reason string, amount uint64) {
	if m != nil {
		m.KeeperRewards.WithLabelValues(reason).Add(float64(amount))
	}
}

func (m *Metrics) IncQuotesPosted() {
	if m != nil {
		m.QuotesPosted.Inc()
	}
}

func (m *Metrics) IncQuoteReleaseFailures() {
	if m != nil {
		m.QuoteReleaseFailures.Inc()
	}
}

func (m *Metrics) AddEventsRelayed(n int) {
	if m != nil {
		m.EventsRelayed.Add(float64(n))
	}
}

func (m *Metrics) IncRelayFailures() {
	if m != nil {
		m.RelayFailures.Inc()
	}
}

func (m *Metrics) IncKeeperAction(action, result string) {
	if m != nil {
		m.KeeperSweeps.WithLabelValues(action, result).Inc()
	}
}
