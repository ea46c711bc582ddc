package observability

import (
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels for ledger_operations_total and ledger_auth_attempts_total.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// Metrics holds all Prometheus metrics for the ledger service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	authAttempts      *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
	catalogClients    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Ledger mutations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_auth_attempts_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_sessions_active",
			Help: "Sessions currently held in memory.",
		}),
		catalogClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_catalog_clients",
			Help: "Client profiles loaded from the catalog.",
		}),
	}
}

// RecordOperation counts one ledger operation and observes its duration.
func (m *Metrics) RecordOperation(operation, outcome string, d time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrAuthAttempt counts a login attempt.
func (m *Metrics) IncrAuthAttempt(outcome string) {
	m.authAttempts.WithLabelValues(outcome).Inc()
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() { m.sessionsActive.Inc() }

func (m *Metrics) SessionClosed() { m.sessionsActive.Dec() }

// SetCatalogClients records how many profiles the catalog holds.
func (m *Metrics) SetCatalogClients(n int) {
	m.catalogClients.Set(float64(n))
}

// Snapshot returns the counters in the shape served by GET /v1/metrics/ledger.
func (m *Metrics) Snapshot(operations []string) *domain.LedgerMetrics {
	snap := &domain.LedgerMetrics{
		Operations:     make(map[string]domain.OperationCounts, len(operations)),
		LoginSuccesses: int64(getCounterValue(m.authAttempts, OutcomeSuccess)),
		LoginFailures:  int64(getCounterValue(m.authAttempts, OutcomeFailure)),
		ActiveSessions: int64(getGaugeValue(m.sessionsActive)),
		CatalogClients: int64(getGaugeValue(m.catalogClients)),
	}

	for _, op := range operations {
		ok := getCounterValue(m.operations, op, OutcomeSuccess)
		rejected := getCounterValue(m.operations, op, OutcomeRejected)
		rate := float64(0)
		if total := ok + rejected; total > 0 {
			rate = rejected / total
		}
		snap.Operations[op] = domain.OperationCounts{
			Succeeded:  int64(ok),
			Rejected:   int64(rejected),
			RejectRate: rate,
		}
	}
	return snap
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
