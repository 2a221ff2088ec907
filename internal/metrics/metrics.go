// Package metrics exposes prometheus collectors for ledger activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry so tests can instantiate collectors
// without global registration conflicts.
type Metrics struct {
	registry *prometheus.Registry

	transactionsProcessed *prometheus.CounterVec
	operationsRejected    *prometheus.CounterVec
	balanceAlerts         *prometheus.CounterVec
	activeAccounts        prometheus.Gauge
}

// New builds the collector set on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		transactionsProcessed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of committed ledger transactions",
		}, []string{"kind"}),
		operationsRejected: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_rejected_total",
			Help: "Total number of rejected ledger operations",
		}, []string{"reason"}),
		balanceAlerts: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "balance_alerts_total",
			Help: "Total number of balance threshold alerts emitted",
		}, []string{"level"}),
		activeAccounts: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "accounts_active",
			Help: "Number of active accounts",
		}),
	}
}

// Handler returns the HTTP scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TransactionCommitted counts one committed transaction of the given kind.
func (m *Metrics) TransactionCommitted(kind string) {
	if m == nil {
		return
	}
	m.transactionsProcessed.WithLabelValues(kind).Inc()
}

// OperationRejected counts one rejected operation by reason.
func (m *Metrics) OperationRejected(reason string) {
	if m == nil {
		return
	}
	m.operationsRejected.WithLabelValues(reason).Inc()
}

// AlertEmitted counts one balance alert at the given level.
func (m *Metrics) AlertEmitted(level string) {
	if m == nil {
		return
	}
	m.balanceAlerts.WithLabelValues(level).Inc()
}

// SetActiveAccounts records the current number of active accounts.
func (m *Metrics) SetActiveAccounts(n int) {
	if m == nil {
		return
	}
	m.activeAccounts.Set(float64(n))
}
