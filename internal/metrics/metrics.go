// Package metrics exposes prometheus counters for the contribution pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the registered collectors.
type Metrics struct {
	contributionsMarked *prometheus.CounterVec
	confirmed           prometheus.Counter
	rejected            prometheus.Counter
	settledCents        prometheus.Counter
	groupsAutoClosed    prometheus.Counter
	withdrawals         prometheus.Counter
}

var (
	once     sync.Once
	registry *Metrics
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	once.Do(func() {
		registry = &Metrics{
			contributionsMarked: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "potluck_contributions_marked_total",
				Help: "Count of contributions marked paid, by group type.",
			}, []string{"group_type"}),
			confirmed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "potluck_contributions_confirmed_total",
				Help: "Count of contributions confirmed by receivers.",
			}),
			rejected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "potluck_contributions_rejected_total",
				Help: "Count of contribution claims rejected by receivers.",
			}),
			settledCents: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "potluck_settled_cents_total",
				Help: "Total cents settled onto receiver wallets.",
			}),
			groupsAutoClosed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "potluck_groups_auto_closed_total",
				Help: "Count of groups closed automatically by report threshold.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "potluck_withdrawals_total",
				Help: "Count of wallet withdrawals.",
			}),
		}
		prometheus.MustRegister(
			registry.contributionsMarked,
			registry.confirmed,
			registry.rejected,
			registry.settledCents,
			registry.groupsAutoClosed,
			registry.withdrawals,
		)
	})
	return registry
}

// ObserveMarked records a markPaid by group type.
func (m *Metrics) ObserveMarked(groupType string) {
	if m == nil {
		return
	}
	if groupType == "" {
		groupType = "unknown"
	}
	m.contributionsMarked.WithLabelValues(groupType).Inc()
}

// ObserveConfirmed records a confirmation.
func (m *Metrics) ObserveConfirmed() {
	if m == nil {
		return
	}
	m.confirmed.Inc()
}

// ObserveRejected records a rejection.
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// ObserveSettled records settled cents.
func (m *Metrics) ObserveSettled(amountCents int64) {
	if m == nil {
		return
	}
	m.settledCents.Add(float64(amountCents))
}

// ObserveAutoClose records a report-threshold group closure.
func (m *Metrics) ObserveAutoClose() {
	if m == nil {
		return
	}
	m.groupsAutoClosed.Inc()
}

// ObserveWithdrawal records a wallet withdrawal.
func (m *Metrics) ObserveWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}
