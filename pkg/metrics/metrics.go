// Package metrics registers the Prometheus counters exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExpensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetlink_expenses_recorded_total",
		Help: "Number of expenses recorded through the consumption ledger.",
	})

	ExpensesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetlink_expenses_updated_total",
		Help: "Number of expense updates applied with a ledger delta adjustment.",
	})

	ExpensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetlink_expenses_deleted_total",
		Help: "Number of expenses deleted with a ledger decrement.",
	})

	ConsumptionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetlink_ledger_consumption_total",
		Help: "Total value added to budget history snapshots.",
	})

	ReportRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetlink_report_requests_total",
		Help: "Number of report queries served, by kind.",
	}, []string{"kind"})
)
