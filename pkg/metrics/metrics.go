// Package metrics holds the Prometheus collectors of the transfer engine.
package metrics

import (
	"errors"

	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpCreate  = "create"
	OpApprove = "approve"
	OpReject  = "reject"
)

var (
	TransferOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_operations_total",
			Help: "Total number of transfer operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	TransfersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_created_total",
			Help: "Transfers created, by initial status",
		},
		[]string{"status"}, // PENDING, APPROVED
	)

	TransferAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transfers_amount",
			Help:    "Transfer amount distribution",
			Buckets: []float64{10, 100, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"status"},
	)

	TransferDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transfers_operation_duration_seconds",
			Help:    "Time to run a transfer operation including its atomic scope",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	ConcurrencyConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_concurrency_conflicts_total",
			Help: "Version-checked writes that matched no row",
		},
		[]string{"resource"},
	)

	AuditEmitFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_audit_emit_failures_total",
			Help: "Audit events the bus refused",
		},
		[]string{"type"},
	)
)

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
