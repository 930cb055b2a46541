package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics.
type Metrics struct {
	TransfersCreated     prometheus.Counter
	TransferErrors       *prometheus.CounterVec
	IdempotencyReplays   prometheus.Counter
	IdempotencyConflicts *prometheus.CounterVec
	IdempotencySwept     prometheus.Counter
	AccountsCreated      prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		IdempotencyReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_idempotency_replays_total",
			Help: "Total number of responses replayed from the idempotency cache",
		}),
		IdempotencyConflicts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_idempotency_conflicts_total",
				Help: "Total idempotency conflicts by kind",
			},
			[]string{"kind"},
		),
		IdempotencySwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_idempotency_swept_total",
			Help: "Total number of expired idempotency records removed",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_accounts_created_total",
			Help: "Total number of accounts created",
		}),
	}
}
