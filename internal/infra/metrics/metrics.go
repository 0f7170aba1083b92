package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the business counters/histograms this system exposes.
// Exporter wiring (scrape endpoints, push gateways) is observability glue
// and out of scope; these metrics exist to be scraped by whatever already
// runs in the deployment, not to define that pipeline.
type Metrics struct {
	SagaOutcomesTotal       *prometheus.CounterVec
	SagaStepDuration        *prometheus.HistogramVec
	InventoryConflictsTotal *prometheus.CounterVec
	ReaperSweptTotal        prometheus.Counter
	RecoveryActionsTotal    *prometheus.CounterVec
	IdempotencyHitsTotal    *prometheus.CounterVec
	IdempotencyMissesTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SagaOutcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_saga_outcomes_total",
				Help: "Total number of booking sagas by terminal or pending outcome",
			},
			[]string{"outcome"}, // confirmed, business_failure, pending_unclear
		),

		SagaStepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_saga_step_duration_seconds",
				Help:    "Duration of each saga step's remote call",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"}, // reserve, charge, confirm
		),

		InventoryConflictsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_conflicts_total",
				Help: "Total number of guarded-decrement failures (oversell attempts rejected)",
			},
			[]string{"room_id"},
		),

		ReaperSweptTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "inventory_hold_reaper_swept_total",
				Help: "Total number of reservation holds reaped after expiry",
			},
		),

		RecoveryActionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_recovery_actions_total",
				Help: "Total number of recovery worker actions by kind",
			},
			[]string{"action"}, // advance_stuck, give_up
		),

		IdempotencyHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idempotency_hits_total",
				Help: "Total number of idempotency lookups that found an existing response",
			},
			[]string{"service"}, // inventory, payment
		),

		IdempotencyMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idempotency_misses_total",
				Help: "Total number of idempotency lookups that found nothing",
			},
			[]string{"service"},
		),
	}
}
