package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine. Every consumer
// accepts a nil *Metrics and skips recording, so tests can run without a
// registry.
type Metrics struct {
	// --- Ingestion ---
	RowsParsed    prometheus.Counter
	RowsMalformed *prometheus.CounterVec

	// --- Worker processing ---
	EventsApplied  *prometheus.CounterVec
	EventsRejected *prometheus.CounterVec
	EventDuration  *prometheus.HistogramVec
	DedupDropped   prometheus.Counter

	// --- Router ---
	InboxDepth *prometheus.GaugeVec

	// --- Snapshot ---
	SnapshotAccounts prometheus.Gauge
	SnapshotDuration prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		RowsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pay_ingest_rows_parsed_total",
			Help: "Input rows successfully parsed into events",
		}),

		RowsMalformed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pay_ingest_rows_malformed_total",
			Help: "Input rows dropped before routing",
		}, []string{"reason"}),

		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pay_worker_events_applied_total",
			Help: "Events successfully applied by workers",
		}, []string{"event_type"}),

		EventsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pay_worker_events_rejected_total",
			Help: "Events rejected by workers (precondition failures)",
		}, []string{"event_type", "reason"}),

		EventDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pay_worker_event_apply_duration_seconds",
			Help:    "Time to apply a single event",
			Buckets: latencyBuckets,
		}, []string{"event_type"}),

		DedupDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pay_dedup_dropped_total",
			Help: "Deposits/withdrawals dropped as probable replays",
		}),

		InboxDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pay_router_inbox_depth",
			Help: "Events queued per worker inbox",
		}, []string{"shard"}),

		SnapshotAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pay_snapshot_accounts",
			Help: "Accounts emitted in the final snapshot",
		}),

		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pay_snapshot_join_duration_seconds",
			Help:    "Time to join shard tables into the snapshot",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
	}
}
