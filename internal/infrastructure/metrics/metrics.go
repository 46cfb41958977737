package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionsEdited  prometheus.Counter
	TransactionsDeleted prometheus.Counter
	BalanceDeltasPosted prometheus.Counter
	LedgerErrors        *prometheus.CounterVec

	// Due-date sweep metrics
	SweepRuns        prometheus.Counter
	SweepApplied     prometheus.Counter
	SweepDuration    prometheus.Histogram
	RecurringPosted  prometheus.Counter
	AuditDriftsFound prometheus.Counter

	// Receipt extraction metrics
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitRejections *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_transactions_created_total",
				Help: "Total number of ledger entries created",
			},
			[]string{"type", "source"},
		),
		TransactionsEdited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_edited_total",
			Help: "Total number of ledger entries edited",
		}),
		TransactionsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_deleted_total",
			Help: "Total number of ledger entries deleted",
		}),
		BalanceDeltasPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_balance_deltas_posted_total",
			Help: "Total number of per-account balance deltas posted",
		}),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_ledger_errors_total",
				Help: "Total number of ledger operation errors by type",
			},
			[]string{"operation"},
		),

		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_sweep_runs_total",
			Help: "Total number of due-date sweep invocations",
		}),
		SweepApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_sweep_applied_total",
			Help: "Total number of fixed expenses materialized by the sweep",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_sweep_duration_seconds",
			Help:    "Duration of due-date sweep runs",
			Buckets: prometheus.DefBuckets,
		}),
		RecurringPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_recurring_posted_total",
			Help: "Total number of transactions posted from recurring templates",
		}),
		AuditDriftsFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_audit_drifts_total",
			Help: "Total number of accounts found drifted by the balance audit",
		}),

		ExtractionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_extractions_total",
				Help: "Total number of receipt extractions by status",
			},
			[]string{"status"},
		),
		ExtractionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_extraction_duration_seconds",
			Help:    "Duration of receipt extraction model calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_rate_limit_rejections_total",
				Help: "Total requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}
