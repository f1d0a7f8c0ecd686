// Package metrics defines Prometheus metrics for grocery-autopilot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "grocer"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or not (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or not (0).",
	})
)

// Run metrics.
var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by outcome.",
	}, []string{"outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of full pipeline runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Resolution metrics.
var (
	ItemsResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_resolved_total",
		Help:      "Total number of task items resolved to a catalog product.",
	})

	ItemsUnmappedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_unmapped_total",
		Help:      "Total number of task items with no catalog mapping.",
	})

	AliasesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aliases_added_total",
		Help:      "Total number of human-confirmed aliases added to the catalog.",
	})
)

// Cart metrics.
var (
	CartAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_adds_total",
		Help:      "Total number of verified cart additions.",
	})

	CartAddFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_add_failures_total",
		Help:      "Total number of items that failed the add-then-verify cycle.",
	})

	CartAlreadyPresentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_already_present_total",
		Help:      "Total number of target items skipped because the cart already held them.",
	})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of cart reconciliation in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Google Tasks API metrics.
var (
	TasksAPICallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_api_calls_total",
		Help:      "Total cumulative Google Tasks API calls.",
	})

	TasksDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_daily_limit_hits_total",
		Help:      "Total number of times the daily Google Tasks API budget was reached.",
	})
)

// Notification metrics.
var (
	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)
