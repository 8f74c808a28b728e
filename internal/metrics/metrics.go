package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "explore",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "provider_requests_total",
		Help:      "Total requests to upstream providers by category and result status.",
	}, []string{"category", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "explore",
		Name:      "provider_request_duration_seconds",
		Help:      "Upstream provider request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"category"})

	StaleResponsesDiscarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "stale_responses_discarded_total",
		Help:      "Provider responses discarded because a newer search token was applied first.",
	}, []string{"category"})

	DebounceExecutionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "debounce_executions_total",
		Help:      "Search executions that fired after the debounce quiet window.",
	})

	DebounceCoalescedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "debounce_coalesced_total",
		Help:      "Keystrokes absorbed by the debounce window without triggering an execution.",
	})

	NormalizerDroppedItems = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "normalizer_dropped_items_total",
		Help:      "Upstream items dropped because they were not well-formed after fallback resolution.",
	}, []string{"category"})

	CacheAppliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explore",
		Name:      "category_cache_applies_total",
		Help:      "Category result-set applications by category and outcome (ok, failed, stale).",
	}, []string{"category", "outcome"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		StaleResponsesDiscarded,
		DebounceExecutionsTotal,
		DebounceCoalescedTotal,
		NormalizerDroppedItems,
		CacheAppliesTotal,
	)
}
