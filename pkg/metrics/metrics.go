package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate decisions
const (
	DecisionAccepted     = "accepted"
	DecisionUnauthorized = "unauthorized"
	DecisionRateLimited  = "rate_limited"
	DecisionError        = "error"
)

var (
	// Registry holds every collector exposed on /metrics
	Registry = prometheus.NewRegistry()

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writespace",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "writespace",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "writespace",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently holding a concurrency slot.",
	})

	HTTPRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writespace",
		Name:      "http_rejected_total",
		Help:      "Requests rejected before reaching a handler.",
	}, []string{"reason"})

	GateDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writespace",
		Name:      "api_gate_decisions_total",
		Help:      "API key gate outcomes.",
	}, []string{"decision"})

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writespace",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	QuotaResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "writespace",
		Name:      "api_key_quota_resets_total",
		Help:      "Keys whose usage counter was reset by the scheduled job.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInFlight,
		HTTPRejectedTotal,
		GateDecisionsTotal,
		CacheLookupsTotal,
		QuotaResetsTotal,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveGateDecision counts one gate outcome
func ObserveGateDecision(decision string) {
	GateDecisionsTotal.WithLabelValues(decision).Inc()
}

// ObserveCacheLookup counts a cache hit or miss
func ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}
