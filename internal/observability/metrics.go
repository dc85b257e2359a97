package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTP series are labelled by the matched route pattern, never the raw path.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_http_requests_total",
			Help: "Total number of HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "adsight_http_request_duration_seconds",
			Help: "HTTP request latency by route.",
			// The upper buckets cover /ask round trips.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"method", "route"},
	)
	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "adsight_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)
	authFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_auth_failures_total",
			Help: "Rejected API credentials by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDurationSeconds, httpRequestsInFlight, authFailuresTotal)
}

// ObserveAuthFailure counts a rejected request. Reason is a short fixed
// token such as "missing" or "invalid".
func ObserveAuthFailure(reason string) {
	authFailuresTotal.WithLabelValues(reason).Inc()
}
