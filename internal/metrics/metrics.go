package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded by the HTTP client
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeNetworkError   = "network_error"
	OutcomeSessionExpired = "session_expired"
)

// Reasons a session was cleared
const (
	ClearReasonExpired = "expired"
	ClearReasonLogout  = "logout"
)

// HTTP client metrics
var (
	// HTTPRequestsTotal counts requests by method and outcome
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reader_http_requests_total",
			Help: "Total requests sent to the reader service by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// HTTPRequestDuration tracks round trip latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reader_http_request_duration_seconds",
			Help:    "Reader service request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)
)

// Session metrics
var (
	// SessionExpiredTotal counts 401 responses that ran the forced logout
	SessionExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reader_session_expired_total",
			Help: "Total forced logouts triggered by a 401 response",
		},
	)

	// SessionClearsTotal counts cleared sessions by reason
	SessionClearsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reader_session_clears_total",
			Help: "Total cleared sessions by reason",
		},
		[]string{"reason"},
	)
)
