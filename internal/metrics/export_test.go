package metrics

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()

	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reader_http_requests_total",
		Help: "test",
	}, []string{"method", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "reader_http_request_duration_seconds",
		Help: "test",
	})
	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unrelated_total",
		Help: "test",
	})
	reg.MustRegister(requests, duration, other)

	requests.WithLabelValues("GET", OutcomeSuccess).Add(3)
	requests.WithLabelValues("GET", OutcomeSessionExpired).Inc()
	duration.Observe(0.5)
	duration.Observe(0.25)
	other.Inc()

	return reg
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteSummary(&out, newTestRegistry(t)))

	assert.Equal(t,
		"reader_http_request_duration_seconds count=2 sum=0.750s\n"+
			`reader_http_requests_total{method="GET",outcome="session_expired"} 1`+"\n"+
			`reader_http_requests_total{method="GET",outcome="success"} 3`+"\n",
		out.String())
}

func TestWriteSummary_DefaultRegistry(t *testing.T) {
	SessionExpiredTotal.Add(0)

	var out bytes.Buffer
	require.NoError(t, WriteSummary(&out, prometheus.DefaultGatherer))

	assert.Contains(t, out.String(), "reader_session_expired_total")
	assert.NotContains(t, out.String(), "go_goroutines")
}

func TestPush(t *testing.T) {
	var method, path string
	var body []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, Push(context.Background(), server.URL, "", newTestRegistry(t)))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/"+DefaultJob, path)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := Push(context.Background(), server.URL, "nightly", newTestRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
