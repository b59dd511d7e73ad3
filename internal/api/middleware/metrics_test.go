package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilhq/stencil-api/internal/platform/metrics"
)

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	t.Parallel()

	m := metrics.NewManager("test")

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/test/template/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Two requests to the same route pattern with different path params
	for _, path := range []string{
		"/test/template/0c2e4bd4-4a56-4d0c-9172-7c2a4d2df332",
		"/test/template/9a0a46fc-7bde-4f83-b224-4a4347a2c2b2",
	} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// Both parameterized requests collapse into one series
	count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(
		"GET", "/test/template/{id}", "200"))
	assert.Equal(t, float64(2), count,
		"requests should be labeled by route pattern, not raw path")

	count = testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/boom", "500"))
	assert.Equal(t, float64(1), count)

	// The duration histogram observes the same routes
	histogramCount := testutil.CollectAndCount(m.RequestDuration)
	assert.Equal(t, 2, histogramCount, "one histogram series per method/route pair")
}

func TestMetricsHandlerServesScrapeEndpoint(t *testing.T) {
	t.Parallel()

	m := metrics.NewManager("test")
	m.RequestsTotal.WithLabelValues("GET", "/test/template", "200").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test_http_requests_total",
		"scrape output should include the request counter")
}
