package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewMetrics()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t, m)
	require.Contains(t, body, "shelfwise_http_requests_total")
	require.Contains(t, body, `code="418"`)
}

func TestObserveJob(t *testing.T) {
	m := NewMetrics()
	m.ObserveJob("photo:score", "ok")
	m.ObserveJob("photo:score", "ok")
	m.ObserveJob("photo:score", "failed")

	body := scrape(t, m)
	require.Contains(t, body, `shelfwise_jobs_total{status="failed",task="photo:score"} 1`)
	require.Contains(t, body, `shelfwise_jobs_total{status="ok",task="photo:score"} 2`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveJob("photo:score", "ok")

	handlerRan := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, handlerRan)
}
