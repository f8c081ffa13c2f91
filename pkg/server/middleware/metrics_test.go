package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/users/1", "/users/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.InDelta(t, 2, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/users/{id}", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "unmatched", "404")), 0)
	require.Equal(t, 4, testutil.CollectAndCount(registry,
		"nexus_users_http_requests_total", "nexus_users_http_request_duration_seconds"))
}
