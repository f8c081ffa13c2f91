package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"gitlab.com/navyx/nexus/nexus-users/pkg/internal/testhelper"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, status int) map[string]interface{} {
		t.Helper()

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("hello"))
		})))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/users?limit=5", nil))

		return testhelper.JsonToMap(t, buf.String())
	}

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, http.StatusOK)
		require.Equal(t, "INFO", entry["level"])
		require.Equal(t, "request completed", entry["msg"])
		require.Equal(t, "GET", entry["method"])
		require.Equal(t, "/api/v1/users", entry["path"])
		require.Equal(t, float64(http.StatusOK), entry["status"])
		require.Equal(t, float64(5), entry["bytes"])
		require.NotEmpty(t, entry["request_id"])
	})

	t.Run("Server error", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, http.StatusBadGateway)
		require.Equal(t, "ERROR", entry["level"])
		require.Equal(t, float64(http.StatusBadGateway), entry["status"])
	})
}
