package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/navyx/nexus/nexus-users/pkg/internal/testhelper"
)

func TestJSONBody(t *testing.T) {
	t.Parallel()

	type captured struct {
		called bool
		parsed []byte
		hasDoc bool
		raw    string
	}

	serve := func(t *testing.T, limit int64, contentType, body string) (*httptest.ResponseRecorder, *captured) {
		t.Helper()

		c := &captured{}
		handler := JSONBody(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.called = true
			c.parsed, c.hasDoc = JSONBodyFromContext(r.Context())
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			c.raw = string(raw)
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec, c
	}

	t.Run("Well formed document", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 0, "application/json; charset=utf-8", `{"a":1}`)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, c.called)
		require.True(t, c.hasDoc)
		require.JSONEq(t, `{"a":1}`, string(c.parsed))
		require.Equal(t, `{"a":1}`, c.raw)
	})

	t.Run("Vendor JSON media type", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 0, "application/merge-patch+json", `{"name":"x"}`)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, c.hasDoc)
	})

	t.Run("Malformed document", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 0, "application/json", `{"a":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, c.called)

		body := testhelper.JsonToMap(t, rec.Body.String())
		require.Equal(t, float64(http.StatusBadRequest), body["status"])
		require.Equal(t, "request body is not valid JSON", body["detail"])
	})

	t.Run("Oversized document", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 16, "application/json", `{"name":"`+strings.Repeat("x", 64)+`"}`)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		require.False(t, c.called)
	})

	t.Run("Empty JSON body passes through", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 0, "application/json", "  ")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, c.called)
		require.False(t, c.hasDoc)
	})

	t.Run("Other content types are untouched", func(t *testing.T) {
		t.Parallel()

		rec, c := serve(t, 0, "text/plain", "{not json")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, c.called)
		require.False(t, c.hasDoc)
		require.Equal(t, "{not json", c.raw)
	})
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	var target struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.ErrorIs(t, DecodeJSONBody(req, &target), ErrNoJSONBody)

	handler := JSONBody(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, DecodeJSONBody(r, &target))
	}))
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ada"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "ada", target.Name)
}

func TestIsJSONContentType(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"application/problem+json":        true,
		"APPLICATION/JSON":                true,
		"text/json-ish":                   false,
		"multipart/form-data":             false,
		"":                                false,
		";;;":                             false,
	}

	for contentType, expected := range tests {
		require.Equal(t, expected, isJSONContentType(contentType), "Content-Type %q", contentType)
	}
}
