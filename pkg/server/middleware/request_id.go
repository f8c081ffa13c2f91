package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// EchoRequestID copies the request id assigned by chi's RequestID middleware
// onto the response so clients can quote it.
func EchoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
