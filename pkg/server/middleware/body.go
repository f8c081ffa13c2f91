package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBodyLimit is the largest JSON body accepted when no limit is configured.
const DefaultBodyLimit int64 = 100 * 1024

// ErrNoJSONBody is returned by DecodeJSONBody when the request carried no
// JSON document.
var ErrNoJSONBody = errors.New("request has no JSON body")

type jsonBodyKey struct{}

// JSONBody parses JSON request bodies before they reach the handlers.
//
// Requests whose Content-Type is application/json (or a +json suffix) are
// read up to limit bytes and checked for well-formedness. Malformed bodies
// are answered with 400, oversized ones with 413. The parsed document is
// available through JSONBodyFromContext and r.Body is rewound so handlers
// can still read it. Other requests pass through untouched.
func JSONBody(limit int64) func(next http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSONContentType(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					WriteProblem(w, r, http.StatusRequestEntityTooLarge, "request body is too large")
					return
				}
				WriteProblem(w, r, http.StatusBadRequest, "failed to read request body")
				return
			}

			if len(bytes.TrimSpace(body)) > 0 {
				if !json.Valid(body) {
					WriteProblem(w, r, http.StatusBadRequest, "request body is not valid JSON")
					return
				}
				r = r.WithContext(context.WithValue(r.Context(), jsonBodyKey{}, body))
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// JSONBodyFromContext returns the raw JSON document parsed by JSONBody.
func JSONBodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(jsonBodyKey{}).([]byte)
	return body, ok
}

// DecodeJSONBody unmarshals the parsed request body into v.
func DecodeJSONBody(r *http.Request, v any) error {
	body, ok := JSONBodyFromContext(r.Context())
	if !ok {
		return ErrNoJSONBody
	}
	return json.Unmarshal(body, v)
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
