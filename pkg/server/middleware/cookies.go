package middleware

import (
	"context"
	"net/http"
)

type cookiesKey struct{}

// Cookies parses the Cookie header once per request into a name to value
// map. When a name repeats, the first occurrence wins.
func Cookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parsed := r.Cookies()
		cookies := make(map[string]string, len(parsed))
		for _, c := range parsed {
			if _, seen := cookies[c.Name]; !seen {
				cookies[c.Name] = c.Value
			}
		}

		ctx := context.WithValue(r.Context(), cookiesKey{}, cookies)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CookiesFromContext returns the cookies parsed by Cookies, or an empty map.
func CookiesFromContext(ctx context.Context) map[string]string {
	if cookies, ok := ctx.Value(cookiesKey{}).(map[string]string); ok {
		return cookies
	}
	return map[string]string{}
}
