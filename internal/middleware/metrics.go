package middleware

import (
	"net/http"
	"time"

	"github.com/primarycell/assessment/internal/telemetry"
)

// Metrics records request counts and latency per route.
//
// The route label is the pattern ServeMux matched, which it writes onto the
// request it receives. Middleware placed after this one must pass the same
// *http.Request through (no WithContext) for the pattern to be visible here.
func Metrics(m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, routeLabel(r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}
