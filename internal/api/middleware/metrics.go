package middleware

import (
	"net/http"
	"time"

	"github.com/kamtechie/zenji/internal/observability"
)

// knownRoutes bounds the route label; anything else is recorded as "other".
var knownRoutes = map[string]bool{
	"/":             true,
	"/health":       true,
	"/metrics":      true,
	"/v1/messages":  true,
	"/openapi.json": true,
	"/openapi.yaml": true,
	"/docs":         true,
}

// Metrics returns middleware that records HTTP request count and duration via ChatMetrics.
// When metrics is nil, recording is skipped. Put Metrics outermost so duration is full request time.
func Metrics(metrics observability.ChatMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)
			metrics.RecordRequest(r.Context(), r.Method, normalizeRoute(r.URL.Path),
				observability.StatusClass(rw.status), time.Since(start))
		})
	}
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}

	return "other"
}
