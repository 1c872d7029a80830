package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector keeps process-lifetime request counters for the
// metrics endpoint.
type MetricsCollector struct {
	requests atomic.Int64
	errors   atomic.Int64
	inFlight atomic.Int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// Snapshot returns the counters at a point in time.
func (mc *MetricsCollector) Snapshot() (requests, errors, inFlight int64) {
	return mc.requests.Load(), mc.errors.Load(), mc.inFlight.Load()
}

// Middleware counts every request and every 4xx or 5xx response.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requests.Add(1)
		mc.inFlight.Add(1)
		defer mc.inFlight.Add(-1)

		sw := wrapWriter(w)
		next.ServeHTTP(sw, r)

		if sw.status >= http.StatusBadRequest {
			mc.errors.Add(1)
		}
	})
}
