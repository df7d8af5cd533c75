package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/auctioneer/pkg/metrics"
)

// MetricsMiddleware records request count and latency per endpoint, and an
// error classification for every 4xx/5xx answer.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		ms := float64(time.Since(start).Milliseconds())
		code := strconv.Itoa(rw.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, ms)

		if rw.statusCode < http.StatusBadRequest {
			return
		}
		kind, severity := classify(rw.statusCode)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
		metrics.RecordErrorLatency("http", kind, ms)
	}
}

// classify maps an error status to the error type and severity labels.
// Pick conflicts and backpressure are expected during a live draft.
func classify(status int) (string, string) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusTooManyRequests:
		return "backpressure", "low"
	case status == http.StatusConflict:
		return "pick_conflict", "low"
	case status == http.StatusNotFound:
		return "not_found", "low"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed", "medium"
	default:
		return "client_error", "medium"
	}
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
