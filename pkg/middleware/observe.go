package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
)

// recorder captures the status and body size of a response.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func record(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w}
}

func (rec *recorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// Status is the code sent, or 200 when the handler wrote nothing.
func (rec *recorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (rec *recorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Metrics records request count, latency and in-flight requests.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rec := record(w)
			next.ServeHTTP(rec, r)

			path := normalizePath(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// AccessLog writes one record per request through the request-scoped logger.
// Server errors log at Error, client errors at Warn, the rest at Debug.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)

		log := logger.FromContext(r.Context()).With("component", "http")
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status(),
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch status := rec.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request served", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request served", attrs...)
		default:
			log.Debug("request served", attrs...)
		}
	})
}

// collapsedPrefixes are routes whose trailing segments are caller-chosen
// keys. They fold into one label value.
var collapsedPrefixes = []string{
	"/api/v1/presets/",
	"/api/v1/sort-configs/",
}

func normalizePath(path string) string {
	for _, prefix := range collapsedPrefixes {
		if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
			continue
		}
		rest := strings.Split(strings.TrimPrefix(path, prefix), "/")
		rest[0] = "{key}"
		if len(rest) >= 3 && rest[1] == "promote" {
			rest[2] = "{index}"
		}
		return prefix + strings.Join(rest, "/")
	}
	return path
}
