package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// unmatchedResource labels requests no route answered, so scanners cannot
// grow the label set
const unmatchedResource = "unmatched"

// statusRecorder remembers the first status written to the response
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.written {
		return
	}
	sr.status = code
	sr.written = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

// Middleware counts and times every request by API resource. Failed
// requests are also counted by error kind.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		resource := resourceOf(r)
		m.APIRequestsTotal.WithLabelValues(r.Method, resource, strconv.Itoa(rec.status)).Inc()
		m.APIRequestDurationSeconds.WithLabelValues(r.Method, resource).Observe(time.Since(start).Seconds())

		if kind := errorKind(rec.status); kind != "" {
			m.APIErrorsTotal.WithLabelValues(resource, kind).Inc()
		}
	})
}

// resourceOf names the API resource a request was routed to, built from the
// chi route pattern without the /api prefix and path parameters:
// /api/chats/{id}/messages becomes chats.messages.
func resourceOf(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedResource
	}
	return resourceFromPattern(rctx.RoutePattern())
}

func resourceFromPattern(pattern string) string {
	pattern = strings.TrimPrefix(pattern, "/api")
	var parts []string
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" || seg == "*" || strings.HasPrefix(seg, "{") {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, ".")
}

// errorKind maps a failed status to the error label the dashboard client
// reacts to; it is empty for successful responses
func errorKind(status int) string {
	switch {
	case status < 400:
		return ""
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return "invalid_request"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
