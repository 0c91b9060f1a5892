// Package observability provides request logging for the storefront.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
)

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogger logs one key=value line per request. Query strings are never
// logged and a redirect's Location is reduced to its path.
func RequestLogger(logger *log.Logger) httpx.Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)
			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}
			path := "-"
			method := "-"
			if r != nil && r.URL != nil {
				path = strings.TrimSpace(r.URL.Path)
				method = r.Method
			}
			line := fmt.Sprintf(
				"http request method=%s path=%s status=%d bytes=%d latency=%s request_id=%s",
				method,
				path,
				status,
				recorder.bytes,
				time.Since(started).Round(time.Microsecond),
				httpx.RequestIDFrom(r),
			)
			if httpx.IsHTMXRequest(r) {
				line += " htmx=true"
			}
			if target := redirectPath(recorder.Header()); target != "" {
				line += " location=" + target
			}
			logger.Print(line)
		})
	}
}

func redirectPath(header http.Header) string {
	location := header.Get("Location")
	if location == "" {
		location = header.Get("HX-Redirect")
	}
	if location == "" {
		return ""
	}
	parsed, err := url.Parse(location)
	if err != nil || parsed.Path == "" {
		return "-"
	}
	return parsed.Path
}
