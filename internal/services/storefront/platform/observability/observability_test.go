package observability

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		target  string
		headers map[string]string
		handler http.HandlerFunc
		want    []string
		absent  []string
	}{
		{
			name:   "explicit status and request id",
			method: http.MethodPost,
			target: "/login",
			headers: map[string]string{
				"X-Request-ID": "req-123",
			},
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			want:    []string{"method=POST", "path=/login", "status=401", "request_id=req-123"},
			absent:  []string{"htmx=", "location="},
		},
		{
			name:    "implicit ok",
			method:  http.MethodGet,
			target:  "/up",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) },
			want:    []string{"method=GET", "path=/up", "status=200", "bytes=2", "latency=", "request_id=-"},
		},
		{
			name:   "redirect drops query",
			method: http.MethodPost,
			target: "/forgot-password?identifier=asha%40example.com",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/reset-otp?email=asha%40example.com", http.StatusSeeOther)
			},
			want:   []string{"path=/forgot-password", "status=303", "location=/reset-otp"},
			absent: []string{"asha", "identifier="},
		},
		{
			name:   "htmx redirect",
			method: http.MethodPost,
			target: "/customer/profile",
			headers: map[string]string{
				"HX-Request": "true",
			},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusOK)
			},
			want: []string{"status=200", "htmx=true", "location=/login"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buffer bytes.Buffer
			h := RequestLogger(log.New(&buffer, "", 0))(tc.handler)
			req := httptest.NewRequest(tc.method, tc.target, nil)
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			line := buffer.String()
			for _, marker := range tc.want {
				if !strings.Contains(line, marker) {
					t.Fatalf("log line missing %q: %q", marker, line)
				}
			}
			for _, marker := range tc.absent {
				if strings.Contains(line, marker) {
					t.Fatalf("log line contains %q: %q", marker, line)
				}
			}
		})
	}
}

func TestRequestLoggerDefaultsNilHandler(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	rr := httptest.NewRecorder()
	RequestLogger(log.New(&buffer, "", 0))(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if !strings.Contains(buffer.String(), "status=404") {
		t.Fatalf("log line = %q", buffer.String())
	}
}
