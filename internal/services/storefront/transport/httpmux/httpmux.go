// Package httpmux wires the storefront's shared routes into the root mux.
package httpmux

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// staticMaxAge is the browser cache lifetime for embedded assets.
const staticMaxAge = "public, max-age=3600"

// MountStatic serves staticFS under the static prefix.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS) {
	if rootMux == nil || staticFS == nil {
		return
	}
	handler := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	rootMux.Handle(http.MethodGet+" "+routepath.StaticPrefix, withStaticHeaders(handler))
}

// withStaticHeaders sets explicit content types and caching for assets.
func withStaticHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path := strings.ToLower(r.URL.Path); {
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case strings.HasSuffix(path, ".js"):
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		case strings.HasSuffix(path, ".svg"):
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		w.Header().Set("Cache-Control", staticMaxAge)
		next.ServeHTTP(w, r)
	})
}

// HealthReport names each module and whether its backend is usable.
type HealthReport func() map[string]bool

// MountHealth serves the liveness probe. The process is live whenever it
// answers; degraded modules are listed but do not fail the probe.
func MountHealth(rootMux *http.ServeMux, report HealthReport) {
	if rootMux == nil {
		return
	}
	rootMux.HandleFunc(http.MethodGet+" "+routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		modules := map[string]bool{}
		if report != nil {
			modules = report()
		}
		status := "ok"
		for _, healthy := range modules {
			if !healthy {
				status = "degraded"
				break
			}
		}
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": status, "modules": modules})
	})
}

// MountRoutes hands every remaining path to the composed module mux.
func MountRoutes(rootMux *http.ServeMux, modules http.Handler) {
	if rootMux == nil || modules == nil {
		return
	}
	rootMux.Handle(routepath.Root, modules)
}
