// Package pagerender centralizes storefront page rendering behavior.
package pagerender

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flash"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
)

// RequestResolver resolves viewer and cookie policy state from a request.
type RequestResolver interface {
	ResolveRequestViewer(r *http.Request) module.Viewer
	RequestSchemePolicy() requestmeta.SchemePolicy
}

// Page describes a page response for both full-page and HTMX flows.
type Page struct {
	Title      string
	StatusCode int
	Fragment   templ.Component
	// Viewer overrides the resolved viewer, e.g. after signing out within
	// the same response.
	Viewer         *module.Viewer
	RefreshTo      string
	RefreshSeconds int
}

// WritePage renders page inside the storefront layout. HTMX requests get
// only the main region.
func WritePage(w http.ResponseWriter, r *http.Request, resolver RequestResolver, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = templ.NopComponent
	}

	loc, lang := i18n.ResolveLocalizer(w, r)
	var policy requestmeta.SchemePolicy
	viewer := module.Viewer{}
	if resolver != nil {
		policy = resolver.RequestSchemePolicy()
		viewer = resolver.ResolveRequestViewer(r)
	}
	if page.Viewer != nil {
		viewer = *page.Viewer
	}
	opts := templates.LayoutOptions{
		Title:          page.Title,
		Lang:           lang,
		Loc:            loc,
		Viewer:         viewer,
		Toast:          resolveFlashToast(w, r, policy),
		RefreshTo:      page.RefreshTo,
		RefreshSeconds: page.RefreshSeconds,
	}
	if r != nil && r.URL != nil {
		opts.CurrentPath = r.URL.Path
	}

	layout := templates.Layout(opts)
	if httpx.IsHTMXRequest(r) {
		layout = templates.MainContent(opts)
	}
	var buf bytes.Buffer
	if err := layout.Render(templ.WithChildren(httpx.RequestContext(r), fragment), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func resolveFlashToast(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) *templates.Alert {
	notice, ok := flash.ReadAndClear(w, r, policy)
	if !ok {
		return nil
	}
	return &templates.Alert{
		Kind:    string(notice.Kind),
		Key:     notice.Key,
		Message: notice.Message,
	}
}
