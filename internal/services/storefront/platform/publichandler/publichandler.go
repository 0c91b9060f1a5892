// Package publichandler provides a shared base for storefront handlers that
// do not require a signed-in customer.
package publichandler

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/pagerender"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/webctx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/weberror"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
)

// Base provides page rendering, localization and error handling for public
// modules. Embed it in handler structs.
type Base struct {
	resolveViewer   module.ResolveViewer
	resolveSignedIn module.ResolveSignedIn
	policy          requestmeta.SchemePolicy
}

// Option configures a Base.
type Option func(*Base)

// WithResolveViewer attaches a viewer resolver for page chrome.
func WithResolveViewer(rv module.ResolveViewer) Option {
	return func(b *Base) { b.resolveViewer = rv }
}

// WithResolveViewerSignedIn attaches a direct signed-in resolver.
func WithResolveViewerSignedIn(resolver module.ResolveSignedIn) Option {
	return func(b *Base) { b.resolveSignedIn = resolver }
}

// WithSchemePolicy sets the cookie security policy.
func WithSchemePolicy(policy requestmeta.SchemePolicy) Option {
	return func(b *Base) { b.policy = policy }
}

// NewBase builds a public handler base with the given options.
func NewBase(opts ...Option) Base {
	var b Base
	for _, o := range opts {
		o(&b)
	}
	return b
}

// ResolveRequestViewer resolves viewer state for the request.
func (b Base) ResolveRequestViewer(r *http.Request) module.Viewer {
	if b.resolveViewer == nil {
		return module.Viewer{}
	}
	return b.resolveViewer(r)
}

// IsViewerSignedIn reports whether the current request is authenticated.
func (b Base) IsViewerSignedIn(r *http.Request) bool {
	if b.resolveSignedIn != nil {
		return b.resolveSignedIn(r)
	}
	return b.ResolveRequestViewer(r).SignedIn
}

// RequestSchemePolicy returns the cookie security policy.
func (b Base) RequestSchemePolicy() requestmeta.SchemePolicy {
	return b.policy
}

// PageLocalizer resolves a localizer and language tag from the request.
func (Base) PageLocalizer(w http.ResponseWriter, r *http.Request) (templates.Localizer, string) {
	return i18n.ResolveLocalizer(w, r)
}

// RequestContext returns the context for commerce API calls.
func (Base) RequestContext(r *http.Request) context.Context {
	return webctx.WithRequest(r)
}

// WritePublicPage renders body inside the storefront layout.
func (b Base) WritePublicPage(w http.ResponseWriter, r *http.Request, title string, statusCode int, body templ.Component) {
	b.WritePage(w, r, pagerender.Page{Title: title, StatusCode: statusCode, Fragment: body})
}

// WritePage renders page inside the storefront layout.
func (b Base) WritePage(w http.ResponseWriter, r *http.Request, page pagerender.Page) {
	if err := pagerender.WritePage(w, r, b, page); err != nil {
		b.WriteError(w, r, err)
	}
}

// WriteNotFound renders a localized 404 page.
func (b Base) WriteNotFound(w http.ResponseWriter, r *http.Request) {
	loc, _ := i18n.ResolveLocalizer(w, r)
	weberror.WriteAppError(w, r, http.StatusNotFound, templates.T(loc, "error.not_found"), b)
}

// WriteError renders a customer-safe error response.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteError(w, r, err, b)
}
