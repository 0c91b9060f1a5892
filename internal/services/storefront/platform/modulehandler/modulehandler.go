// Package modulehandler provides a composable base for protected storefront
// handlers.
//
// Protected modules (mounted under /customer/) share viewer resolution,
// localization, page rendering, error handling and the response to a
// credential the commerce API no longer accepts.
package modulehandler

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flash"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/pagerender"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/webctx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/weberror"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
)

// Invalidator clears local session state for a request.
type Invalidator func(http.ResponseWriter, *http.Request)

// Base carries the shared request-scoped resolvers used by protected handlers.
type Base struct {
	resolveViewer module.ResolveViewer
	policy        requestmeta.SchemePolicy
	invalidate    Invalidator
}

// NewBase builds a handler base from explicit resolver functions.
func NewBase(resolveViewer module.ResolveViewer, policy requestmeta.SchemePolicy, invalidate Invalidator) Base {
	return Base{
		resolveViewer: resolveViewer,
		policy:        policy,
		invalidate:    invalidate,
	}
}

// NewTestBase builds a base whose viewer is always signed in as email.
func NewTestBase(email string) Base {
	return Base{
		resolveViewer: func(*http.Request) module.Viewer {
			return module.Viewer{SignedIn: true, Email: email, DisplayName: email}
		},
	}
}

// ResolveRequestViewer resolves chrome viewer state for a request.
func (b Base) ResolveRequestViewer(r *http.Request) module.Viewer {
	if b.resolveViewer == nil {
		return module.Viewer{}
	}
	return b.resolveViewer(r)
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

// WritePage renders a module page (HTMX-aware).
func (b Base) WritePage(w http.ResponseWriter, r *http.Request, title string, statusCode int, fragment templ.Component) {
	b.Render(w, r, pagerender.Page{Title: title, StatusCode: statusCode, Fragment: fragment})
}

// Render renders page with full control over layout options.
func (b Base) Render(w http.ResponseWriter, r *http.Request, page pagerender.Page) {
	if err := pagerender.WritePage(w, r, b, page); err != nil {
		b.WriteError(w, r, err)
	}
}

// WriteError renders a localized error response. Unauthorized errors end the
// local session and send the customer to sign in.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if b.HandleUnauthorized(w, r, err) {
		return
	}
	weberror.WriteError(w, r, err, b)
}

// WriteNotFound renders a 404 page.
func (b Base) WriteNotFound(w http.ResponseWriter, r *http.Request) {
	loc, _ := i18n.ResolveLocalizer(w, r)
	weberror.WriteAppError(w, r, http.StatusNotFound, templates.T(loc, "error.not_found"), b)
}

// HandleUnauthorized reports whether err was an unauthorized failure, in
// which case the local session is cleared and the customer is redirected to
// sign in.
func (b Base) HandleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		return false
	}
	if b.invalidate != nil {
		b.invalidate(w, r)
	}
	flash.Write(w, r, flash.Notice{Kind: flash.KindInfo, Key: "error.session_expired"}, b.policy)
	httpx.WriteRedirect(w, r, routepath.Login)
	return true
}

// Redirect sends the customer to location after a mutation, with an
// optional flash notice.
func (b Base) Redirect(w http.ResponseWriter, r *http.Request, location string, notice *flash.Notice) {
	if notice != nil {
		flash.Write(w, r, *notice, b.policy)
	}
	httpx.WriteRedirect(w, r, location)
}

// EndSession clears local session state after the commerce API has already
// ended the session, e.g. following a password change.
func (b Base) EndSession(w http.ResponseWriter, r *http.Request) {
	if b.invalidate != nil {
		b.invalidate(w, r)
	}
}
