package templates

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// HomeView renders the landing page for Viewer.
type HomeView struct {
	Viewer module.Viewer
}

// ConfirmationView renders a completed action that ended the session.
type ConfirmationView struct {
	HeadingKey   string
	Message      string
	MessageKey   string
	ContinuePath string
	ContinueKey  string
}

// ErrorView renders a full-page failure.
type ErrorView struct {
	StatusCode int
	Message    string
}

// HomePage renders the storefront landing page.
func HomePage(view HomeView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="hero">`)
		if view.Viewer.SignedIn {
			m.element("h1", T(loc, "home.welcome_back", view.Viewer.DisplayName))
			m.raw(`<p class="links">`)
			m.link(routepath.CustomerDashboard, T(loc, "home.link.dashboard"))
			m.raw("</p>")
		} else {
			m.element("h1", T(loc, "home.heading"))
			m.element("p", T(loc, "home.intro"))
			m.raw(`<p class="links">`)
			m.link(routepath.Login, T(loc, "home.link.login"), "class", "button")
			m.link(routepath.Register, T(loc, "home.link.register"))
			m.raw("</p>")
		}
		m.raw("</section>")
	})
}

// ConfirmationPage renders the outcome of an action that signed the
// customer out, with a link onward.
func ConfirmationPage(view ConfirmationView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		next := view.ContinuePath
		if !routepath.IsLocal(next) {
			next = routepath.Login
		}
		continueKey := view.ContinueKey
		if continueKey == "" {
			continueKey = "confirmation.continue"
		}
		m.raw(`<section class="auth-card confirmation">`)
		m.element("h1", T(loc, view.HeadingKey))
		message := strings.TrimSpace(view.Message)
		if message == "" && view.MessageKey != "" {
			message = T(loc, view.MessageKey)
		}
		if message != "" {
			m.element("p", message, "role", "status")
		}
		m.element("p", T(loc, "confirmation.signed_out"), "class", "hint")
		m.link(next, T(loc, continueKey), "class", "button")
		m.raw("</section>")
	})
}

// ErrorPage renders a status page.
func ErrorPage(view ErrorView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		status := view.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := strings.TrimSpace(view.Message)
		if message == "" {
			message = T(loc, "error.generic")
		}
		m.raw(`<section class="error-page">`)
		m.element("h1", T(loc, "error.heading", status))
		m.element("p", message)
		m.link(routepath.Root, T(loc, "error.home"))
		m.raw("</section>")
	})
}
