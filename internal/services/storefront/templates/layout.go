package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// Alert is a notice rendered above page content. Message is shown verbatim
// and wins over Key.
type Alert struct {
	Kind    string
	Key     string
	Message string
}

// Text resolves the alert copy for loc.
func (a Alert) Text(loc Localizer) string {
	if message := strings.TrimSpace(a.Message); message != "" {
		return message
	}
	if key := strings.TrimSpace(a.Key); key != "" {
		return T(loc, key)
	}
	return ""
}

// LayoutOptions carries page chrome values.
type LayoutOptions struct {
	Title       string
	Lang        string
	Loc         Localizer
	Viewer      module.Viewer
	CurrentPath string
	Toast       *Alert
	// RefreshTo, when set, sends the browser there after RefreshSeconds.
	RefreshTo      string
	RefreshSeconds int
}

// Layout renders the document shell around its children.
func Layout(opts LayoutOptions) templ.Component {
	return render(func(ctx context.Context, m *markup) {
		lang := strings.TrimSpace(opts.Lang)
		if lang == "" {
			lang = "en"
		}
		m.raw("<!DOCTYPE html>")
		m.open("html", "lang", lang)
		m.raw("<head>")
		m.raw(`<meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if opts.RefreshTo != "" && routepath.IsLocal(opts.RefreshTo) {
			seconds := opts.RefreshSeconds
			if seconds < 0 {
				seconds = 0
			}
			m.raw("<meta")
			m.attr("http-equiv", "refresh")
			m.attr("content", itoa(seconds)+";url="+opts.RefreshTo)
			m.raw(">")
		}
		m.element("title", pageTitle(opts.Loc, opts.Title))
		m.raw(`<link rel="stylesheet" href="` + routepath.StaticPrefix + `app.css">`)
		m.raw(`<script defer src="` + routepath.StaticPrefix + `app.js"></script>`)
		m.raw("</head><body>")
		header(m, opts)
		m.open("main", "id", "main")
		if opts.Toast != nil {
			toast(m, opts.Loc, *opts.Toast)
		}
		m.component(ctx, templ.GetChildren(ctx))
		m.close("main")
		footer(m, opts)
		m.raw("</body></html>")
	})
}

// MainContent renders only the children, for HTMX swaps of the main region.
func MainContent(opts LayoutOptions) templ.Component {
	return render(func(ctx context.Context, m *markup) {
		if opts.Toast != nil {
			toast(m, opts.Loc, *opts.Toast)
		}
		m.component(ctx, templ.GetChildren(ctx))
	})
}

func pageTitle(loc Localizer, title string) string {
	brand := T(loc, "layout.brand")
	title = strings.TrimSpace(title)
	if title == "" {
		return brand
	}
	return title + " | " + brand
}

func header(m *markup, opts LayoutOptions) {
	loc := opts.Loc
	m.raw(`<header class="site-header">`)
	m.link(routepath.Root, T(loc, "layout.brand"), "class", "brand")
	m.open("nav", "aria-label", T(loc, "layout.nav.label"))
	if opts.Viewer.SignedIn {
		m.link(routepath.CustomerDashboard, T(loc, "layout.nav.dashboard"))
		m.link(routepath.CustomerProfile, T(loc, "layout.nav.profile"))
		m.open("form", "method", "post", "action", routepath.Logout, "class", "inline")
		m.element("button", T(loc, "layout.nav.logout"), "type", "submit", "data-busy-disable", "")
		m.close("form")
	} else {
		m.link(routepath.Login, T(loc, "layout.nav.login"))
		m.link(routepath.Register, T(loc, "layout.nav.register"))
	}
	m.close("nav")
	m.raw("</header>")
}

func footer(m *markup, opts LayoutOptions) {
	m.raw(`<footer class="site-footer">`)
	m.open("nav", "aria-label", T(opts.Loc, "layout.language.label"))
	path := opts.CurrentPath
	if !routepath.IsLocal(path) {
		path = routepath.Root
	}
	for _, choice := range []struct{ tag, key string }{{"en", "layout.language.en"}, {"hi", "layout.language.hi"}} {
		attrs := []string{"hreflang", choice.tag}
		if choice.tag == opts.Lang {
			attrs = append(attrs, "aria-current", "true")
		}
		m.link(routepath.WithQuery(path, "lang", choice.tag), T(opts.Loc, choice.key), attrs...)
	}
	m.close("nav")
	m.raw("</footer>")
}

func toast(m *markup, loc Localizer, alert Alert) {
	text := alert.Text(loc)
	if text == "" {
		return
	}
	kind := strings.TrimSpace(alert.Kind)
	if kind == "" {
		kind = "info"
	}
	role := "status"
	if kind == "error" || kind == "warning" {
		role = "alert"
	}
	m.open("div", "class", "toast toast-"+kind, "role", role, "data-toast", "")
	m.text(text)
	m.close("div")
}

// alertBlock renders an inline form-level alert.
func alertBlock(m *markup, loc Localizer, alert *Alert) {
	if alert == nil {
		return
	}
	text := alert.Text(loc)
	if text == "" {
		return
	}
	kind := strings.TrimSpace(alert.Kind)
	if kind == "" {
		kind = "error"
	}
	m.open("p", "class", "alert alert-"+kind, "role", "alert")
	m.text(text)
	m.close("p")
}
