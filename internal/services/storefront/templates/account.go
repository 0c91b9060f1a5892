package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// DashboardView greets the signed-in customer.
type DashboardView struct {
	DisplayName string
	Email       string
}

// ProfileView renders the profile page forms.
type ProfileView struct {
	Email           string
	NewsletterOptIn bool
	Profile         Form
	Password        Form
	EmailChange     Form
	Sizes           []string
	Genders         []string
}

// DashboardPage renders the customer dashboard.
func DashboardPage(view DashboardView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="dashboard">`)
		m.element("h1", T(loc, "dashboard.heading", view.DisplayName))
		if view.Email != "" {
			m.element("p", T(loc, "dashboard.signed_in_as", view.Email), "class", "subject")
		}
		m.raw(`<ul class="actions">`)
		for _, action := range []struct{ href, key string }{
			{routepath.CustomerProfile, "dashboard.link.profile"},
			{routepath.CustomerProfile + "#change-password", "dashboard.link.password"},
			{routepath.CustomerProfile + "#change-email", "dashboard.link.email"},
		} {
			m.raw("<li>")
			m.link(action.href, T(loc, action.key))
			m.raw("</li>")
		}
		m.raw("</ul></section>")
	})
}

// ProfilePage renders profile details, newsletter, password and email forms.
func ProfilePage(view ProfileView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="profile">`)
		m.element("h1", T(loc, "profile.heading"))
		m.element("p", T(loc, "profile.current_email", view.Email), "class", "subject")

		profile := view.Profile
		m.open("section", "id", "details")
		m.element("h2", T(loc, "profile.details.heading"))
		alertBlock(m, loc, profile.Alert)
		postForm(m, routepath.CustomerProfile)
		input(m, loc, profile, field{name: "firstName", label: "profile.field.first_name", value: profile.Value("firstName"), autocomplete: "given-name", required: true})
		input(m, loc, profile, field{name: "lastName", label: "profile.field.last_name", value: profile.Value("lastName"), autocomplete: "family-name", required: true})
		input(m, loc, profile, field{name: "phoneNumber", label: "profile.field.phone", kind: "tel", value: profile.Value("phoneNumber"), autocomplete: "tel",
			extra: []string{"pattern", `\+91[0-9]{10}`}})
		choice(m, loc, profile, "preferredSize", "profile.field.size", "profile.size.", view.Sizes)
		choice(m, loc, profile, "gender", "profile.field.gender", "profile.gender.", view.Genders)
		input(m, loc, profile, field{name: "dateOfBirth", label: "profile.field.date_of_birth", kind: "date", value: profile.Value("dateOfBirth"), autocomplete: "bday"})
		submit(m, loc, "profile.details.submit", true)
		m.close("form")
		m.close("section")

		m.open("section", "id", "newsletter")
		m.element("h2", T(loc, "profile.newsletter.heading"))
		statusKey := "profile.newsletter.off"
		actionKey := "profile.newsletter.subscribe"
		next := "true"
		if view.NewsletterOptIn {
			statusKey = "profile.newsletter.on"
			actionKey = "profile.newsletter.unsubscribe"
			next = "false"
		}
		m.element("p", T(loc, statusKey))
		postForm(m, routepath.CustomerProfileNewsletter)
		hidden(m, "optIn", next)
		submit(m, loc, actionKey, true)
		m.close("form")
		m.close("section")

		password := view.Password
		m.open("section", "id", "change-password")
		m.element("h2", T(loc, "profile.password.heading"))
		alertBlock(m, loc, password.Alert)
		postForm(m, routepath.CustomerChangePassword)
		input(m, loc, password, field{name: "currentPassword", label: "profile.field.current_password", kind: "password", autocomplete: "current-password", required: true})
		passwordInput(m, loc, password, "newPassword", "profile.field.new_password")
		input(m, loc, password, field{name: "confirmPassword", label: "profile.field.confirm_password", kind: "password", autocomplete: "new-password", required: true})
		submit(m, loc, "profile.password.submit", true)
		m.close("form")
		m.close("section")

		email := view.EmailChange
		m.open("section", "id", "change-email")
		m.element("h2", T(loc, "profile.email.heading"))
		m.element("p", T(loc, "profile.email.intro"), "class", "hint")
		alertBlock(m, loc, email.Alert)
		postForm(m, routepath.CustomerChangeEmail)
		input(m, loc, email, field{name: "newEmail", label: "profile.field.new_email", kind: "email", value: email.Value("newEmail"), autocomplete: "email", required: true})
		submit(m, loc, "profile.email.submit", true)
		m.close("form")
		m.close("section")

		m.raw("</section>")
	})
}

// choice renders a select with an empty option followed by options.
func choice(m *markup, loc Localizer, form Form, name string, label string, optionPrefix string, options []string) {
	id := "field-" + name
	selected := form.Value(name)
	m.raw(`<div class="field">`)
	m.element("label", T(loc, label), "for", id)
	m.open("select", "id", id, "name", name)
	m.element("option", T(loc, "profile.option.none"), "value", "")
	for _, option := range options {
		m.raw("<option")
		m.attr("value", option)
		m.flag("selected", option == selected)
		m.raw(">")
		m.text(T(loc, optionPrefix+strings.ToLower(option)))
		m.raw("</option>")
	}
	m.close("select")
	if errKey := form.FieldError(name); errKey != "" {
		m.element("p", T(loc, errKey), "id", id+"-error", "class", "field-error")
	}
	m.raw("</div>")
}
