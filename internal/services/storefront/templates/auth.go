package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// LoginView renders the sign-in form.
type LoginView struct {
	Form Form
}

// RegisterView renders the account registration form.
type RegisterView struct {
	Form Form
}

// ForgotPasswordView renders the password reset request form.
type ForgotPasswordView struct {
	Form Form
}

// ResetPasswordView renders the new password form for Email.
type ResetPasswordView struct {
	Email string
	Form  Form
}

// LoginPage renders the sign-in form.
func LoginPage(view LoginView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="auth-card">`)
		m.element("h1", T(loc, "login.heading"))
		alertBlock(m, loc, view.Form.Alert)
		postForm(m, routepath.Login)
		input(m, loc, view.Form, field{name: "username", label: "login.field.username", value: view.Form.Value("username"), autocomplete: "username", required: true})
		input(m, loc, view.Form, field{name: "password", label: "login.field.password", kind: "password", autocomplete: "current-password", required: true})
		submit(m, loc, "login.submit", true)
		m.close("form")
		m.raw(`<p class="links">`)
		m.link(routepath.ForgotPassword, T(loc, "login.link.forgot"))
		m.link(routepath.Register, T(loc, "login.link.register"))
		m.raw("</p></section>")
	})
}

// RegisterPage renders the registration form.
func RegisterPage(view RegisterView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		form := view.Form
		m.raw(`<section class="auth-card">`)
		m.element("h1", T(loc, "register.heading"))
		alertBlock(m, loc, form.Alert)
		postForm(m, routepath.Register)
		input(m, loc, form, field{name: "firstName", label: "register.field.first_name", value: form.Value("firstName"), autocomplete: "given-name", required: true})
		input(m, loc, form, field{name: "lastName", label: "register.field.last_name", value: form.Value("lastName"), autocomplete: "family-name", required: true})
		input(m, loc, form, field{name: "email", label: "register.field.email", kind: "email", value: form.Value("email"), autocomplete: "email", required: true})
		input(m, loc, form, field{name: "phoneNumber", label: "register.field.phone", kind: "tel", value: form.Value("phoneNumber"), autocomplete: "tel",
			required: true, extra: []string{"pattern", `\+91[0-9]{10}`, "placeholder", "+919999999999"}})
		passwordInput(m, loc, form, "password", "register.field.password")
		input(m, loc, form, field{name: "confirmPassword", label: "register.field.confirm_password", kind: "password", autocomplete: "new-password", required: true})
		submit(m, loc, "register.submit", true)
		m.close("form")
		m.raw(`<p class="links">`)
		m.link(routepath.Login, T(loc, "register.link.login"))
		m.raw("</p></section>")
	})
}

// ForgotPasswordPage renders the reset request form.
func ForgotPasswordPage(view ForgotPasswordView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="auth-card">`)
		m.element("h1", T(loc, "forgot.heading"))
		m.element("p", T(loc, "forgot.intro"))
		alertBlock(m, loc, view.Form.Alert)
		postForm(m, routepath.ForgotPassword)
		input(m, loc, view.Form, field{name: "identifier", label: "forgot.field.identifier", value: view.Form.Value("identifier"), autocomplete: "username", required: true})
		submit(m, loc, "forgot.submit", true)
		m.close("form")
		m.raw(`<p class="links">`)
		m.link(routepath.Login, T(loc, "forgot.link.login"))
		m.raw("</p></section>")
	})
}

// ResetPasswordPage renders the new password form.
func ResetPasswordPage(view ResetPasswordView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		m.raw(`<section class="auth-card">`)
		m.element("h1", T(loc, "reset.heading"))
		m.element("p", T(loc, "reset.intro", view.Email), "class", "subject")
		alertBlock(m, loc, view.Form.Alert)
		postForm(m, routepath.WithQuery(routepath.ResetPassword, "email", view.Email))
		passwordInput(m, loc, view.Form, "newPassword", "reset.field.new_password")
		input(m, loc, view.Form, field{name: "confirmPassword", label: "reset.field.confirm_password", kind: "password", autocomplete: "new-password", required: true})
		submit(m, loc, "reset.submit", true)
		m.close("form")
		m.raw("</section>")
	})
}
