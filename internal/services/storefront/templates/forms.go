package templates

import (
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
)

// Form holds submitted values, per-field error keys, and a form-level alert.
type Form struct {
	Values map[string]string
	Fields map[string]string
	Alert  *Alert
}

// Value returns the submitted value for name.
func (f Form) Value(name string) string {
	if f.Values == nil {
		return ""
	}
	return f.Values[name]
}

// FieldError returns the error key recorded for name.
func (f Form) FieldError(name string) string {
	if f.Fields == nil {
		return ""
	}
	return f.Fields[name]
}

type field struct {
	name         string
	label        string
	kind         string
	value        string
	autocomplete string
	required     bool
	extra        []string
}

// input renders a labelled input with its error, keyed by field name.
func input(m *markup, loc Localizer, form Form, f field) {
	id := "field-" + f.name
	errKey := form.FieldError(f.name)
	m.raw(`<div class="field">`)
	m.element("label", T(loc, f.label), "for", id)
	m.raw("<input")
	m.attr("id", id)
	m.attr("name", f.name)
	kind := f.kind
	if kind == "" {
		kind = "text"
	}
	m.attr("type", kind)
	if kind != "password" && f.value != "" {
		m.attr("value", f.value)
	}
	if f.autocomplete != "" {
		m.attr("autocomplete", f.autocomplete)
	}
	m.flag("required", f.required)
	if errKey != "" {
		m.attr("aria-invalid", "true")
		m.attr("aria-describedby", id+"-error")
	}
	for i := 0; i+1 < len(f.extra); i += 2 {
		m.attr(f.extra[i], f.extra[i+1])
	}
	m.raw(">")
	if errKey != "" {
		m.element("p", T(loc, errKey), "id", id+"-error", "class", "field-error")
	}
	m.raw("</div>")
}

// passwordInput renders a new-password field with a strength meter. A
// submitted password is never echoed; it only seeds the meter on re-render.
func passwordInput(m *markup, loc Localizer, form Form, name string, label string) {
	input(m, loc, form, field{
		name:         name,
		label:        label,
		kind:         "password",
		autocomplete: "new-password",
		required:     true,
		extra:        []string{"minlength", itoa(credentials.MinPasswordLength), "data-strength-source", name + "-strength"},
	})
	m.open("meter", "id", name+"-strength", "class", "strength", "min", "0",
		"max", itoa(credentials.MaxStrength),
		"value", itoa(credentials.PasswordStrength(form.Value(name))),
		"aria-label", T(loc, "form.password.strength"))
	m.close("meter")
	m.element("p", T(loc, "form.password.hint"), "class", "hint")
}

func hidden(m *markup, name string, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	m.raw("<input")
	m.attr("type", "hidden")
	m.attr("name", name)
	m.attr("value", value)
	m.raw(">")
}

func submit(m *markup, loc Localizer, label string, enabled bool) {
	m.raw("<button")
	m.attr("type", "submit")
	m.attr("data-busy-disable", "")
	m.flag("disabled", !enabled)
	m.raw(">")
	m.text(T(loc, label))
	m.raw("</button>")
}

func postForm(m *markup, action string, attrs ...string) {
	m.open("form", append([]string{"method", "post", "action", action, "hx-disabled-elt", "find button"}, attrs...)...)
}
