package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// CodeField is the form field carrying the one-time code.
const CodeField = "otp"

// CodeView renders the code entry step for one flow.
type CodeView struct {
	State verification.AwaitingCode
	// Alert is a notice unrelated to the confirmation result, such as a
	// resend acknowledgement.
	Alert *Alert
}

// CodePage renders the one-time code form.
func CodePage(view CodeView, loc Localizer) templ.Component {
	return render(func(_ context.Context, m *markup) {
		state := view.State
		flow := state.Flow()
		prefix := "code." + string(flow)

		m.open("section", "class", "auth-card", "data-flow", string(flow))
		m.element("h1", T(loc, prefix+".heading"))
		m.element("p", T(loc, "code.sent_to", state.Subject()), "class", "subject")
		m.element("p", T(loc, "code.expiry", int(state.ExpiresIn().Minutes())), "class", "hint")
		if failure, failed := state.Failure(); failed {
			alertBlock(m, loc, failureAlert(failure))
		} else {
			alertBlock(m, loc, view.Alert)
		}

		postForm(m, flow.CodeURL(state.Subject()), "data-code-form", "")
		m.raw(`<div class="field">`)
		m.element("label", T(loc, "code.field"), "for", "field-otp")
		m.raw("<input")
		m.attr("id", "field-otp")
		m.attr("name", CodeField)
		m.attr("type", "text")
		m.attr("inputmode", "numeric")
		m.attr("autocomplete", "one-time-code")
		m.attr("maxlength", itoa(verification.CodeLength))
		m.attr("pattern", "[0-9]{"+itoa(verification.CodeLength)+"}")
		m.attr("value", state.Code())
		m.attr("data-code-input", "")
		m.flag("required", true)
		m.raw(">")
		m.raw("</div>")
		submit(m, loc, prefix+".submit", state.SubmitEnabled())
		m.close("form")

		postForm(m, routepath.WithQuery(flow.ResendPath(), flow.SubjectParam(), state.Subject()), "class", "resend")
		m.raw(`<button type="submit" class="link" data-busy-disable>`)
		m.text(T(loc, "code.resend"))
		m.raw("</button>")
		m.close("form")

		m.raw(`<p class="links">`)
		m.link(flow.EntryPath(), T(loc, prefix+".back"))
		m.raw("</p></section>")
	})
}

func failureAlert(failure verification.Failure) *Alert {
	if failure.Kind == verification.FailureUnavailable {
		return &Alert{Kind: "error", Key: "error.try_again"}
	}
	return &Alert{Kind: "error", Key: "error.otp.invalid", Message: failure.Message}
}
