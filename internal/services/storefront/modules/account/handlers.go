package account

import (
	"log"
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	"github.com/anvistudio/storefront/internal/services/storefront/module"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flash"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/modulehandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/pagerender"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/weberror"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// signedOutRefreshSeconds is how long a signed-out confirmation stays up
// before the page moves on to sign-in.
const signedOutRefreshSeconds = 5

const emailChange = verification.FlowEmailChange

type handlers struct {
	modulehandler.Base
	service service
	handoff *flowhandoff.Codec
}

func newHandlers(s service, base modulehandler.Base, handoff *flowhandoff.Codec) handlers {
	return handlers{Base: base, service: s, handoff: handoff}
}

func (h handlers) badForm(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("account form parse failed path=%s err=%v", r.URL.Path, err)
	h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse form"))
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.PageLocalizer(w, r)
	viewer := h.ResolveRequestViewer(r)
	view := templates.DashboardView{DisplayName: viewer.DisplayName, Email: viewer.Email}
	h.WritePage(w, r, templates.T(loc, "dashboard.title"), http.StatusOK, templates.DashboardPage(view, loc))
}

// profileForms holds the per-form state of one profile page render. Forms
// left nil are filled from the stored profile.
type profileForms struct {
	details     *templates.Form
	password    templates.Form
	emailChange templates.Form
}

func (h handlers) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	h.handoff.Expire(w, r, emailChange)
	h.renderProfile(w, r, http.StatusOK, profileForms{})
}

// renderProfile loads the stored profile and renders the profile page with
// forms on top of it.
func (h handlers) renderProfile(w http.ResponseWriter, r *http.Request, status int, forms profileForms) {
	profile, err := h.service.profile(h.RequestContext(r))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	details := templates.Form{Values: detailValues(profile.Details())}
	if forms.details != nil {
		details = *forms.details
	}
	view := templates.ProfileView{
		Email:           profile.Email,
		NewsletterOptIn: profile.NewsletterOptIn,
		Profile:         details,
		Password:        forms.password,
		EmailChange:     forms.emailChange,
		Sizes:           credentials.PreferredSizes,
		Genders:         credentials.Genders,
	}
	loc, _ := h.PageLocalizer(w, r)
	h.WritePage(w, r, templates.T(loc, "profile.title"), status, templates.ProfilePage(view, loc))
}

func detailValues(p credentials.Profile) map[string]string {
	return map[string]string{
		"firstName":     p.FirstName,
		"lastName":      p.LastName,
		"phoneNumber":   p.PhoneNumber,
		"preferredSize": p.PreferredSize,
		"gender":        p.Gender,
		"dateOfBirth":   p.DateOfBirth,
	}
}

func (h handlers) handleProfilePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	details := credentials.Profile{
		FirstName:     r.FormValue("firstName"),
		LastName:      r.FormValue("lastName"),
		PhoneNumber:   r.FormValue("phoneNumber"),
		PreferredSize: r.FormValue("preferredSize"),
		Gender:        r.FormValue("gender"),
		DateOfBirth:   r.FormValue("dateOfBirth"),
	}
	message, err := h.service.updateProfile(h.RequestContext(r), details)
	if err != nil {
		if h.HandleUnauthorized(w, r, err) {
			return
		}
		form, status := weberror.Form(detailValues(trimProfile(details)), err)
		h.renderProfile(w, r, status, profileForms{details: &form})
		return
	}
	notice := flash.Success(message, "notice.profile.updated")
	h.Redirect(w, r, routepath.CustomerProfile, &notice)
}

func (h handlers) handleNewsletterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	message, err := h.service.updateNewsletter(h.RequestContext(r), r.FormValue("optIn"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	notice := flash.Success(message, "notice.newsletter.updated")
	h.Redirect(w, r, routepath.CustomerProfile+"#newsletter", &notice)
}

func (h handlers) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	in := credentials.PasswordChange{
		CurrentPassword: r.FormValue("currentPassword"),
		NewPassword:     r.FormValue("newPassword"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	changed, err := h.service.changePassword(h.RequestContext(r), in)
	if err != nil {
		if h.HandleUnauthorized(w, r, err) {
			return
		}
		form, status := weberror.Form(map[string]string{"newPassword": in.NewPassword}, err)
		h.renderProfile(w, r, status, profileForms{password: form})
		return
	}
	if changed.RequiresLogout {
		h.signedOut(w, r, "confirmation.password_changed", changed.Message, "notice.password.changed")
		return
	}
	notice := flash.Success(changed.Message, "notice.password.changed")
	h.Redirect(w, r, routepath.CustomerProfile, &notice)
}

// signedOut ends the local session and renders a confirmation that moves on
// to sign-in. The confirmation and the cleared session share one response.
func (h handlers) signedOut(w http.ResponseWriter, r *http.Request, headingKey string, message string, fallbackKey string) {
	h.EndSession(w, r)
	h.handoff.ClearAll(w, r)
	loc, _ := h.PageLocalizer(w, r)
	view := templates.ConfirmationView{
		HeadingKey:   headingKey,
		Message:      strings.TrimSpace(message),
		MessageKey:   fallbackKey,
		ContinuePath: routepath.Login,
		ContinueKey:  "confirmation.continue",
	}
	h.Render(w, r, pagerender.Page{
		Title:          templates.T(loc, headingKey),
		StatusCode:     http.StatusOK,
		Fragment:       templates.ConfirmationPage(view, loc),
		Viewer:         &module.Viewer{},
		RefreshTo:      routepath.Login,
		RefreshSeconds: signedOutRefreshSeconds,
	})
}

func (h handlers) handleChangeEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	ctx := h.RequestContext(r)
	newEmail := strings.TrimSpace(r.FormValue("newEmail"))
	profile, err := h.service.profile(ctx)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	started, err := h.service.startEmailChange(ctx, profile.Email, newEmail)
	if err != nil {
		if h.HandleUnauthorized(w, r, err) {
			return
		}
		form, status := weberror.Form(map[string]string{"newEmail": newEmail}, err)
		h.renderProfile(w, r, status, profileForms{emailChange: form})
		return
	}
	if err := h.handoff.Write(w, r, emailChange, started.NewEmail); err != nil {
		log.Printf("flow handoff write failed flow=%s err=%v", emailChange, err)
	}
	notice := flash.Success(started.Message, "notice.email.code_sent")
	h.Redirect(w, r, emailChange.CodeURL(started.NewEmail), &notice)
}

// resume resolves the pending new email. Without one the customer goes back
// to the profile page.
func (h handlers) resume(w http.ResponseWriter, r *http.Request) (verification.AwaitingCode, bool) {
	resolution, _ := h.handoff.Reconcile(w, r, emailChange)
	state, ok := verification.Resume(emailChange, resolution.Subject).(verification.AwaitingCode)
	if !ok {
		httpx.WriteRedirect(w, r, emailChange.EntryPath())
		return verification.AwaitingCode{}, false
	}
	return state, true
}

func (h handlers) handleVerifyNewEmailGet(w http.ResponseWriter, r *http.Request) {
	state, ok := h.resume(w, r)
	if !ok {
		return
	}
	h.renderCode(w, r, http.StatusOK, templates.CodeView{State: state})
}

func (h handlers) handleVerifyNewEmailPost(w http.ResponseWriter, r *http.Request) {
	state, ok := h.resume(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	state = state.WithCode(r.FormValue(templates.CodeField))
	submitted, err := state.Submit()
	if err != nil {
		h.renderCode(w, r, http.StatusBadRequest, templates.CodeView{State: state, Alert: weberror.Alert(err)})
		return
	}
	next, err := verification.Confirm(h.RequestContext(r), submitted, h.service.emailChangeConfirmer())
	if err != nil {
		h.handoff.Clear(w, r, emailChange)
		h.WriteError(w, r, err)
		return
	}
	switch next := next.(type) {
	case verification.Complete:
		if next.RequiresLogout() {
			h.signedOut(w, r, "confirmation.email_changed", next.Message(), "notice.email.changed")
			return
		}
		h.handoff.Clear(w, r, emailChange)
		notice := flash.Success(next.Message(), "notice.email.changed")
		h.Redirect(w, r, routepath.CustomerProfile, &notice)
	case verification.AwaitingCode:
		status := http.StatusBadRequest
		if failure, _ := next.Failure(); failure.Kind == verification.FailureUnavailable {
			status = http.StatusServiceUnavailable
		}
		h.renderCode(w, r, status, templates.CodeView{State: next})
	default:
		httpx.WriteRedirect(w, r, emailChange.EntryPath())
	}
}

func (h handlers) handleVerifyNewEmailResend(w http.ResponseWriter, r *http.Request) {
	state, ok := h.resume(w, r)
	if !ok {
		return
	}
	message, err := h.service.resendEmailChange(h.RequestContext(r), state.Subject())
	if err != nil {
		if h.HandleUnauthorized(w, r, err) {
			return
		}
		h.renderCode(w, r, apperrors.HTTPStatus(err), templates.CodeView{State: state, Alert: weberror.Alert(err)})
		return
	}
	if err := h.handoff.Write(w, r, emailChange, state.Subject()); err != nil {
		log.Printf("flow handoff write failed flow=%s err=%v", emailChange, err)
	}
	notice := flash.Info(message, "notice.code.resent")
	h.Redirect(w, r, emailChange.CodeURL(state.Subject()), &notice)
}

func (h handlers) renderCode(w http.ResponseWriter, r *http.Request, status int, view templates.CodeView) {
	loc, _ := h.PageLocalizer(w, r)
	h.WritePage(w, r, templates.T(loc, "code.email_change.title"), status, templates.CodePage(view, loc))
}
