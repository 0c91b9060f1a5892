package publicauth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flash"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/publichandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/sessioncookie"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/weberror"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/storage"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// Sessions starts and ends browser sessions.
type Sessions interface {
	Begin(w http.ResponseWriter, r *http.Request, credential string, user session.User)
	Logout(w http.ResponseWriter, r *http.Request)
	LastKnownUser(ctx context.Context, credential string) (storage.CachedUser, bool)
}

type handlers struct {
	publichandler.Base
	service  service
	sessions Sessions
	handoff  *flowhandoff.Codec
}

func newHandlers(s service, base publichandler.Base, sessions Sessions, handoff *flowhandoff.Codec) handlers {
	return handlers{Base: base, service: s, sessions: sessions, handoff: handoff}
}

func (h handlers) policy() requestmeta.SchemePolicy {
	return h.RequestSchemePolicy()
}

func (h handlers) redirect(w http.ResponseWriter, r *http.Request, location string, notice *flash.Notice) {
	if notice != nil {
		flash.Write(w, r, *notice, h.policy())
	}
	httpx.WriteRedirect(w, r, location)
}

// handOff stores the flow subject for the next step. The step URL carries
// the subject as well, so a failed write only loses the signed copy.
func (h handlers) handOff(w http.ResponseWriter, r *http.Request, flow verification.Flow, subject string) {
	if h.handoff == nil {
		return
	}
	if err := h.handoff.Write(w, r, flow, subject); err != nil {
		log.Printf("flow handoff write failed flow=%s err=%v", flow, err)
	}
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.PageLocalizer(w, r)
	view := templates.HomeView{Viewer: h.ResolveRequestViewer(r)}
	h.WritePublicPage(w, r, templates.T(loc, "home.title"), http.StatusOK, templates.HomePage(view, loc))
}

func (h handlers) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	if h.IsViewerSignedIn(r) {
		httpx.WriteRedirect(w, r, routepath.CustomerDashboard)
		return
	}
	h.handoff.Expire(w, r, verification.FlowRegistration)
	form := templates.Form{}
	if username := h.lastKnownUsername(r); username != "" {
		form.Values = map[string]string{"username": username}
	}
	h.renderLogin(w, r, http.StatusOK, form)
}

// lastKnownUsername prefills sign-in after a session ended on this browser.
func (h handlers) lastKnownUsername(r *http.Request) string {
	if h.sessions == nil {
		return ""
	}
	credential, ok := sessioncookie.Read(r)
	if !ok {
		return ""
	}
	user, found := h.sessions.LastKnownUser(r.Context(), credential)
	if !found {
		return ""
	}
	return user.Email
}

func (h handlers) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse login form"))
		return
	}
	in := credentials.Login{Username: strings.TrimSpace(r.FormValue("username")), Password: r.FormValue("password")}
	values := map[string]string{"username": in.Username}

	result, err := h.service.login(h.RequestContext(r), in)
	if err != nil {
		form, status := weberror.Form(values, err)
		h.renderLogin(w, r, status, form)
		return
	}
	switch result := result.(type) {
	case LoginSucceeded:
		if h.sessions == nil {
			h.WriteError(w, r, apperrors.EK(apperrors.KindUnavailable, "error.try_again", "session store is not configured"))
			return
		}
		h.sessions.Begin(w, r, result.Credential, result.User)
		h.handoff.ClearAll(w, r)
		notice := flash.Success(result.Message, "notice.login.success")
		h.redirect(w, r, routepath.CustomerDashboard, &notice)
	case LoginVerificationRequired:
		flow := verification.FlowRegistration
		h.handOff(w, r, flow, result.Email)
		notice := flash.Info(result.Message, "notice.login.verification_required")
		h.redirect(w, r, flowhandoff.StepURL(flow.CodePath(), flow, result.Email), &notice)
	case LoginRejected:
		form := templates.Form{Values: values, Alert: &templates.Alert{Kind: "error", Key: "error.login.invalid", Message: result.Message}}
		h.renderLogin(w, r, http.StatusUnauthorized, form)
	default:
		h.WriteError(w, r, apperrors.E(apperrors.KindUnknown, "unexpected login result"))
	}
}

func (h handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, form templates.Form) {
	loc, _ := h.PageLocalizer(w, r)
	h.WritePublicPage(w, r, templates.T(loc, "login.title"), status, templates.LoginPage(templates.LoginView{Form: form}, loc))
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessioncookie.Read(r); ok && !requestmeta.HasSameOriginProofWithPolicy(r, h.policy()) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if h.sessions != nil {
		h.sessions.Logout(w, r)
	}
	h.handoff.ClearAll(w, r)
	notice := flash.NoticeSuccess("notice.logout.success")
	h.redirect(w, r, routepath.Root, &notice)
}

func (h handlers) handleRegisterGet(w http.ResponseWriter, r *http.Request) {
	if h.IsViewerSignedIn(r) {
		httpx.WriteRedirect(w, r, routepath.CustomerDashboard)
		return
	}
	h.handoff.Expire(w, r, verification.FlowRegistration)
	h.renderRegister(w, r, http.StatusOK, templates.Form{})
}

func (h handlers) handleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse registration form"))
		return
	}
	in := Registration{
		FirstName:       r.FormValue("firstName"),
		LastName:        r.FormValue("lastName"),
		Email:           r.FormValue("email"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	started, err := h.service.register(h.RequestContext(r), in)
	if err != nil {
		form, status := weberror.Form(map[string]string{
			"firstName":   strings.TrimSpace(in.FirstName),
			"lastName":    strings.TrimSpace(in.LastName),
			"email":       strings.TrimSpace(in.Email),
			"phoneNumber": strings.TrimSpace(in.PhoneNumber),
			"password":    in.Password,
		}, err)
		h.renderRegister(w, r, status, form)
		return
	}
	flow := verification.FlowRegistration
	h.handOff(w, r, flow, started.Email)
	notice := flash.Success(started.Message, "notice.registration.code_sent")
	h.redirect(w, r, flowhandoff.StepURL(flow.CodePath(), flow, started.Email), &notice)
}

func (h handlers) renderRegister(w http.ResponseWriter, r *http.Request, status int, form templates.Form) {
	loc, _ := h.PageLocalizer(w, r)
	h.WritePublicPage(w, r, templates.T(loc, "register.title"), status, templates.RegisterPage(templates.RegisterView{Form: form}, loc))
}

// resume resolves the code step for flow. It redirects to the flow's entry
// and reports false when no subject can be resolved.
func (h handlers) resume(w http.ResponseWriter, r *http.Request, flow verification.Flow) (verification.AwaitingCode, bool) {
	resolution, _ := h.handoff.Reconcile(w, r, flow)
	switch state := verification.Resume(flow, resolution.Subject).(type) {
	case verification.AwaitingCode:
		return state, true
	case verification.Entry:
		httpx.WriteRedirect(w, r, state.RedirectPath())
	default:
		httpx.WriteRedirect(w, r, flow.EntryPath())
	}
	return verification.AwaitingCode{}, false
}

func (h handlers) handleCodeGet(flow verification.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := h.resume(w, r, flow)
		if !ok {
			return
		}
		h.renderCode(w, r, http.StatusOK, templates.CodeView{State: state})
	}
}

func (h handlers) handleCodePost(flow verification.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := h.resume(w, r, flow)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse code form"))
			return
		}
		state = state.WithCode(r.FormValue(templates.CodeField))
		submitted, err := state.Submit()
		if err != nil {
			h.renderCode(w, r, http.StatusBadRequest, templates.CodeView{State: state, Alert: weberror.Alert(err)})
			return
		}
		next, err := verification.Confirm(h.RequestContext(r), submitted, h.service.confirmer(flow))
		if err != nil {
			h.handoff.Clear(w, r, flow)
			httpx.WriteRedirect(w, r, flow.EntryPath())
			return
		}
		switch next := next.(type) {
		case verification.Complete:
			h.complete(w, r, next)
		case verification.AwaitingCode:
			status := http.StatusBadRequest
			if failure, _ := next.Failure(); failure.Kind == verification.FailureUnavailable {
				status = http.StatusServiceUnavailable
			}
			h.renderCode(w, r, status, templates.CodeView{State: next})
		default:
			httpx.WriteRedirect(w, r, flow.EntryPath())
		}
	}
}

func (h handlers) complete(w http.ResponseWriter, r *http.Request, done verification.Complete) {
	switch done.Flow() {
	case verification.FlowRegistration:
		h.handoff.Clear(w, r, done.Flow())
		notice := flash.Success(done.Message(), "notice.registration.complete")
		h.redirect(w, r, routepath.Login, &notice)
	case verification.FlowPasswordReset:
		h.handOff(w, r, done.Flow(), done.Subject())
		notice := flash.Success(done.Message(), "notice.reset.code_verified")
		h.redirect(w, r, flowhandoff.StepURL(routepath.ResetPassword, done.Flow(), done.Subject()), &notice)
	default:
		httpx.WriteRedirect(w, r, done.Flow().EntryPath())
	}
}

func (h handlers) renderCode(w http.ResponseWriter, r *http.Request, status int, view templates.CodeView) {
	loc, _ := h.PageLocalizer(w, r)
	title := templates.T(loc, "code."+string(view.State.Flow())+".title")
	h.WritePublicPage(w, r, title, status, templates.CodePage(view, loc))
}

func (h handlers) handleResend(flow verification.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := h.resume(w, r, flow)
		if !ok {
			return
		}
		message, err := h.service.resend(h.RequestContext(r), flow, state.Subject())
		if err != nil {
			h.renderCode(w, r, apperrors.HTTPStatus(err), templates.CodeView{State: state, Alert: weberror.Alert(err)})
			return
		}
		h.handOff(w, r, flow, state.Subject())
		notice := flash.Info(message, "notice.code.resent")
		h.redirect(w, r, flow.CodeURL(state.Subject()), &notice)
	}
}

func (h handlers) handleForgotPasswordGet(w http.ResponseWriter, r *http.Request) {
	h.handoff.Expire(w, r, verification.FlowPasswordReset)
	h.renderForgotPassword(w, r, http.StatusOK, templates.Form{})
}

func (h handlers) handleForgotPasswordPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse forgot password form"))
		return
	}
	identifier := strings.TrimSpace(r.FormValue("identifier"))
	started, err := h.service.startPasswordReset(h.RequestContext(r), identifier)
	if err != nil {
		form, status := weberror.Form(map[string]string{"identifier": identifier}, err)
		h.renderForgotPassword(w, r, status, form)
		return
	}
	flow := verification.FlowPasswordReset
	h.handOff(w, r, flow, started.Email)
	notice := flash.Success(started.Message, "notice.reset.code_sent")
	h.redirect(w, r, flowhandoff.StepURL(flow.CodePath(), flow, started.Email), &notice)
}

func (h handlers) renderForgotPassword(w http.ResponseWriter, r *http.Request, status int, form templates.Form) {
	loc, _ := h.PageLocalizer(w, r)
	h.WritePublicPage(w, r, templates.T(loc, "forgot.title"), status, templates.ForgotPasswordPage(templates.ForgotPasswordView{Form: form}, loc))
}

// resetSubject resolves the account whose password is being reset,
// redirecting to the start of the flow when there is none.
func (h handlers) resetSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	resolution, ok := h.handoff.Reconcile(w, r, verification.FlowPasswordReset)
	if !ok {
		httpx.WriteRedirect(w, r, routepath.ForgotPassword)
		return "", false
	}
	return resolution.Subject, true
}

func (h handlers) handleResetPasswordGet(w http.ResponseWriter, r *http.Request) {
	email, ok := h.resetSubject(w, r)
	if !ok {
		return
	}
	h.renderResetPassword(w, r, http.StatusOK, email, templates.Form{})
}

func (h handlers) handleResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	email, ok := h.resetSubject(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "failed to parse reset password form"))
		return
	}
	in := credentials.PasswordReset{NewPassword: r.FormValue("newPassword"), ConfirmPassword: r.FormValue("confirmPassword")}
	message, err := h.service.resetPassword(h.RequestContext(r), email, in)
	if err != nil {
		form, status := weberror.Form(map[string]string{"newPassword": in.NewPassword}, err)
		h.renderResetPassword(w, r, status, email, form)
		return
	}
	h.handoff.Clear(w, r, verification.FlowPasswordReset)
	notice := flash.Success(message, "notice.reset.complete")
	h.redirect(w, r, routepath.Login, &notice)
}

func (h handlers) renderResetPassword(w http.ResponseWriter, r *http.Request, status int, email string, form templates.Form) {
	loc, _ := h.PageLocalizer(w, r)
	view := templates.ResetPasswordView{Email: email, Form: form}
	h.WritePublicPage(w, r, templates.T(loc, "reset.title"), status, templates.ResetPasswordPage(view, loc))
}
