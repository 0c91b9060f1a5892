package publicauth

import (
	"net/http"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

const getOrPost = http.MethodGet + ", " + http.MethodPost

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" /{$}", h.handleHome)

	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginPost)
	mux.HandleFunc(routepath.Login, httpx.MethodNotAllowed(getOrPost))

	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(routepath.Logout, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.Register, h.handleRegisterGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.Register, h.handleRegisterPost)
	mux.HandleFunc(routepath.Register, httpx.MethodNotAllowed(getOrPost))

	for _, flow := range []verification.Flow{verification.FlowRegistration, verification.FlowPasswordReset} {
		mux.HandleFunc(http.MethodGet+" "+flow.CodePath(), h.handleCodeGet(flow))
		mux.HandleFunc(http.MethodPost+" "+flow.CodePath(), h.handleCodePost(flow))
		mux.HandleFunc(flow.CodePath(), httpx.MethodNotAllowed(getOrPost))
		mux.HandleFunc(http.MethodPost+" "+flow.ResendPath(), h.handleResend(flow))
		mux.HandleFunc(flow.ResendPath(), httpx.MethodNotAllowed(http.MethodPost))
	}

	mux.HandleFunc(http.MethodGet+" "+routepath.ForgotPassword, h.handleForgotPasswordGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.ForgotPassword, h.handleForgotPasswordPost)
	mux.HandleFunc(routepath.ForgotPassword, httpx.MethodNotAllowed(getOrPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.ResetPassword, h.handleResetPasswordGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.ResetPassword, h.handleResetPasswordPost)
	mux.HandleFunc(routepath.ResetPassword, httpx.MethodNotAllowed(getOrPost))

	mux.HandleFunc(routepath.Root, h.WriteNotFound)
}
