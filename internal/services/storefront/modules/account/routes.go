package account

import (
	"net/http"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.CustomerPrefix+"{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteRedirect(w, r, routepath.CustomerDashboard)
	})
	mux.HandleFunc(http.MethodGet+" "+routepath.CustomerDashboard, h.handleDashboard)
	mux.HandleFunc(routepath.CustomerDashboard, httpx.MethodNotAllowed(http.MethodGet))

	mux.HandleFunc(http.MethodGet+" "+routepath.CustomerProfile, h.handleProfileGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerProfile, h.handleProfilePost)
	mux.HandleFunc(routepath.CustomerProfile, httpx.MethodNotAllowed(http.MethodGet+", "+http.MethodPost))

	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerProfileNewsletter, h.handleNewsletterPost)
	mux.HandleFunc(routepath.CustomerProfileNewsletter, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerChangePassword, h.handleChangePassword)
	mux.HandleFunc(routepath.CustomerChangePassword, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerChangeEmail, h.handleChangeEmail)
	mux.HandleFunc(routepath.CustomerChangeEmail, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.CustomerVerifyNewEmail, h.handleVerifyNewEmailGet)
	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerVerifyNewEmail, h.handleVerifyNewEmailPost)
	mux.HandleFunc(routepath.CustomerVerifyNewEmail, httpx.MethodNotAllowed(http.MethodGet+", "+http.MethodPost))
	mux.HandleFunc(http.MethodPost+" "+routepath.CustomerVerifyNewEmailResend, h.handleVerifyNewEmailResend)
	mux.HandleFunc(routepath.CustomerVerifyNewEmailResend, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(routepath.CustomerPrefix, h.WriteNotFound)
}
