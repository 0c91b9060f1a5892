// Package weberror turns storefront errors into customer-safe copy and pages.
package weberror

import (
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/pagerender"
	"github.com/anvistudio/storefront/internal/services/storefront/templates"
)

// ShouldRenderAppError reports whether status should use the error page.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// Alert converts err into a form alert. Commerce API rejection text is kept
// verbatim; transport failures get the generic retry copy.
func Alert(err error) *templates.Alert {
	if err == nil {
		return nil
	}
	if message := errors.RejectionMessage(err); message != "" {
		return &templates.Alert{Kind: "error", Message: message}
	}
	if key := errors.LocalizationKey(err); key != "" {
		return &templates.Alert{Kind: "error", Key: key}
	}
	if errors.KindOf(err) == errors.KindUnavailable {
		return &templates.Alert{Kind: "error", Key: "error.try_again"}
	}
	return &templates.Alert{Kind: "error", Key: "error.generic"}
}

// Form builds the re-rendered state of a form whose submission failed with
// err, and the status to render it with. Field failures are shown inline.
func Form(values map[string]string, err error) (templates.Form, int) {
	form := templates.Form{Values: values}
	if fields, ok := credentials.FieldsOf(err); ok {
		form.Fields = fields
		return form, http.StatusBadRequest
	}
	form.Alert = Alert(err)
	return form, errors.HTTPStatus(err)
}

// PublicMessage resolves a customer-safe localized error message.
func PublicMessage(loc i18n.Localizer, err error) string {
	alert := Alert(err)
	if alert == nil {
		return ""
	}
	if text := strings.TrimSpace(alert.Text(loc)); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// WriteAppError renders the error page for statusCode.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, message string, resolver pagerender.RequestResolver) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}
	loc, _ := i18n.ResolveLocalizer(w, r)
	err := pagerender.WritePage(w, r, resolver, pagerender.Page{
		Title:      templates.T(loc, "error.title"),
		StatusCode: statusCode,
		Fragment:   templates.ErrorPage(templates.ErrorView{StatusCode: statusCode, Message: message}, loc),
	})
	if err != nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteError writes a page-level error response for err.
func WriteError(w http.ResponseWriter, r *http.Request, err error, resolver pagerender.RequestResolver) {
	if w == nil {
		return
	}
	statusCode := errors.HTTPStatus(err)
	loc, _ := i18n.ResolveLocalizer(w, r)
	message := PublicMessage(loc, err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, message, resolver)
		return
	}
	http.Error(w, message, statusCode)
}
