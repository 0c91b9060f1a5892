// Package sessioncookie centralizes storefront session cookie behavior.
//
// The cookie value is the commerce API session credential. It is opaque to
// the storefront and only ever forwarded back to the API.
package sessioncookie

import (
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
)

// Name is the canonical storefront session cookie name.
const Name = "sf_session"

// Read returns the trimmed session credential when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write stores credential as the session cookie.
func Write(w http.ResponseWriter, r *http.Request, credential string, policy requestmeta.SchemePolicy) {
	credential = strings.TrimSpace(credential)
	if w == nil || credential == "" {
		return
	}
	http.SetCookie(w, cookie(r, credential, 0, policy))
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, cookie(r, "", -1, policy))
}

func cookie(r *http.Request, value string, maxAge int, policy requestmeta.SchemePolicy) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, policy),
		SameSite: http.SameSiteLaxMode,
	}
}
