// Package routepath stores canonical HTTP paths for storefront modules.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root             = "/"
	Health           = "/up"
	StaticPrefix     = "/static/"
	Login            = "/login"
	Logout           = "/logout"
	Register         = "/register"
	ConfirmOTP       = "/confirm-otp"
	ConfirmOTPResend = "/confirm-otp/resend"
	ForgotPassword   = "/forgot-password"
	ResetOTP         = "/reset-otp"
	ResetOTPResend   = "/reset-otp/resend"
	ResetPassword    = "/reset-password"

	CustomerPrefix               = "/customer/"
	CustomerDashboard            = "/customer/dashboard"
	CustomerProfile              = "/customer/profile"
	CustomerProfileNewsletter    = "/customer/profile/newsletter"
	CustomerChangePassword       = "/customer/profile/change-password"
	CustomerChangeEmail          = "/customer/profile/change-email"
	CustomerVerifyNewEmail       = "/customer/profile/verify-new-email"
	CustomerVerifyNewEmailResend = "/customer/profile/verify-new-email/resend"
)

// WithQuery appends one query parameter to path. Empty values return path unchanged.
func WithQuery(path string, key string, value string) string {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return path
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + url.Values{key: []string{value}}.Encode()
}

// IsLocal reports whether target is a same-site absolute path safe to redirect to.
func IsLocal(target string) bool {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}
