// Package verification models the one-time-code step shared by registration,
// password reset and email change.
//
// A flow moves Entry -> AwaitingCode -> Submitted -> Complete. A rejected or
// unavailable confirmation returns to AwaitingCode carrying a Failure, so the
// same subject can retry without starting over.
package verification

import (
	"time"

	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// Flow identifies one verification sequence.
type Flow string

const (
	FlowRegistration  Flow = "registration"
	FlowPasswordReset Flow = "password_reset"
	FlowEmailChange   Flow = "email_change"
)

const (
	// CodeLength is the number of digits in every one-time code.
	CodeLength = 6
	// CodeLifetime is how long the commerce API honours an issued code.
	CodeLifetime = 5 * time.Minute
)

// Flows lists every known flow.
func Flows() []Flow {
	return []Flow{FlowRegistration, FlowPasswordReset, FlowEmailChange}
}

// Valid reports whether f is a known flow.
func (f Flow) Valid() bool {
	switch f {
	case FlowRegistration, FlowPasswordReset, FlowEmailChange:
		return true
	default:
		return false
	}
}

// SubjectParam is the query parameter that carries the flow subject.
func (f Flow) SubjectParam() string {
	if f == FlowEmailChange {
		return "newEmail"
	}
	return "email"
}

// EntryPath is where a customer lands when the flow has no subject.
func (f Flow) EntryPath() string {
	switch f {
	case FlowRegistration:
		return routepath.Login
	case FlowPasswordReset:
		return routepath.ForgotPassword
	case FlowEmailChange:
		return routepath.CustomerProfile
	default:
		return routepath.Root
	}
}

// CodePath is the page that collects the one-time code.
func (f Flow) CodePath() string {
	switch f {
	case FlowRegistration:
		return routepath.ConfirmOTP
	case FlowPasswordReset:
		return routepath.ResetOTP
	case FlowEmailChange:
		return routepath.CustomerVerifyNewEmail
	default:
		return routepath.Root
	}
}

// ResendPath accepts resend requests for the flow.
func (f Flow) ResendPath() string {
	switch f {
	case FlowRegistration:
		return routepath.ConfirmOTPResend
	case FlowPasswordReset:
		return routepath.ResetOTPResend
	case FlowEmailChange:
		return routepath.CustomerVerifyNewEmailResend
	default:
		return routepath.Root
	}
}

// CodeURL returns the code page for subject.
func (f Flow) CodeURL(subject string) string {
	return routepath.WithQuery(f.CodePath(), f.SubjectParam(), subject)
}
