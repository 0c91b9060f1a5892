package verification

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

// Step names a verification state.
type Step int

const (
	StepEntry Step = iota
	StepAwaitingCode
	StepSubmitted
	StepComplete
)

// String returns the step name used in logs.
func (s Step) String() string {
	switch s {
	case StepEntry:
		return "entry"
	case StepAwaitingCode:
		return "awaiting_code"
	case StepSubmitted:
		return "submitted"
	case StepComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is one verification state value. The concrete types are Entry,
// AwaitingCode, Submitted and Complete.
type State interface {
	Flow() Flow
	Step() Step
	isState()
}

// Entry means the flow has no subject and must restart at its entry page.
type Entry struct {
	flow Flow
}

func (e Entry) Flow() Flow { return e.flow }
func (Entry) Step() Step   { return StepEntry }
func (Entry) isState()     {}

// RedirectPath is where the customer goes to restart the flow.
func (e Entry) RedirectPath() string { return e.flow.EntryPath() }

// FailureKind separates code rejections from transport trouble.
type FailureKind int

const (
	// FailureRejected means the commerce API refused the code.
	FailureRejected FailureKind = iota + 1
	// FailureUnavailable means the code could not be checked at all.
	FailureUnavailable
)

// Failure describes why the last submission did not complete. Message is
// the commerce API's own text when it sent one.
type Failure struct {
	Kind    FailureKind
	Message string
}

// AwaitingCode collects the code for a resolved subject.
type AwaitingCode struct {
	flow    Flow
	subject string
	code    string
	failure *Failure
}

func (a AwaitingCode) Flow() Flow { return a.flow }
func (AwaitingCode) Step() Step   { return StepAwaitingCode }
func (AwaitingCode) isState()     {}

// Subject returns the identifier the code was sent for.
func (a AwaitingCode) Subject() string { return a.subject }

// Code returns the sanitized code buffer.
func (a AwaitingCode) Code() string { return a.code }

// Failure returns the previous submission failure, if any.
func (a AwaitingCode) Failure() (Failure, bool) {
	if a.failure == nil {
		return Failure{}, false
	}
	return *a.failure, true
}

// ExpiresIn is the code lifetime shown next to the input.
func (AwaitingCode) ExpiresIn() time.Duration { return CodeLifetime }

// SubmitEnabled reports whether the code buffer may be submitted.
func (a AwaitingCode) SubmitEnabled() bool { return CodeReady(a.code) }

// WithCode replaces the code buffer with the sanitized form of raw.
func (a AwaitingCode) WithCode(raw string) AwaitingCode {
	a.code = SanitizeCode(raw)
	return a
}

// Submit moves to Submitted when the buffer holds a complete code.
func (a AwaitingCode) Submit() (Submitted, error) {
	if !a.SubmitEnabled() {
		return Submitted{}, apperrors.EK(apperrors.KindInvalidInput, "error.otp.incomplete", "verification code must be 6 digits")
	}
	return Submitted{flow: a.flow, subject: a.subject, code: a.code}, nil
}

// Submitted holds a complete code that is being confirmed.
type Submitted struct {
	flow    Flow
	subject string
	code    string
}

func (s Submitted) Flow() Flow { return s.flow }
func (Submitted) Step() Step   { return StepSubmitted }
func (Submitted) isState()     {}

// Subject returns the identifier being confirmed.
func (s Submitted) Subject() string { return s.subject }

// Code returns the submitted code.
func (s Submitted) Code() string { return s.code }

// Complete records a successful confirmation.
type Complete struct {
	flow           Flow
	subject        string
	message        string
	requiresLogout bool
}

func (c Complete) Flow() Flow { return c.flow }
func (Complete) Step() Step   { return StepComplete }
func (Complete) isState()     {}

// Subject returns the confirmed identifier.
func (c Complete) Subject() string { return c.subject }

// Message returns the commerce API confirmation text, if any.
func (c Complete) Message() string { return c.message }

// RequiresLogout reports whether the confirmed change ended the session.
func (c Complete) RequiresLogout() bool { return c.requiresLogout }

// Resume rebuilds the state for a code page from its resolved subject. An
// empty subject yields Entry so the code form is never shown without one.
func Resume(flow Flow, subject string) State {
	subject = strings.TrimSpace(subject)
	if subject == "" || !flow.Valid() {
		return Entry{flow: flow}
	}
	return AwaitingCode{flow: flow, subject: subject}
}

// Outcome is what a successful confirmation reports back.
type Outcome struct {
	Message        string
	RequiresLogout bool
}

// Confirmer checks a code against the commerce API.
type Confirmer func(ctx context.Context, subject string, code string) (Outcome, error)

// Confirm runs confirm for s. Rejections and transport failures return to
// AwaitingCode with the code intact. Only unauthorized errors are returned,
// because they end the page rather than the attempt.
func Confirm(ctx context.Context, s Submitted, confirm Confirmer) (State, error) {
	retry := AwaitingCode{flow: s.flow, subject: s.subject, code: s.code}
	if confirm == nil {
		retry.failure = &Failure{Kind: FailureUnavailable}
		return retry, nil
	}
	outcome, err := confirm(ctx, s.subject, s.code)
	if err == nil {
		return Complete{
			flow:           s.flow,
			subject:        s.subject,
			message:        strings.TrimSpace(outcome.Message),
			requiresLogout: outcome.RequiresLogout,
		}, nil
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthorized:
		return nil, err
	case apperrors.KindInvalidInput, apperrors.KindConflict, apperrors.KindNotFound:
		retry.failure = &Failure{Kind: FailureRejected, Message: apperrors.RejectionMessage(err)}
	default:
		retry.failure = &Failure{Kind: FailureUnavailable}
	}
	return retry, nil
}
