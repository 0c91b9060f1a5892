package publicauth

import (
	"context"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// LoginResult is the outcome of a sign-in attempt: LoginSucceeded,
// LoginVerificationRequired or LoginRejected.
type LoginResult interface {
	isLoginResult()
}

// LoginSucceeded carries the new API credential and account.
type LoginSucceeded struct {
	Credential string
	User       session.User
	Message    string
}

// LoginVerificationRequired means the account exists but its email is not
// confirmed yet.
type LoginVerificationRequired struct {
	Email   string
	Message string
}

// LoginRejected means the credentials were refused.
type LoginRejected struct {
	Message string
}

func (LoginSucceeded) isLoginResult()            {}
func (LoginVerificationRequired) isLoginResult() {}
func (LoginRejected) isLoginResult()             {}

// Registration is a new account request.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

// Started reports the identifier a verification flow was started for.
type Started struct {
	Email   string
	Message string
}

// AuthGateway performs public account operations against the commerce API.
type AuthGateway interface {
	Login(ctx context.Context, username string, password string) (LoginResult, error)
	Register(ctx context.Context, in Registration) (Started, error)
	ConfirmRegistration(ctx context.Context, email string, code string) (verification.Outcome, error)
	ResendCode(ctx context.Context, flow verification.Flow, email string) (string, error)
	StartPasswordReset(ctx context.Context, identifier string) (Started, error)
	VerifyResetCode(ctx context.Context, email string, code string) (verification.Outcome, error)
	ResetPassword(ctx context.Context, email string, newPassword string, confirmPassword string) (string, error)
}

type unavailableGateway struct{}

func errUnavailable() error {
	return apperrors.EK(apperrors.KindUnavailable, "error.try_again", "commerce api is not configured")
}

func (unavailableGateway) Login(context.Context, string, string) (LoginResult, error) {
	return nil, errUnavailable()
}

func (unavailableGateway) Register(context.Context, Registration) (Started, error) {
	return Started{}, errUnavailable()
}

func (unavailableGateway) ConfirmRegistration(context.Context, string, string) (verification.Outcome, error) {
	return verification.Outcome{}, errUnavailable()
}

func (unavailableGateway) ResendCode(context.Context, verification.Flow, string) (string, error) {
	return "", errUnavailable()
}

func (unavailableGateway) StartPasswordReset(context.Context, string) (Started, error) {
	return Started{}, errUnavailable()
}

func (unavailableGateway) VerifyResetCode(context.Context, string, string) (verification.Outcome, error) {
	return verification.Outcome{}, errUnavailable()
}

func (unavailableGateway) ResetPassword(context.Context, string, string, string) (string, error) {
	return "", errUnavailable()
}
