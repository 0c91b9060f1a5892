package account

import (
	"context"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// Profile is the signed-in customer's profile.
type Profile struct {
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     string
	PreferredSize   string
	Gender          string
	DateOfBirth     string
	NewsletterOptIn bool
}

// Details returns the editable fields of p.
func (p Profile) Details() credentials.Profile {
	return credentials.Profile{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PhoneNumber:   p.PhoneNumber,
		PreferredSize: p.PreferredSize,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
	}
}

// PasswordChanged reports the commerce API reply to a password change.
type PasswordChanged struct {
	Message        string
	RequiresLogout bool
}

// EmailChangeStarted reports where the email-change code was sent.
type EmailChangeStarted struct {
	NewEmail string
	Message  string
}

// AccountGateway performs signed-in account operations against the commerce
// API. The credential travels in ctx.
type AccountGateway interface {
	Profile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) (string, error)
	UpdateNewsletter(ctx context.Context, optIn bool) (string, error)
	ChangePassword(ctx context.Context, in credentials.PasswordChange) (PasswordChanged, error)
	StartEmailChange(ctx context.Context, newEmail string) (EmailChangeStarted, error)
	FinishEmailChange(ctx context.Context, newEmail string, code string) (verification.Outcome, error)
}

type unavailableGateway struct{}

func unavailable() error {
	return apperrors.EK(apperrors.KindUnavailable, "error.try_again", "account gateway is not configured")
}

func (unavailableGateway) Profile(context.Context) (Profile, error) {
	return Profile{}, unavailable()
}

func (unavailableGateway) UpdateProfile(context.Context, Profile) (string, error) {
	return "", unavailable()
}

func (unavailableGateway) UpdateNewsletter(context.Context, bool) (string, error) {
	return "", unavailable()
}

func (unavailableGateway) ChangePassword(context.Context, credentials.PasswordChange) (PasswordChanged, error) {
	return PasswordChanged{}, unavailable()
}

func (unavailableGateway) StartEmailChange(context.Context, string) (EmailChangeStarted, error) {
	return EmailChangeStarted{}, unavailable()
}

func (unavailableGateway) FinishEmailChange(context.Context, string, string) (verification.Outcome, error) {
	return verification.Outcome{}, unavailable()
}
