package account

import (
	"context"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

type service struct {
	gateway AccountGateway
}

func newService(gateway AccountGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) profile(ctx context.Context) (Profile, error) {
	return s.gateway.Profile(ctx)
}

// updateProfile saves details on top of the stored profile so the email and
// newsletter choice are never changed by this form.
func (s service) updateProfile(ctx context.Context, details credentials.Profile) (string, error) {
	details = trimProfile(details)
	if err := credentials.ValidateProfile(details).Err(); err != nil {
		return "", err
	}
	current, err := s.gateway.Profile(ctx)
	if err != nil {
		return "", err
	}
	current.FirstName = details.FirstName
	current.LastName = details.LastName
	current.PhoneNumber = details.PhoneNumber
	current.PreferredSize = details.PreferredSize
	current.Gender = details.Gender
	current.DateOfBirth = details.DateOfBirth
	return s.gateway.UpdateProfile(ctx, current)
}

func trimProfile(in credentials.Profile) credentials.Profile {
	return credentials.Profile{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		PreferredSize: strings.TrimSpace(in.PreferredSize),
		Gender:        strings.TrimSpace(in.Gender),
		DateOfBirth:   strings.TrimSpace(in.DateOfBirth),
	}
}

func (s service) updateNewsletter(ctx context.Context, raw string) (string, error) {
	var optIn bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1":
		optIn = true
	case "false", "off", "0":
	default:
		return "", apperrors.EK(apperrors.KindInvalidInput, "error.request_rejected", "newsletter choice must be a boolean")
	}
	return s.gateway.UpdateNewsletter(ctx, optIn)
}

func (s service) changePassword(ctx context.Context, in credentials.PasswordChange) (PasswordChanged, error) {
	if err := credentials.ValidatePasswordChange(in).Err(); err != nil {
		return PasswordChanged{}, err
	}
	return s.gateway.ChangePassword(ctx, in)
}

// startEmailChange requests a code for newEmail. An address equal to
// currentEmail is refused before any commerce call.
func (s service) startEmailChange(ctx context.Context, currentEmail string, newEmail string) (EmailChangeStarted, error) {
	newEmail = strings.TrimSpace(newEmail)
	if err := credentials.ValidateEmailChange(currentEmail, newEmail).Err(); err != nil {
		return EmailChangeStarted{}, err
	}
	started, err := s.gateway.StartEmailChange(ctx, newEmail)
	if err != nil {
		return EmailChangeStarted{}, err
	}
	if strings.TrimSpace(started.NewEmail) == "" {
		started.NewEmail = newEmail
	}
	return started, nil
}

// resendEmailChange asks for a fresh code. The commerce API has no resend
// for email change, so the change is initiated again.
func (s service) resendEmailChange(ctx context.Context, newEmail string) (string, error) {
	started, err := s.gateway.StartEmailChange(ctx, strings.TrimSpace(newEmail))
	if err != nil {
		return "", err
	}
	return started.Message, nil
}

func (s service) emailChangeConfirmer() verification.Confirmer {
	return s.gateway.FinishEmailChange
}
