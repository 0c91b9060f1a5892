package publicauth

import (
	"context"
	"strings"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

type service struct {
	gateway AuthGateway
}

func newService(gateway AuthGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) login(ctx context.Context, in credentials.Login) (LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := credentials.ValidateLogin(in).Err(); err != nil {
		return nil, err
	}
	result, err := s.gateway.Login(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	if required, ok := result.(LoginVerificationRequired); ok && strings.TrimSpace(required.Email) == "" {
		required.Email = in.Username
		return required, nil
	}
	return result, nil
}

func (s service) register(ctx context.Context, in Registration) (Started, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := credentials.ValidateRegistration(credentials.Registration(in)).Err(); err != nil {
		return Started{}, err
	}
	started, err := s.gateway.Register(ctx, in)
	if err != nil {
		return Started{}, err
	}
	if strings.TrimSpace(started.Email) == "" {
		started.Email = in.Email
	}
	return started, nil
}

func (s service) startPasswordReset(ctx context.Context, identifier string) (Started, error) {
	identifier = strings.TrimSpace(identifier)
	if err := credentials.ValidateIdentifier(identifier).Err(); err != nil {
		return Started{}, err
	}
	started, err := s.gateway.StartPasswordReset(ctx, identifier)
	if err != nil {
		return Started{}, err
	}
	started.Email = strings.TrimSpace(started.Email)
	if started.Email == "" {
		if credentials.ValidateEmail(identifier) != "" {
			return Started{}, apperrors.EK(apperrors.KindUnavailable, "error.try_again", "forgot password reply carried no email")
		}
		started.Email = identifier
	}
	return started, nil
}

// confirmer returns the code check for flow.
func (s service) confirmer(flow verification.Flow) verification.Confirmer {
	switch flow {
	case verification.FlowRegistration:
		return s.gateway.ConfirmRegistration
	case verification.FlowPasswordReset:
		return s.gateway.VerifyResetCode
	default:
		return nil
	}
}

func (s service) resend(ctx context.Context, flow verification.Flow, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.EK(apperrors.KindInvalidInput, "error.email.required", "resend requires an email")
	}
	return s.gateway.ResendCode(ctx, flow, email)
}

func (s service) resetPassword(ctx context.Context, email string, in credentials.PasswordReset) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.EK(apperrors.KindInvalidInput, "error.email.required", "reset requires an email")
	}
	if err := credentials.ValidatePasswordReset(in).Err(); err != nil {
		return "", err
	}
	return s.gateway.ResetPassword(ctx, email, in.NewPassword, in.ConfirmPassword)
}
