package publicauth

import (
	"context"
	"fmt"

	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// AuthClient is the commerce API client surface used by the API gateway.
type AuthClient interface {
	Login(ctx context.Context, username string, password string) (commerceapi.LoginReply, error)
	Register(ctx context.Context, in commerceapi.Registration) (commerceapi.Acknowledgement, error)
	ConfirmRegistration(ctx context.Context, email string, code string) (commerceapi.Acknowledgement, error)
	ResendCode(ctx context.Context, email string, otpType string) (commerceapi.Acknowledgement, error)
	StartPasswordReset(ctx context.Context, identifier string) (commerceapi.Acknowledgement, error)
	VerifyResetCode(ctx context.Context, email string, code string) (commerceapi.Acknowledgement, error)
	ResetPassword(ctx context.Context, email string, newPassword string, confirmPassword string) (commerceapi.Acknowledgement, error)
}

type apiGateway struct {
	client AuthClient
}

// NewAPIGateway returns an AuthGateway backed by the commerce API. A nil
// client yields the unavailable gateway.
func NewAPIGateway(client AuthClient) AuthGateway {
	if client == nil {
		return unavailableGateway{}
	}
	return apiGateway{client: client}
}

func (g apiGateway) Login(ctx context.Context, username string, password string) (LoginResult, error) {
	reply, err := g.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	switch {
	case reply.Authenticated:
		user := session.User{Email: username}
		if reply.User != nil {
			user = session.User{Email: reply.User.Email, Role: reply.User.Role}
		}
		return LoginSucceeded{Credential: reply.Credential, User: user, Message: reply.Message}, nil
	case reply.RequiresVerification:
		return LoginVerificationRequired{Email: reply.Email, Message: reply.Message}, nil
	default:
		return LoginRejected{Message: reply.Message}, nil
	}
}

func (g apiGateway) Register(ctx context.Context, in Registration) (Started, error) {
	ack, err := g.client.Register(ctx, commerceapi.Registration{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		PhoneNumber:     in.PhoneNumber,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	})
	if err != nil {
		return Started{}, err
	}
	return Started{Email: ack.Email, Message: ack.Message}, nil
}

func (g apiGateway) ConfirmRegistration(ctx context.Context, email string, code string) (verification.Outcome, error) {
	ack, err := g.client.ConfirmRegistration(ctx, email, code)
	if err != nil {
		return verification.Outcome{}, err
	}
	return verification.Outcome{Message: ack.Message}, nil
}

func (g apiGateway) ResendCode(ctx context.Context, flow verification.Flow, email string) (string, error) {
	var otpType string
	switch flow {
	case verification.FlowRegistration:
		otpType = commerceapi.OTPTypeRegistration
	case verification.FlowPasswordReset:
		otpType = commerceapi.OTPTypePasswordReset
	default:
		return "", apperrors.E(apperrors.KindInvalidInput, fmt.Sprintf("flow %q has no resend endpoint", flow))
	}
	ack, err := g.client.ResendCode(ctx, email, otpType)
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (g apiGateway) StartPasswordReset(ctx context.Context, identifier string) (Started, error) {
	ack, err := g.client.StartPasswordReset(ctx, identifier)
	if err != nil {
		return Started{}, err
	}
	return Started{Email: ack.Email, Message: ack.Message}, nil
}

func (g apiGateway) VerifyResetCode(ctx context.Context, email string, code string) (verification.Outcome, error) {
	ack, err := g.client.VerifyResetCode(ctx, email, code)
	if err != nil {
		return verification.Outcome{}, err
	}
	return verification.Outcome{Message: ack.Message}, nil
}

func (g apiGateway) ResetPassword(ctx context.Context, email string, newPassword string, confirmPassword string) (string, error) {
	ack, err := g.client.ResetPassword(ctx, email, newPassword, confirmPassword)
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}
