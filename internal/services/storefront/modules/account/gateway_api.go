package account

import (
	"context"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// CustomerClient is the part of the commerce API client the account module
// uses.
type CustomerClient interface {
	Profile(ctx context.Context) (commerceapi.Customer, error)
	UpdateProfile(ctx context.Context, in commerceapi.ProfileUpdate) (commerceapi.Acknowledgement, error)
	UpdateNewsletter(ctx context.Context, optIn bool) (commerceapi.Acknowledgement, error)
	ChangePassword(ctx context.Context, currentPassword string, newPassword string, confirmPassword string) (commerceapi.Acknowledgement, error)
	StartEmailChange(ctx context.Context, newEmail string) (commerceapi.Acknowledgement, error)
	FinishEmailChange(ctx context.Context, newEmail string, code string) (commerceapi.Acknowledgement, error)
}

type apiGateway struct {
	client CustomerClient
}

// NewAPIGateway adapts client to AccountGateway. A nil client yields a
// gateway that always reports unavailable.
func NewAPIGateway(client CustomerClient) AccountGateway {
	if client == nil {
		return unavailableGateway{}
	}
	return apiGateway{client: client}
}

func (g apiGateway) Profile(ctx context.Context) (Profile, error) {
	customer, err := g.client.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Email:           customer.Email(),
		FirstName:       customer.FirstName,
		LastName:        customer.LastName,
		PhoneNumber:     customer.PhoneNumber,
		PreferredSize:   customer.PreferredSize,
		Gender:          customer.Gender,
		DateOfBirth:     customer.DateOfBirth,
		NewsletterOptIn: customer.NewsletterOptIn,
	}, nil
}

func (g apiGateway) UpdateProfile(ctx context.Context, profile Profile) (string, error) {
	ack, err := g.client.UpdateProfile(ctx, commerceapi.ProfileUpdate{
		Username:        profile.Email,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		PhoneNumber:     profile.PhoneNumber,
		PreferredSize:   profile.PreferredSize,
		Gender:          profile.Gender,
		DateOfBirth:     profile.DateOfBirth,
		NewsletterOptIn: profile.NewsletterOptIn,
	})
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (g apiGateway) UpdateNewsletter(ctx context.Context, optIn bool) (string, error) {
	ack, err := g.client.UpdateNewsletter(ctx, optIn)
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (g apiGateway) ChangePassword(ctx context.Context, in credentials.PasswordChange) (PasswordChanged, error) {
	ack, err := g.client.ChangePassword(ctx, in.CurrentPassword, in.NewPassword, in.ConfirmPassword)
	if err != nil {
		return PasswordChanged{}, err
	}
	return PasswordChanged{Message: ack.Message, RequiresLogout: ack.RequiresLogout}, nil
}

func (g apiGateway) StartEmailChange(ctx context.Context, newEmail string) (EmailChangeStarted, error) {
	ack, err := g.client.StartEmailChange(ctx, newEmail)
	if err != nil {
		return EmailChangeStarted{}, err
	}
	return EmailChangeStarted{NewEmail: ack.Email, Message: ack.Message}, nil
}

func (g apiGateway) FinishEmailChange(ctx context.Context, newEmail string, code string) (verification.Outcome, error) {
	ack, err := g.client.FinishEmailChange(ctx, newEmail, code)
	if err != nil {
		return verification.Outcome{}, err
	}
	return verification.Outcome{Message: ack.Message, RequiresLogout: ack.RequiresLogout}, nil
}
