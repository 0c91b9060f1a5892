package commerceapi

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

// Customer is the profile the API returns for the signed-in customer.
type Customer struct {
	FirstName       string       `json:"firstName"`
	LastName        string       `json:"lastName"`
	PhoneNumber     string       `json:"phoneNumber"`
	PreferredSize   string       `json:"preferredSize"`
	Gender          string       `json:"gender"`
	DateOfBirth     string       `json:"dateOfBirth"`
	NewsletterOptIn bool         `json:"newsletterOptIn"`
	Account         CustomerUser `json:"user"`
}

// CustomerUser is the account nested in a customer profile.
type CustomerUser struct {
	Username string `json:"username"`
}

// Email returns the customer's current email address.
func (c Customer) Email() string {
	return strings.TrimSpace(c.Account.Username)
}

// Profile loads the signed-in customer's profile.
func (c *Client) Profile(ctx context.Context) (Customer, error) {
	resp, err := c.send(ctx, "profile", http.MethodGet, "/customer/profile", nil)
	if err != nil {
		return Customer{}, err
	}
	if resp.body.Customer == nil {
		return Customer{}, apperrors.EK(apperrors.KindNotFound, "error.not_found", "commerce api profile: customer missing")
	}
	return *resp.body.Customer, nil
}

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	Username        string `json:"username"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	PreferredSize   string `json:"preferredSize,omitempty"`
	Gender          string `json:"gender,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	NewsletterOptIn bool   `json:"newsletterOptIn"`
}

// UpdateProfile saves profile edits.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (Acknowledgement, error) {
	resp, err := c.send(ctx, "update_profile", http.MethodPut, "/customer/profile/update", in)
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

type newsletterRequest struct {
	OptIn bool `json:"optIn"`
}

// UpdateNewsletter sets the newsletter subscription.
func (c *Client) UpdateNewsletter(ctx context.Context, optIn bool) (Acknowledgement, error) {
	resp, err := c.send(ctx, "update_newsletter", http.MethodPut, "/customer/profile/update-newsletter", newsletterRequest{OptIn: optIn})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword replaces the signed-in customer's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword string, newPassword string, confirmPassword string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "change_password", http.MethodPost, "/customer/profile/change-password", changePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

type newEmailRequest struct {
	NewEmail string `json:"newEmail"`
	OTP      string `json:"otp,omitempty"`
}

// StartEmailChange sends a code to newEmail. The current email stays in
// force until FinishEmailChange succeeds.
func (c *Client) StartEmailChange(ctx context.Context, newEmail string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "change_email_initiate", http.MethodPost, "/customer/profile/change-email/initiate", newEmailRequest{NewEmail: newEmail})
	if err != nil {
		return Acknowledgement{}, err
	}
	ack := acknowledge(resp)
	if ack.Email == "" {
		ack.Email = strings.TrimSpace(newEmail)
	}
	return ack, nil
}

// FinishEmailChange commits newEmail once code is verified.
func (c *Client) FinishEmailChange(ctx context.Context, newEmail string, code string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "change_email_finalize", http.MethodPost, "/customer/profile/change-email/finalize", newEmailRequest{NewEmail: newEmail, OTP: code})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}
