package commerceapi

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

// OTP types accepted by the resend endpoint.
const (
	OTPTypeRegistration  = "REGISTRATION"
	OTPTypePasswordReset = "PASSWORD_RESET"
)

// User is the account summary the API reports for a session.
type User struct {
	Email string
	Role  string
}

// Acknowledgement is a successful reply that carries a message and, for
// flow-starting calls, the identifier the API resolved.
type Acknowledgement struct {
	Message        string
	Email          string
	RequiresLogout bool
}

func acknowledge(resp response) Acknowledgement {
	email := strings.TrimSpace(resp.body.Email)
	if email == "" {
		email = strings.TrimSpace(resp.body.NewEmail)
	}
	return Acknowledgement{
		Message:        strings.TrimSpace(resp.body.Message),
		Email:          email,
		RequiresLogout: resp.body.RequiresLogout,
	}
}

// Registration is the account creation request.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates an unverified account and sends its confirmation code.
func (c *Client) Register(ctx context.Context, in Registration) (Acknowledgement, error) {
	resp, err := c.send(ctx, "register", http.MethodPost, "/auth/register", in)
	if err != nil {
		return Acknowledgement{}, err
	}
	ack := acknowledge(resp)
	if ack.Email == "" {
		ack.Email = strings.TrimSpace(in.Email)
	}
	return ack, nil
}

type emailCode struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ConfirmRegistration verifies the registration code for email.
func (c *Client) ConfirmRegistration(ctx context.Context, email string, code string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "confirm_otp", http.MethodPost, "/auth/confirm-otp", emailCode{Email: email, OTP: code})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

type resendRequest struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// ResendCode asks the API to send a fresh code of otpType to email.
func (c *Client) ResendCode(ctx context.Context, email string, otpType string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "resend_otp", http.MethodPost, "/auth/resend-otp", resendRequest{Email: email, Type: otpType})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

// LoginReply is the decoded login outcome. Exactly one of Authenticated,
// RequiresVerification or a rejection (neither set) describes it.
type LoginReply struct {
	Authenticated        bool
	Credential           string
	User                 *User
	RequiresVerification bool
	Email                string
	Message              string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates username and password. Credential rejections and the
// unverified-account signal are reported in the reply, not as errors.
func (c *Client) Login(ctx context.Context, username string, password string) (LoginReply, error) {
	resp, err := c.exchange(ctx, "login", http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return LoginReply{}, err
	}
	message := strings.TrimSpace(resp.body.Message)
	switch {
	case resp.succeeded():
		credential := c.sessionCredential(resp.cookies)
		if credential == "" {
			return LoginReply{}, apperrors.EK(apperrors.KindUnavailable, "error.try_again", "commerce api login: response carried no session cookie")
		}
		return LoginReply{Authenticated: true, Credential: credential, User: resp.body.User.toUser(), Message: message}, nil
	case resp.body.RequiresVerification:
		email := strings.TrimSpace(resp.body.Email)
		if email == "" {
			email = strings.TrimSpace(username)
		}
		return LoginReply{RequiresVerification: true, Email: email, Message: message}, nil
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusBadRequest || (resp.status >= 200 && resp.status < 300):
		return LoginReply{Message: message}, nil
	default:
		return LoginReply{}, classify("login", resp)
	}
}

func (c *Client) sessionCredential(cookies []*http.Cookie) string {
	for _, cookie := range cookies {
		if cookie == nil || cookie.Name != c.sessionCookie {
			continue
		}
		if cookie.MaxAge < 0 {
			continue
		}
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	return ""
}

// Logout ends the API session for the credential in ctx.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, "logout", http.MethodPost, "/auth/logout", nil)
	return err
}

// SessionStatus reports whether the credential in ctx is signed in.
type SessionStatus struct {
	Authenticated bool
	User          *User
}

// CheckSession asks the API who owns the credential in ctx.
func (c *Client) CheckSession(ctx context.Context) (SessionStatus, error) {
	resp, err := c.exchange(ctx, "check_session", http.MethodGet, "/auth/check", nil)
	if err != nil {
		return SessionStatus{}, err
	}
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return SessionStatus{}, nil
	}
	if resp.status < 200 || resp.status >= 300 {
		return SessionStatus{}, classify("check_session", resp)
	}
	user := resp.body.User.toUser()
	if !resp.body.Authenticated || user == nil {
		return SessionStatus{}, nil
	}
	return SessionStatus{Authenticated: true, User: user}, nil
}

type identifierRequest struct {
	Identifier string `json:"identifier"`
}

// StartPasswordReset sends a reset code for identifier, which may be an
// email or phone number. The reply's Email is the account's email address.
func (c *Client) StartPasswordReset(ctx context.Context, identifier string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", identifierRequest{Identifier: identifier})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

// VerifyResetCode checks the password reset code for email.
func (c *Client) VerifyResetCode(ctx context.Context, email string, code string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "reset_otp", http.MethodPost, "/auth/reset-otp", emailCode{Email: email, OTP: code})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword commits a new password for email.
func (c *Client) ResetPassword(ctx context.Context, email string, newPassword string, confirmPassword string) (Acknowledgement, error) {
	resp, err := c.send(ctx, "reset_password", http.MethodPost, "/auth/reset-password", resetPasswordRequest{
		Email:           email,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return Acknowledgement{}, err
	}
	return acknowledge(resp), nil
}
