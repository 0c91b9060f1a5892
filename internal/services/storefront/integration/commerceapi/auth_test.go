package commerceapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

func TestLoginCapturesSessionCookie(t *testing.T) {
	t.Parallel()

	client, recorded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: DefaultSessionCookie, Value: "fresh-session", Path: "/api"})
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Login successful","user":{"email":"a@b.com","role":"CUSTOMER"}}`)
	})

	reply, err := client.Login(context.Background(), "a@b.com", "Valid123")
	require.NoError(t, err)
	assert.True(t, reply.Authenticated)
	assert.Equal(t, "fresh-session", reply.Credential)
	require.NotNil(t, reply.User)
	assert.Equal(t, "a@b.com", reply.User.Email)
	assert.Equal(t, map[string]any{"username": "a@b.com", "password": "Valid123"}, recorded.all()[0].Payload)
}

func TestLoginWithoutSessionCookieIsUnavailable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"user":{"email":"a@b.com"}}`)
	})
	_, err := client.Login(context.Background(), "a@b.com", "Valid123")
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestLoginUnverifiedIsSignalNotError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Your account is not verified. Please check your email for the OTP.","requiresVerification":true,"email":"a@b.com"}`)
	})
	reply, err := client.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.False(t, reply.Authenticated)
	assert.True(t, reply.RequiresVerification)
	assert.Equal(t, "a@b.com", reply.Email)
	assert.Equal(t, "Your account is not verified. Please check your email for the OTP.", reply.Message)
}

func TestLoginRejectedCarriesMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid username or password"}`)
	})
	reply, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.NoError(t, err)
	assert.False(t, reply.Authenticated)
	assert.False(t, reply.RequiresVerification)
	assert.Equal(t, "Invalid username or password", reply.Message)
}

func TestLoginServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"message":"An error occurred during login. Please try again."}`)
	})
	_, err := client.Login(context.Background(), "a@b.com", "x")
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestCheckSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
	}{
		{name: "signed in", status: http.StatusOK, body: `{"authenticated":true,"user":{"email":"a@b.com","role":"CUSTOMER"}}`, wantAuth: true},
		{name: "anonymous", status: http.StatusOK, body: `{"authenticated":false}`},
		{name: "authenticated without user", status: http.StatusOK, body: `{"authenticated":true}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: ``},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			status, err := client.CheckSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.wantAuth, status.Authenticated)
		})
	}
}

func TestStartPasswordResetReturnsResolvedEmail(t *testing.T) {
	t.Parallel()

	client, recorded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"message":"An OTP has been sent to your registered email.","email":"user@example.com"}`)
	})
	ack, err := client.StartPasswordReset(context.Background(), "+919999999999")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", ack.Email)
	assert.Equal(t, "/api/auth/forgot-password", recorded.all()[0].Path)
	assert.Equal(t, map[string]any{"identifier": "+919999999999"}, recorded.all()[0].Payload)
}

func TestCodeEndpointsSendEmailAndOTP(t *testing.T) {
	t.Parallel()

	client, recorded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"message":"ok"}`)
	})
	_, err := client.ConfirmRegistration(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)
	_, err = client.VerifyResetCode(context.Background(), "user@example.com", "654321")
	require.NoError(t, err)
	_, err = client.ResendCode(context.Background(), "a@b.com", OTPTypeRegistration)
	require.NoError(t, err)
	_, err = client.ResetPassword(context.Background(), "user@example.com", "Valid123", "Valid123")
	require.NoError(t, err)

	require.Len(t, recorded.all(), 4)
	assert.Equal(t, "/api/auth/confirm-otp", recorded.all()[0].Path)
	assert.Equal(t, map[string]any{"email": "a@b.com", "otp": "123456"}, recorded.all()[0].Payload)
	assert.Equal(t, "/api/auth/reset-otp", recorded.all()[1].Path)
	assert.Equal(t, map[string]any{"email": "a@b.com", "type": "REGISTRATION"}, recorded.all()[2].Payload)
	assert.Equal(t, map[string]any{"email": "user@example.com", "newPassword": "Valid123", "confirmPassword": "Valid123"}, recorded.all()[3].Payload)
}

func TestRegisterFallsBackToSubmittedEmail(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Registration successful! A 6-digit OTP has been sent to your email."}`)
	})
	ack, err := client.Register(context.Background(), Registration{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", ack.Email)
	assert.Equal(t, "Registration successful! A 6-digit OTP has been sent to your email.", ack.Message)
}
