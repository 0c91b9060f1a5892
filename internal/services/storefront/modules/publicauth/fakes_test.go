package publicauth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/publichandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/storage"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// fakeGateway implements AuthGateway with canned replies and call recording.
type fakeGateway struct {
	loginResult LoginResult
	loginErr    error
	registerErr error
	confirmErr  error
	verifyErr   error
	resendErr   error
	forgotEmail string
	forgotErr   error
	resetErr    error

	calls           int
	lastUsername    string
	lastRegistered  Registration
	lastConfirmed   string
	lastCode        string
	lastResendFlow  verification.Flow
	lastForgot      string
	lastResetEmail  string
	lastNewPassword string
}

func (f *fakeGateway) Login(_ context.Context, username string, _ string) (LoginResult, error) {
	f.calls++
	f.lastUsername = username
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResult == nil {
		return LoginSucceeded{Credential: "cred-1", User: session.User{Email: username, Role: "CUSTOMER"}, Message: "Welcome back"}, nil
	}
	return f.loginResult, nil
}

func (f *fakeGateway) Register(_ context.Context, in Registration) (Started, error) {
	f.calls++
	f.lastRegistered = in
	if f.registerErr != nil {
		return Started{}, f.registerErr
	}
	return Started{Email: in.Email, Message: "OTP sent to your email"}, nil
}

func (f *fakeGateway) ConfirmRegistration(_ context.Context, email string, code string) (verification.Outcome, error) {
	f.calls++
	f.lastConfirmed, f.lastCode = email, code
	if f.confirmErr != nil {
		return verification.Outcome{}, f.confirmErr
	}
	return verification.Outcome{Message: "Account verified"}, nil
}

func (f *fakeGateway) ResendCode(_ context.Context, flow verification.Flow, email string) (string, error) {
	f.calls++
	f.lastResendFlow, f.lastConfirmed = flow, email
	if f.resendErr != nil {
		return "", f.resendErr
	}
	return "A new code is on its way", nil
}

func (f *fakeGateway) StartPasswordReset(_ context.Context, identifier string) (Started, error) {
	f.calls++
	f.lastForgot = identifier
	if f.forgotErr != nil {
		return Started{}, f.forgotErr
	}
	return Started{Email: f.forgotEmail, Message: "Reset code sent"}, nil
}

func (f *fakeGateway) VerifyResetCode(_ context.Context, email string, code string) (verification.Outcome, error) {
	f.calls++
	f.lastConfirmed, f.lastCode = email, code
	if f.verifyErr != nil {
		return verification.Outcome{}, f.verifyErr
	}
	return verification.Outcome{Message: "Code verified"}, nil
}

func (f *fakeGateway) ResetPassword(_ context.Context, email string, newPassword string, _ string) (string, error) {
	f.calls++
	f.lastResetEmail, f.lastNewPassword = email, newPassword
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "Password updated", nil
}

// fakeSessions records session starts and sign-outs.
type fakeSessions struct {
	begun      []string
	user       session.User
	logouts    int
	lastKnown  map[string]storage.CachedUser
	lastLookup string
}

func (f *fakeSessions) Begin(_ http.ResponseWriter, _ *http.Request, credential string, user session.User) {
	f.begun = append(f.begun, credential)
	f.user = user
}

func (f *fakeSessions) Logout(http.ResponseWriter, *http.Request) {
	f.logouts++
}

func (f *fakeSessions) LastKnownUser(_ context.Context, credential string) (storage.CachedUser, bool) {
	f.lastLookup = credential
	user, ok := f.lastKnown[credential]
	return user, ok
}

var testHandoffKey = []byte("publicauth-handoff-key-0123456789")

func newTestHandoff(t *testing.T) *flowhandoff.Codec {
	t.Helper()
	codec, err := flowhandoff.NewCodec(testHandoffKey, 15*time.Minute, requestmeta.SchemePolicy{})
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return codec
}

// testModule mounts a publicauth handler for a signed-out viewer.
func testModule(t *testing.T, gateway AuthGateway, sessions *fakeSessions) http.Handler {
	t.Helper()
	return testModuleWithViewer(t, gateway, sessions, module.Viewer{})
}

func testModuleWithViewer(t *testing.T, gateway AuthGateway, sessions *fakeSessions, viewer module.Viewer) http.Handler {
	t.Helper()
	base := publichandler.NewBase(publichandler.WithResolveViewer(func(*http.Request) module.Viewer { return viewer }))
	m := New(WithGateway(gateway), WithBase(base), WithSessions(sessions), WithHandoff(newTestHandoff(t)))
	mount, err := m.Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return mount.Handler
}
