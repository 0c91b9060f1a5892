package account

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anvistudio/storefront/internal/services/storefront/credentials"
	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/modulehandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

// fakeGateway implements AccountGateway with a stored profile, error
// injection and call recording.
type fakeGateway struct {
	profile         Profile
	profileErr      error
	updateErr       error
	newsletterErr   error
	passwordReply   PasswordChanged
	passwordErr     error
	startErr        error
	finishOutcome   verification.Outcome
	finishErr       error
	updates         []Profile
	newsletter      []bool
	passwordChanges []credentials.PasswordChange
	startedEmails   []string
	finished        []string
}

func newPopulatedFakeGateway() *fakeGateway {
	return &fakeGateway{profile: Profile{
		Email:           "asha@example.com",
		FirstName:       "Asha",
		LastName:        "Rao",
		PhoneNumber:     "+919876543210",
		PreferredSize:   "M",
		Gender:          "FEMALE",
		DateOfBirth:     "1994-03-02",
		NewsletterOptIn: true,
	}}
}

func (f *fakeGateway) Profile(context.Context) (Profile, error) {
	if f.profileErr != nil {
		return Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeGateway) UpdateProfile(_ context.Context, profile Profile) (string, error) {
	f.updates = append(f.updates, profile)
	if f.updateErr != nil {
		return "", f.updateErr
	}
	return "Profile updated", nil
}

func (f *fakeGateway) UpdateNewsletter(_ context.Context, optIn bool) (string, error) {
	f.newsletter = append(f.newsletter, optIn)
	if f.newsletterErr != nil {
		return "", f.newsletterErr
	}
	return "Preferences saved", nil
}

func (f *fakeGateway) ChangePassword(_ context.Context, in credentials.PasswordChange) (PasswordChanged, error) {
	f.passwordChanges = append(f.passwordChanges, in)
	if f.passwordErr != nil {
		return PasswordChanged{}, f.passwordErr
	}
	return f.passwordReply, nil
}

func (f *fakeGateway) StartEmailChange(_ context.Context, newEmail string) (EmailChangeStarted, error) {
	f.startedEmails = append(f.startedEmails, newEmail)
	if f.startErr != nil {
		return EmailChangeStarted{}, f.startErr
	}
	return EmailChangeStarted{Message: "Code sent to " + newEmail}, nil
}

func (f *fakeGateway) FinishEmailChange(_ context.Context, newEmail string, code string) (verification.Outcome, error) {
	f.finished = append(f.finished, newEmail+"/"+code)
	if f.finishErr != nil {
		return verification.Outcome{}, f.finishErr
	}
	return f.finishOutcome, nil
}

// invalidations counts local session clears.
type invalidations struct {
	count int
}

func (i *invalidations) invalidate(http.ResponseWriter, *http.Request) {
	i.count++
}

var testHandoffKey = []byte("account-handoff-key-0123456789abcd")

func accountTestBase(cleared *invalidations) modulehandler.Base {
	return modulehandler.NewBase(func(*http.Request) module.Viewer {
		return module.Viewer{SignedIn: true, DisplayName: "asha", Email: "asha@example.com"}
	}, requestmeta.SchemePolicy{}, cleared.invalidate)
}

func testModule(t *testing.T, gateway AccountGateway, cleared *invalidations) http.Handler {
	t.Helper()
	codec, err := flowhandoff.NewCodec(testHandoffKey, 15*time.Minute, requestmeta.SchemePolicy{})
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	m := New(WithGateway(gateway), WithBase(accountTestBase(cleared)), WithHandoff(codec))
	mount, err := m.Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return mount.Handler
}
