package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

func TestResumeWithoutSubjectRestartsEveryFlow(t *testing.T) {
	t.Parallel()

	want := map[Flow]string{
		FlowRegistration:  routepath.Login,
		FlowPasswordReset: routepath.ForgotPassword,
		FlowEmailChange:   routepath.CustomerProfile,
	}
	for _, flow := range Flows() {
		for _, subject := range []string{"", "   "} {
			state := Resume(flow, subject)
			entry, ok := state.(Entry)
			if !ok {
				t.Fatalf("Resume(%s, %q) = %T, want Entry", flow, subject, state)
			}
			if entry.RedirectPath() != want[flow] {
				t.Fatalf("RedirectPath(%s) = %q, want %q", flow, entry.RedirectPath(), want[flow])
			}
		}
	}
}

func TestResumeWithSubjectAwaitsCode(t *testing.T) {
	t.Parallel()

	state := Resume(FlowPasswordReset, " user@example.com ")
	awaiting, ok := state.(AwaitingCode)
	if !ok {
		t.Fatalf("state = %T, want AwaitingCode", state)
	}
	if awaiting.Subject() != "user@example.com" {
		t.Fatalf("Subject() = %q", awaiting.Subject())
	}
	if awaiting.SubmitEnabled() {
		t.Fatal("empty buffer should not be submittable")
	}
	if awaiting.ExpiresIn() != 5*time.Minute {
		t.Fatalf("ExpiresIn() = %v, want 5m", awaiting.ExpiresIn())
	}
	if awaiting.Step() != StepAwaitingCode || awaiting.Step().String() != "awaiting_code" {
		t.Fatalf("Step() = %v", awaiting.Step())
	}
}

func TestSubmitRequiresSixDigits(t *testing.T) {
	t.Parallel()

	awaiting := Resume(FlowRegistration, "a@b.com").(AwaitingCode)
	for _, raw := range []string{"", "12345", "abcdef"} {
		if _, err := awaiting.WithCode(raw).Submit(); apperrors.KindOf(err) != apperrors.KindInvalidInput {
			t.Fatalf("Submit(%q) err = %v, want invalid input", raw, err)
		}
	}
	submitted, err := awaiting.WithCode("12 34 56 78").Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Code() != "123456" || submitted.Subject() != "a@b.com" {
		t.Fatalf("submitted = %+v", submitted)
	}
}

func TestConfirmSuccessCompletes(t *testing.T) {
	t.Parallel()

	submitted, _ := Resume(FlowEmailChange, "new@example.com").(AwaitingCode).WithCode("123456").Submit()
	var gotSubject, gotCode string
	state, err := Confirm(context.Background(), submitted, func(_ context.Context, subject, code string) (Outcome, error) {
		gotSubject, gotCode = subject, code
		return Outcome{Message: " Updated. ", RequiresLogout: true}, nil
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if gotSubject != "new@example.com" || gotCode != "123456" {
		t.Fatalf("confirmer got (%q, %q)", gotSubject, gotCode)
	}
	complete, ok := state.(Complete)
	if !ok {
		t.Fatalf("state = %T, want Complete", state)
	}
	if complete.Message() != "Updated." || !complete.RequiresLogout() {
		t.Fatalf("complete = %+v", complete)
	}
}

func TestConfirmFailuresStayAwaitingWithCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantKind    FailureKind
		wantMessage string
	}{
		{
			name:        "rejected with api message",
			err:         apperrors.E(apperrors.KindInvalidInput, "Invalid or expired OTP. Please try again."),
			wantKind:    FailureRejected,
			wantMessage: "Invalid or expired OTP. Please try again.",
		},
		{
			name:     "unavailable",
			err:      apperrors.Wrap(apperrors.KindUnavailable, "commerce api request failed", errors.New("dial tcp")),
			wantKind: FailureUnavailable,
		},
		{
			name:     "untyped",
			err:      errors.New("boom"),
			wantKind: FailureUnavailable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			submitted, _ := Resume(FlowRegistration, "a@b.com").(AwaitingCode).WithCode("654321").Submit()
			state, err := Confirm(context.Background(), submitted, func(context.Context, string, string) (Outcome, error) {
				return Outcome{}, tc.err
			})
			if err != nil {
				t.Fatalf("Confirm err = %v, want nil", err)
			}
			awaiting, ok := state.(AwaitingCode)
			if !ok {
				t.Fatalf("state = %T, want AwaitingCode", state)
			}
			if awaiting.Code() != "654321" {
				t.Fatalf("Code() = %q, want code kept", awaiting.Code())
			}
			failure, ok := awaiting.Failure()
			if !ok {
				t.Fatal("expected failure")
			}
			if failure.Kind != tc.wantKind || failure.Message != tc.wantMessage {
				t.Fatalf("failure = %+v", failure)
			}
		})
	}
}

func TestConfirmReturnsUnauthorized(t *testing.T) {
	t.Parallel()

	submitted, _ := Resume(FlowEmailChange, "new@example.com").(AwaitingCode).WithCode("123456").Submit()
	state, err := Confirm(context.Background(), submitted, func(context.Context, string, string) (Outcome, error) {
		return Outcome{}, apperrors.E(apperrors.KindUnauthorized, "session expired")
	})
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if state != nil {
		t.Fatalf("state = %T, want nil", state)
	}
}

func TestFlowRouting(t *testing.T) {
	t.Parallel()

	if got := FlowEmailChange.CodeURL("new@example.com"); got != "/customer/profile/verify-new-email?newEmail=new%40example.com" {
		t.Fatalf("CodeURL = %q", got)
	}
	if got := FlowRegistration.CodeURL("a@b.com"); got != "/confirm-otp?email=a%40b.com" {
		t.Fatalf("CodeURL = %q", got)
	}
}
