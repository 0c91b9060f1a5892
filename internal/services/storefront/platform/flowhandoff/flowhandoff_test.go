package flowhandoff

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	codec, err := NewCodec(testKey, 15*time.Minute, requestmeta.SchemePolicy{}, WithClock(now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func handoffCookie(t *testing.T, rec *httptest.ResponseRecorder, flow verification.Flow) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CookieName(flow) {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", CookieName(flow))
	return nil
}

func TestNewCodecValidatesInputs(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec([]byte("short"), time.Minute, requestmeta.SchemePolicy{}); err == nil {
		t.Fatal("expected short key error")
	}
	if _, err := NewCodec(testKey, 0, requestmeta.SchemePolicy{}); err == nil {
		t.Fatal("expected ttl error")
	}
}

func writeResetCookie(t *testing.T, codec *Codec, subject string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/forgot-password", nil)
	if err := codec.Write(rec, req, verification.FlowPasswordReset, subject); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return handoffCookie(t, rec, verification.FlowPasswordReset)
}

func TestWriteThenResolveUsesCookie(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	cookie := writeResetCookie(t, codec, "user@example.com")
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.MaxAge != 900 {
		t.Fatalf("cookie = %+v", cookie)
	}

	for _, target := range []string{"/reset-otp", "/reset-otp?email=USER%40Example.com"} {
		next := httptest.NewRequest(http.MethodGet, target, nil)
		next.AddCookie(cookie)
		got, ok := codec.Resolve(next, verification.FlowPasswordReset)
		if !ok {
			t.Fatalf("Resolve(%q): expected resolution", target)
		}
		if got.Subject != "user@example.com" || got.Source != SourceHandoff || got.Superseded {
			t.Fatalf("Resolve(%q) = %+v", target, got)
		}
	}
}

func TestResolvePrefersDifferentQuerySubject(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	cookie := writeResetCookie(t, codec, "first@example.com")

	req := httptest.NewRequest(http.MethodGet, "/reset-otp?email=second%40example.com", nil)
	req.AddCookie(cookie)
	got, ok := codec.Resolve(req, verification.FlowPasswordReset)
	if !ok {
		t.Fatal("expected resolution")
	}
	want := Resolution{Subject: "second@example.com", Source: SourceQuery, Superseded: true}
	if got != want {
		t.Fatalf("resolution = %+v, want %+v", got, want)
	}
}

func TestReconcileExpiresSupersededCookie(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	cookie := writeResetCookie(t, codec, "first@example.com")

	req := httptest.NewRequest(http.MethodGet, "/reset-otp?email=second%40example.com", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	got, ok := codec.Reconcile(rec, req, verification.FlowPasswordReset)
	if !ok || got.Subject != "second@example.com" {
		t.Fatalf("Reconcile = %+v, %v", got, ok)
	}
	if cleared := handoffCookie(t, rec, verification.FlowPasswordReset); cleared.MaxAge >= 0 {
		t.Fatalf("cookie = %+v, want expired", cleared)
	}

	same := httptest.NewRequest(http.MethodGet, "/reset-otp?email=first%40example.com", nil)
	same.AddCookie(cookie)
	rec = httptest.NewRecorder()
	if _, ok := codec.Reconcile(rec, same, verification.FlowPasswordReset); !ok {
		t.Fatal("expected resolution")
	}
	if n := len(rec.Result().Cookies()); n != 0 {
		t.Fatalf("cookies = %d, want 0", n)
	}
}

func TestExpireOnlyTouchesPresentCookie(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	rec := httptest.NewRecorder()
	codec.Expire(rec, httptest.NewRequest(http.MethodGet, "/forgot-password", nil), verification.FlowPasswordReset)
	if n := len(rec.Result().Cookies()); n != 0 {
		t.Fatalf("cookies = %d, want 0", n)
	}

	req := httptest.NewRequest(http.MethodGet, "/forgot-password", nil)
	req.AddCookie(writeResetCookie(t, codec, "user@example.com"))
	rec = httptest.NewRecorder()
	codec.Expire(rec, req, verification.FlowPasswordReset)
	if cleared := handoffCookie(t, rec, verification.FlowPasswordReset); cleared.MaxAge >= 0 {
		t.Fatalf("cookie = %+v, want expired", cleared)
	}
}

func TestResolveFallsBackToQuery(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodGet, "/confirm-otp?email=a%40b.com", nil)
	got, ok := codec.Resolve(req, verification.FlowRegistration)
	if !ok || got.Subject != "a@b.com" || got.Source != SourceQuery {
		t.Fatalf("resolution = %+v, %v", got, ok)
	}

	var nilCodec *Codec
	if got, ok := nilCodec.Resolve(req, verification.FlowRegistration); !ok || got.Subject != "a@b.com" {
		t.Fatalf("nil codec resolution = %+v, %v", got, ok)
	}
}

func TestResolveUsesFlowSubjectParam(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodGet, "/customer/profile/verify-new-email?email=a%40b.com", nil)
	if _, ok := codec.Resolve(req, verification.FlowEmailChange); ok {
		t.Fatal("email change must read newEmail, not email")
	}
	req = httptest.NewRequest(http.MethodGet, "/customer/profile/verify-new-email?newEmail=new%40b.com", nil)
	if got, ok := codec.Resolve(req, verification.FlowEmailChange); !ok || got.Subject != "new@b.com" {
		t.Fatalf("resolution = %+v, %v", got, ok)
	}
}

func TestResolveMissingEverywhere(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	for _, target := range []string{"/reset-otp", "/reset-otp?email=", "/reset-otp?email=" + strings.Repeat("a", 300)} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if got, ok := codec.Resolve(req, verification.FlowPasswordReset); ok {
			t.Fatalf("Resolve(%q) = %+v, want none", target, got)
		}
	}
}

func TestVerifyRejectsOtherFlowsExpiredAndTampered(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := issuedAt
	codec := newTestCodec(t, func() time.Time { return now })
	token, err := codec.Issue(verification.FlowRegistration, "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if subject, err := codec.Verify(token, verification.FlowRegistration); err != nil || subject != "a@b.com" {
		t.Fatalf("Verify = %q, %v", subject, err)
	}
	if _, err := codec.Verify(token, verification.FlowPasswordReset); err == nil {
		t.Fatal("expected audience mismatch")
	}
	if _, err := codec.Verify(token+"x", verification.FlowRegistration); err == nil {
		t.Fatal("expected signature failure")
	}
	other, _ := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Minute, requestmeta.SchemePolicy{})
	if _, err := other.Verify(token, verification.FlowRegistration); err == nil {
		t.Fatal("expected key mismatch")
	}
	now = issuedAt.Add(16 * time.Minute)
	if _, err := codec.Verify(token, verification.FlowRegistration); err == nil {
		t.Fatal("expected expired token")
	}
}

func TestExpiredCookieFallsBackToQuery(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := issuedAt
	codec := newTestCodec(t, func() time.Time { return now })
	token, err := codec.Issue(verification.FlowPasswordReset, "user@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	now = issuedAt.Add(time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/reset-otp?email=typed%40example.com", nil)
	req.AddCookie(&http.Cookie{Name: CookieName(verification.FlowPasswordReset), Value: token})
	got, ok := codec.Resolve(req, verification.FlowPasswordReset)
	if !ok || got.Subject != "typed@example.com" || got.Source != SourceQuery {
		t.Fatalf("resolution = %+v, %v", got, ok)
	}
}

func TestIssueRejectsUnknownFlowAndBlankSubject(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	if _, err := codec.Issue("checkout", "a@b.com"); err == nil {
		t.Fatal("expected unknown flow error")
	}
	if _, err := codec.Issue(verification.FlowRegistration, "  "); err == nil {
		t.Fatal("expected blank subject error")
	}
}

func TestClearAllExpiresPresentCookies(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieName(verification.FlowEmailChange), Value: "x"})
	rec := httptest.NewRecorder()
	codec.ClearAll(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if cookies[0].Name != CookieName(verification.FlowEmailChange) || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookie = %+v", cookies[0])
	}
}

func TestStepURL(t *testing.T) {
	t.Parallel()

	got := StepURL("/reset-password", verification.FlowPasswordReset, "user@example.com")
	if got != "/reset-password?email=user%40example.com" {
		t.Fatalf("StepURL = %q", got)
	}
}
