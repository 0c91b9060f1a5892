package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
)

func TestReadTrimsAndRejectsBlank(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := Read(req); ok {
		t.Fatal("expected missing cookie")
	}
	req.AddCookie(&http.Cookie{Name: Name, Value: "  "})
	if _, ok := Read(req); ok {
		t.Fatal("expected blank cookie to be rejected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: Name, Value: "ABC123"})
	got, ok := Read(req)
	if !ok || got != "ABC123" {
		t.Fatalf("Read() = %q, %t", got, ok)
	}
}

func TestWriteSetsHardenedCookie(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "https://shop.example.test/login", nil)
	Write(rr, req, "cred-1", requestmeta.SchemePolicy{})

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != Name || c.Value != "cred-1" {
		t.Fatalf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("cookie attributes = %+v", c)
	}
}

func TestWriteIgnoresEmptyCredential(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Write(rr, httptest.NewRequest(http.MethodPost, "/login", nil), " ", requestmeta.SchemePolicy{})
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("expected no cookie for empty credential")
	}
}

func TestClearExpiresCookie(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Clear(rr, httptest.NewRequest(http.MethodPost, "/logout", nil), requestmeta.SchemePolicy{})
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}
