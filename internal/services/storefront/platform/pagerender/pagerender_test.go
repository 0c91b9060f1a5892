package pagerender

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flash"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
)

type stubResolver struct {
	viewer module.Viewer
}

func (s stubResolver) ResolveRequestViewer(*http.Request) module.Viewer { return s.viewer }

func (stubResolver) RequestSchemePolicy() requestmeta.SchemePolicy { return requestmeta.SchemePolicy{} }

func textComponent(value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, value)
		return err
	})
}

func setFlashCookie(t *testing.T, req *http.Request, notice flash.Notice) {
	t.Helper()
	payload, err := json.Marshal(notice)
	if err != nil {
		t.Fatalf("marshal notice: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: flash.CookieName, Value: base64.RawURLEncoding.EncodeToString(payload)})
}

func TestWritePageRendersHTMXFragmentWithStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()

	err := WritePage(rr, req, nil, Page{
		Title:      "Sign in",
		StatusCode: http.StatusUnprocessableEntity,
		Fragment:   textComponent(`<section id="fragment-root">ok</section>`),
	})
	if err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="fragment-root"`) {
		t.Fatalf("body missing fragment marker: %q", body)
	}
	if strings.Contains(strings.ToLower(body), "<!doctype html") {
		t.Fatal("expected htmx fragment without full document wrapper")
	}
}

func TestWritePageRendersFullDocument(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/customer/dashboard", nil)
	rr := httptest.NewRecorder()

	err := WritePage(rr, req, stubResolver{viewer: module.Viewer{SignedIn: true, DisplayName: "asha"}}, Page{
		Title:    "Dashboard",
		Fragment: textComponent(`<section id="fragment-root">ok</section>`),
	})
	if err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q, want %q", got, "text/html; charset=utf-8")
	}
	body := rr.Body.String()
	for _, marker := range []string{`id="main"`, `id="fragment-root"`, `action="/logout"`} {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing marker %q: %q", marker, body)
		}
	}
}

func TestWritePageViewerOverride(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/customer/profile/change-password", nil)
	rr := httptest.NewRecorder()

	signedOut := module.Viewer{}
	err := WritePage(rr, req, stubResolver{viewer: module.Viewer{SignedIn: true}}, Page{Viewer: &signedOut, RefreshTo: "/login", RefreshSeconds: 5})
	if err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	body := rr.Body.String()
	if strings.Contains(body, `action="/logout"`) {
		t.Fatalf("signed-out override still rendered logout control: %q", body)
	}
	if !strings.Contains(body, `content="5;url=/login"`) {
		t.Fatalf("missing refresh meta: %q", body)
	}
}

func TestWritePageRendersToastFromFlashNotice(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	setFlashCookie(t, req, flash.Success("Registration complete. Please sign in.", "notice.registration.complete"))
	rr := httptest.NewRecorder()

	if err := WritePage(rr, req, nil, Page{Title: "Sign in"}); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	if !strings.Contains(rr.Body.String(), "Registration complete. Please sign in.") {
		t.Fatalf("body missing toast message: %q", rr.Body.String())
	}
	cleared := false
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == flash.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected flash cookie to be cleared")
	}
}
