package storefront

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anvistudio/storefront/internal/services/storefront/session"
)

type countingResolver struct {
	calls   int
	session session.Session
}

func (c *countingResolver) ResolveRequest(*http.Request) session.Session {
	c.calls++
	return c.session
}

func TestPrincipalResolverMemoizesPerRequest(t *testing.T) {
	t.Parallel()

	sessions := &countingResolver{session: session.Session{Authenticated: true, User: &session.User{Email: "asha@example.com"}}}
	resolver := newPrincipalResolver(sessions)

	var signedIn bool
	var displayName string
	handler := resolver.middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signedIn = resolver.authenticated(r)
		displayName = resolver.resolveViewer(r).DisplayName
		_ = resolver.resolveViewer(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if sessions.calls != 1 {
		t.Fatalf("session checks = %d, want 1", sessions.calls)
	}
	if !signedIn {
		t.Fatal("expected signed-in viewer")
	}
	if displayName != "asha" {
		t.Fatalf("display name = %q, want %q", displayName, "asha")
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if sessions.calls != 2 {
		t.Fatalf("session checks after second request = %d, want 2", sessions.calls)
	}
}

func TestPrincipalResolverWithoutStateOrSessions(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if newPrincipalResolver(nil).authenticated(req) {
		t.Fatal("resolver without sessions must be signed out")
	}

	sessions := &countingResolver{}
	resolver := newPrincipalResolver(sessions)
	_ = resolver.resolveViewer(req)
	_ = resolver.resolveViewer(req)
	if sessions.calls != 2 {
		t.Fatalf("unmemoized checks = %d, want 2", sessions.calls)
	}
	if viewer := resolver.resolveViewer(req); viewer.SignedIn {
		t.Fatal("anonymous session must yield a signed-out viewer")
	}
}
