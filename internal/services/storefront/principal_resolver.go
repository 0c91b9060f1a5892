package storefront

import (
	"context"
	"net/http"
	"sync"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
)

// sessionResolver asks the commerce API who owns a request's credential.
type sessionResolver interface {
	ResolveRequest(r *http.Request) session.Session
}

// requestPrincipalState memoizes the session check so the route guard, page
// chrome and handlers share one commerce API round trip per request.
type requestPrincipalState struct {
	sessionOnce sync.Once
	session     session.Session
}

type requestPrincipalStateKey struct{}

type principalResolver struct {
	sessions sessionResolver
}

func newPrincipalResolver(sessions sessionResolver) principalResolver {
	return principalResolver{sessions: sessions}
}

// middleware installs per-request principal state.
func (p principalResolver) middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withRequestPrincipalState(r))
		})
	}
}

func withRequestPrincipalState(r *http.Request) *http.Request {
	if r == nil || requestPrincipalStateFromRequest(r) != nil {
		return r
	}
	ctx := context.WithValue(r.Context(), requestPrincipalStateKey{}, &requestPrincipalState{})
	return r.WithContext(ctx)
}

func requestPrincipalStateFromRequest(r *http.Request) *requestPrincipalState {
	if r == nil {
		return nil
	}
	state, _ := r.Context().Value(requestPrincipalStateKey{}).(*requestPrincipalState)
	return state
}

func (p principalResolver) resolveSessionUncached(r *http.Request) session.Session {
	if p.sessions == nil || r == nil {
		return session.Anonymous()
	}
	return p.sessions.ResolveRequest(r)
}

func (p principalResolver) resolveSession(r *http.Request) session.Session {
	if state := requestPrincipalStateFromRequest(r); state != nil {
		state.sessionOnce.Do(func() {
			state.session = p.resolveSessionUncached(r)
		})
		return state.session
	}
	return p.resolveSessionUncached(r)
}

func (p principalResolver) authenticated(r *http.Request) bool {
	current := p.resolveSession(r)
	return current.Authenticated && current.User != nil
}

func (p principalResolver) resolveViewer(r *http.Request) module.Viewer {
	current := p.resolveSession(r)
	if !current.Authenticated || current.User == nil {
		return module.Viewer{}
	}
	return module.Viewer{
		SignedIn:    true,
		DisplayName: current.User.DisplayName(),
		Email:       current.User.Email,
	}
}
