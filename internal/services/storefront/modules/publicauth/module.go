package publicauth

import (
	"net/http"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/publichandler"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// Option configures a publicauth module.
type Option func(*Module)

// WithGateway sets the commerce API auth gateway.
func WithGateway(g AuthGateway) Option {
	return func(m *Module) { m.gateway = g }
}

// WithBase sets the handler base for public pages.
func WithBase(b publichandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithSessions sets the session starter used after sign-in.
func WithSessions(s Sessions) Option {
	return func(m *Module) { m.sessions = s }
}

// WithHandoff sets the codec carrying verification subjects between steps.
func WithHandoff(c *flowhandoff.Codec) Option {
	return func(m *Module) { m.handoff = c }
}

// Module serves the home page, sign-in, registration, password reset and
// sign-out.
type Module struct {
	gateway  AuthGateway
	base     publichandler.Base
	sessions Sessions
	handoff  *flowhandoff.Codec
}

// New returns a publicauth module configured by opts. Without a gateway
// every commerce call fails as unavailable.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "publicauth" }

// Healthy reports whether the module has an operational gateway.
func (m Module) Healthy() bool {
	if m.gateway == nil {
		return false
	}
	_, unavailable := m.gateway.(unavailableGateway)
	return !unavailable
}

// Mount wires public route handlers at the site root.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.gateway), m.base, m.sessions, m.handoff)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
