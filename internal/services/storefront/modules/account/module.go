package account

import (
	"net/http"

	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/modulehandler"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
)

// Option configures an account module.
type Option func(*Module)

// WithGateway sets the account gateway.
func WithGateway(g AccountGateway) Option {
	return func(m *Module) { m.gateway = g }
}

// WithBase sets the handler base for authenticated routes.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithHandoff sets the codec carrying the pending new email between steps.
func WithHandoff(c *flowhandoff.Codec) Option {
	return func(m *Module) { m.handoff = c }
}

// Module provides the signed-in dashboard and profile routes.
type Module struct {
	gateway AccountGateway
	base    modulehandler.Base
	handoff *flowhandoff.Codec
}

// New returns an account module configured by the given options.
// Without options the module starts in degraded mode.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "account" }

// Healthy reports whether the account module has an operational gateway.
func (m Module) Healthy() bool {
	if m.gateway == nil {
		return false
	}
	_, unavailable := m.gateway.(unavailableGateway)
	return !unavailable
}

// Mount wires account route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.gateway), m.base, m.handoff)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.CustomerPrefix, Handler: mux}, nil
}
