// Package module defines the feature contract used by storefront composition.
package module

import "net/http"

// Viewer contains chrome data for the signed-in customer, if any.
type Viewer struct {
	SignedIn    bool
	DisplayName string
	Email       string
}

// ResolveViewer resolves chrome viewer state for a request.
type ResolveViewer func(*http.Request) Viewer

// ResolveSignedIn reports whether the request belongs to a signed-in customer.
type ResolveSignedIn func(*http.Request) bool

// ResolveLanguage returns the effective request language.
type ResolveLanguage func(*http.Request) string

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by storefront composition.
type Module interface {
	ID() string
	Mount() (Mount, error)
}

// HealthReporter is implemented by modules whose gateways can be unavailable.
type HealthReporter interface {
	Healthy() bool
}
