// Package webctx provides shared web request context helpers.
package webctx

import (
	"context"
	"net/http"

	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/sessioncookie"
)

// WithRequest returns the request context carrying the commerce API
// credential and request ID for downstream calls.
func WithRequest(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	ctx := r.Context()
	if credential, ok := sessioncookie.Read(r); ok {
		ctx = commerceapi.WithCredential(ctx, credential)
	}
	return commerceapi.WithRequestID(ctx, httpx.RequestIDFrom(r))
}
