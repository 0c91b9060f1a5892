// Package storefront assembles the storefront HTTP server: feature modules,
// the signed-in route guard, static assets and the health probe.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anvistudio/storefront/internal/platform/timeouts"
	"github.com/anvistudio/storefront/internal/services/storefront/app"
	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/modules"
	"github.com/anvistudio/storefront/internal/services/storefront/modules/publicauth"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/httpx"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/modulehandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/observability"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/publichandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/session"
	"github.com/anvistudio/storefront/internal/services/storefront/static"
	"github.com/anvistudio/storefront/internal/services/storefront/transport/httpmux"
)

// Config defines the inputs for the storefront server.
type Config struct {
	HTTPAddr string
	// API is the commerce API client. Nil serves every page in degraded mode.
	API *commerceapi.Client
	// Gate resolves and ends sessions. Nil treats every visitor as signed out.
	Gate                *session.Gate
	Handoff             *flowhandoff.Codec
	RequestSchemePolicy requestmeta.SchemePolicy
	Logger              *log.Logger
	// Closers are released by Server.Close, e.g. the user cache.
	Closers []io.Closer
}

// Server hosts the storefront HTTP handler.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	closers    []io.Closer
}

// NewHandler builds the root storefront handler.
func NewHandler(cfg Config) (http.Handler, error) {
	var resolver principalResolver
	var sessions publicauth.Sessions
	var invalidate modulehandler.Invalidator
	if cfg.Gate != nil {
		resolver = newPrincipalResolver(cfg.Gate)
		sessions = cfg.Gate
		invalidate = cfg.Gate.Invalidate
	}
	policy := cfg.RequestSchemePolicy

	deps := modules.Dependencies{
		API:      cfg.API,
		Sessions: sessions,
		Handoff:  cfg.Handoff,
		PublicBase: publichandler.NewBase(
			publichandler.WithResolveViewer(resolver.resolveViewer),
			publichandler.WithResolveViewerSignedIn(resolver.authenticated),
			publichandler.WithSchemePolicy(policy),
		),
		ProtectedBase: modulehandler.NewBase(resolver.resolveViewer, policy, invalidate),
	}
	public := modules.DefaultPublicModules(deps)
	protected := modules.DefaultProtectedModules(deps)

	composed, err := app.Compose(app.ComposeInput{
		Authenticated:       resolver.authenticated,
		PublicModules:       public,
		ProtectedModules:    protected,
		RequestSchemePolicy: policy,
	})
	if err != nil {
		return nil, fmt.Errorf("compose modules: %w", err)
	}

	root := http.NewServeMux()
	httpmux.MountStatic(root, static.FS)
	httpmux.MountHealth(root, func() map[string]bool {
		return modules.HealthOf(public, protected)
	})
	httpmux.MountRoutes(root, composed)

	return httpx.Chain(root,
		httpx.RequestID(),
		observability.RequestLogger(cfg.Logger),
		httpx.RecoverPanic(),
		resolver.middleware(),
	), nil
}

// NewServer builds a configured storefront server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("build handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		closers: cfg.Closers,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("storefront server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("storefront listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases resources held by the server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	for _, closer := range s.closers {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil {
			log.Printf("close storefront resource: %v", err)
		}
	}
}
