// Package modules assembles the storefront's feature modules.
package modules

import (
	"github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
	"github.com/anvistudio/storefront/internal/services/storefront/module"
	"github.com/anvistudio/storefront/internal/services/storefront/modules/account"
	"github.com/anvistudio/storefront/internal/services/storefront/modules/publicauth"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/flowhandoff"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/modulehandler"
	"github.com/anvistudio/storefront/internal/services/storefront/platform/publichandler"
)

// Dependencies carries what the default modules are built from.
type Dependencies struct {
	// API is the commerce API client. Nil leaves every module degraded; it
	// is only handed to a gateway when set so no typed nil leaks through.
	API           *commerceapi.Client
	Sessions      publicauth.Sessions
	Handoff       *flowhandoff.Codec
	PublicBase    publichandler.Base
	ProtectedBase modulehandler.Base
}

// DefaultPublicModules returns the signed-out surface: home, sign-in,
// registration, password reset and sign-out.
func DefaultPublicModules(deps Dependencies) []module.Module {
	gateway := publicauth.NewAPIGateway(nil)
	if deps.API != nil {
		gateway = publicauth.NewAPIGateway(deps.API)
	}
	return []module.Module{
		publicauth.New(
			publicauth.WithGateway(gateway),
			publicauth.WithBase(deps.PublicBase),
			publicauth.WithSessions(deps.Sessions),
			publicauth.WithHandoff(deps.Handoff),
		),
	}
}

// DefaultProtectedModules returns the signed-in surface under /customer/.
func DefaultProtectedModules(deps Dependencies) []module.Module {
	gateway := account.NewAPIGateway(nil)
	if deps.API != nil {
		gateway = account.NewAPIGateway(deps.API)
	}
	return []module.Module{
		account.New(
			account.WithGateway(gateway),
			account.WithBase(deps.ProtectedBase),
			account.WithHandoff(deps.Handoff),
		),
	}
}

// HealthOf reports each module that exposes gateway health.
func HealthOf(groups ...[]module.Module) map[string]bool {
	report := map[string]bool{}
	for _, group := range groups {
		for _, feature := range group {
			if reporter, ok := feature.(module.HealthReporter); ok {
				report[feature.ID()] = reporter.Healthy()
			}
		}
	}
	return report
}
