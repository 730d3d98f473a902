package app

import (
	"github.com/samber/do/v2"

	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/deeplink"
	"github.com/nfrund/editorimages/internal/hub"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/identity/surreal"
	"github.com/nfrund/editorimages/internal/middleware"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/nfrund/editorimages/internal/server"
	"github.com/nfrund/editorimages/internal/shell"
)

// Bus returns the in-process message bus.
func Bus(i do.Injector) (*pubsub.WatermillBridge, error) {
	b, err := do.Invoke[*bus](i)
	if err != nil {
		return nil, err
	}
	return b.WatermillBridge, nil
}

// ServerDeps collects what the HTTP server needs. The email confirmation
// route is only wired for the self-hosted provider.
func ServerDeps(i do.Injector) (server.Deps, error) {
	cfg := do.MustInvoke[*config.Config](i)

	b, err := Bus(i)
	if err != nil {
		return server.Deps{}, err
	}
	links, err := do.Invoke[*deeplink.Handler](i)
	if err != nil {
		return server.Deps{}, err
	}

	sh, err := do.Invoke[*shell.Shell](i)
	if err != nil {
		return server.Deps{}, err
	}

	deps := server.Deps{
		Links:      links,
		Shell:      sh,
		Publisher:  b,
		Screens:    do.MustInvoke[*hub.Hub](i),
		Translator: do.MustInvoke[*i18n.Translator](i),
		RateLimit:  middleware.DefaultRateLimit,
	}

	if cfg.AuthProvider == config.AuthProviderSurreal {
		confirmer, err := do.Invoke[*surreal.Provider](i)
		if err != nil {
			return server.Deps{}, err
		}
		deps.Confirmer = confirmer
	}
	return deps, nil
}
