// Package app is the composition root: it wires configuration into the
// services the commands and the HTTP server use.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"
	"github.com/surrealdb/surrealdb.go"
	"go.opentelemetry.io/otel/trace"

	"github.com/nfrund/editorimages/internal/auth"
	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/database"
	"github.com/nfrund/editorimages/internal/deeplink"
	"github.com/nfrund/editorimages/internal/email"
	"github.com/nfrund/editorimages/internal/hub"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/identity/surreal"
	"github.com/nfrund/editorimages/internal/identity/toolkit"
	"github.com/nfrund/editorimages/internal/photolib"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/nfrund/editorimages/internal/router"
	"github.com/nfrund/editorimages/internal/shell"
	"github.com/nfrund/editorimages/internal/storage"
)

// tracing owns the tracer provider so the container can flush it on shutdown.
type tracing struct {
	tracer  trace.Tracer
	cleanup func()
}

func (t *tracing) Shutdown() { t.cleanup() }

// bus closes the in-process message bus on shutdown.
type bus struct {
	*pubsub.WatermillBridge
}

func (b *bus) Shutdown() error { return b.Close() }

// surrealConn closes the database connection on shutdown.
type surrealConn struct {
	db *surrealdb.DB
}

func (c *surrealConn) Shutdown() { c.db.Close(context.Background()) }

// NewContainer registers every service. Services are built lazily on first
// use, so commands that never touch the identity provider do not connect to it.
func NewContainer(cfg *config.Config) *do.RootScope {
	i := do.New()

	do.ProvideValue(i, cfg)

	do.Provide(i, func(i do.Injector) (*i18n.Translator, error) {
		return i18n.New(cfg.Locale), nil
	})

	do.Provide(i, func(i do.Injector) (*tracing, error) {
		tracer, cleanup, err := pubsub.SetupOTel(context.Background(), pubsub.TracingConfig{
			Enabled:     cfg.TracingEnabled,
			ServiceName: cfg.TracingServiceName,
			ZipkinURL:   cfg.TracingZipkinURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		return &tracing{tracer: tracer, cleanup: cleanup}, nil
	})

	do.Provide(i, func(i do.Injector) (*bus, error) {
		t, err := do.Invoke[*tracing](i)
		if err != nil {
			return nil, err
		}
		return &bus{pubsub.NewWatermillBridgeWithTracer(t.tracer)}, nil
	})

	do.Provide(i, func(i do.Injector) (*auth.FileSessionStore, error) {
		store, err := storage.NewDiskStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return auth.NewFileSessionStore(store, auth.DefaultSessionPath), nil
	})

	do.Provide(i, func(i do.Injector) (*photolib.Library, error) {
		store, err := storage.NewDiskStore(cfg.LibraryDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open library dir: %w", err)
		}
		return photolib.New(store), nil
	})

	do.Provide(i, func(i do.Injector) (*surrealConn, error) {
		ctx := context.Background()
		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close(ctx)
			return nil, err
		}
		return &surrealConn{db: db}, nil
	})

	do.Provide(i, func(i do.Injector) (*surreal.Provider, error) {
		conn, err := do.Invoke[*surrealConn](i)
		if err != nil {
			return nil, err
		}
		sender, err := email.NewEmailService(cfg)
		if err != nil {
			return nil, err
		}
		return surreal.NewProvider(
			surreal.NewSurrealAccountStore(conn.db),
			sender,
			do.MustInvoke[*i18n.Translator](i),
			surreal.Options{Secret: []byte(cfg.JWTSecret), Expiry: cfg.JWTExpiry, AppBaseURL: cfg.AppBaseURL},
		), nil
	})

	do.Provide(i, func(i do.Injector) (auth.Provider, error) {
		switch cfg.AuthProvider {
		case config.AuthProviderSurreal:
			p, err := do.Invoke[*surreal.Provider](i)
			if err != nil {
				return nil, err
			}
			return p, nil
		default:
			return toolkit.NewClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, toolkit.WithTokenURL(cfg.IdentityTokenURL)), nil
		}
	})

	do.Provide(i, func(i do.Injector) (*auth.Gateway, error) {
		provider, err := do.Invoke[auth.Provider](i)
		if err != nil {
			return nil, err
		}
		sessions, err := do.Invoke[*auth.FileSessionStore](i)
		if err != nil {
			return nil, err
		}
		gw := auth.NewGateway(provider, sessions, cfg.VerifyContinueURL)
		if err := gw.Restore(context.Background()); err != nil {
			slog.Warn("Could not restore session, starting signed out", "error", err)
		}
		return gw, nil
	})

	do.Provide(i, func(i do.Injector) (*router.Router, error) {
		b, err := do.Invoke[*bus](i)
		if err != nil {
			return nil, err
		}
		return router.New(b), nil
	})

	do.Provide(i, func(i do.Injector) (*deeplink.Handler, error) {
		b, err := do.Invoke[*bus](i)
		if err != nil {
			return nil, err
		}
		return deeplink.NewHandler(cfg.VerifyDomain, b), nil
	})

	do.Provide(i, func(i do.Injector) (*hub.Hub, error) {
		return hub.NewHub(), nil
	})

	do.Provide(i, func(i do.Injector) (*shell.Shell, error) {
		gw, err := do.Invoke[*auth.Gateway](i)
		if err != nil {
			return nil, err
		}
		r, err := do.Invoke[*router.Router](i)
		if err != nil {
			return nil, err
		}
		b, err := do.Invoke[*bus](i)
		if err != nil {
			return nil, err
		}
		library, err := do.Invoke[*photolib.Library](i)
		if err != nil {
			return nil, err
		}
		return shell.New(gw, r, b, library, do.MustInvoke[*i18n.Translator](i), cfg.VerifyPollInterval), nil
	})

	return i
}
