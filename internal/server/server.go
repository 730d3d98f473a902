// Package server is the HTTP surface: deep link intake, the email
// verification landing page, the screen feed and the intent endpoints a
// remote UI drives the screens with.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/editorimages/internal/deeplink"
	"github.com/nfrund/editorimages/internal/hub"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/middleware"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/nfrund/editorimages/internal/shell"
)

// EmailConfirmer consumes verification tokens. Only self-hosted identity
// providers issue them.
type EmailConfirmer interface {
	ConfirmEmail(ctx context.Context, token string) error
}

// Deps are the collaborators the routes need.
type Deps struct {
	Links      *deeplink.Handler
	Publisher  pubsub.Publisher
	Screens    *hub.Hub
	Shell      *shell.Shell
	Confirmer  EmailConfirmer
	Translator *i18n.Translator
	RateLimit  int
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E    *echo.Echo
	deps Deps
}

// New creates a server with every route registered.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	setupErrorHandling(e)

	s := &Server{E: e, deps: deps}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(s.deps.RateLimit)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	s.E.GET("/links", s.handleLink, rateLimiter)
	s.E.POST("/links", s.handleLink, rateLimiter)
	s.E.GET("/auth/verify", s.handleVerify, rateLimiter)

	if s.deps.Screens != nil {
		s.E.GET("/ws/screens", s.handleScreens)
	}
	if s.deps.Shell != nil {
		s.E.GET("/state", s.handleState)
		s.E.POST("/intents/:screen", s.handleIntent, rateLimiter)
	}
}

// setupErrorHandling logs unhandled errors with a stack trace. Errors that
// are already *echo.HTTPError are expected and logged without one.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		logger := middleware.FromContext(c.Request().Context())

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code >= http.StatusInternalServerError {
				logger.Error("HTTP error", "status", he.Code, "error", err)
			}
		} else {
			logger.Error("Internal Server Error (Unhandled)",
				"error", err.Error(),
				"stack_trace", string(debug.Stack()),
			)
			he = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, map[string]any{"message": fmt.Sprint(he.Message)})
		}
		if err != nil {
			slog.Error("failed to write error response", "error", err)
		}
	}
}
