package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/middleware"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/nfrund/editorimages/internal/views"
)

type linkRequest struct {
	URL string `json:"url" form:"url" query:"url"`
}

type linkResponse struct {
	Handled bool `json:"handled"`
}

// handleLink accepts an app link opened on this device, either as ?url= or
// as a JSON/form body.
func (s *Server) handleLink(c echo.Context) error {
	var req linkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	handled, err := s.deps.Links.Handle(c.Request().Context(), req.URL)
	if err != nil && !handled {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, linkResponse{Handled: handled})
}

// handleVerify is the target of verification emails from the self-hosted
// provider.
func (s *Server) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	if s.deps.Confirmer == nil {
		return echo.NewHTTPError(http.StatusNotFound, "verification is handled by the identity provider")
	}

	status := http.StatusOK
	err := s.deps.Confirmer.ConfirmEmail(ctx, c.QueryParam("token"))
	switch {
	case errors.Is(err, domain.ErrInvalidVerifyToken):
		logger.Info("verification link rejected")
		status = http.StatusBadRequest
	case err != nil:
		return err
	default:
		if err := pubsub.Publish(ctx, s.deps.Publisher, events.EmailVerifiedEvent, events.EmailVerified{}); err != nil {
			logger.Warn("failed to publish email verified", "error", err)
		}
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return views.VerifyResultPage(s.deps.Translator, status == http.StatusOK).Render(c.Response())
}
