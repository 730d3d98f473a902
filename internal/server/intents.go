package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/editorimages/internal/middleware"
	"github.com/nfrund/editorimages/internal/shell"
)

// handleIntent forwards one user action to the controller of :screen.
func (s *Server) handleIntent(c echo.Context) error {
	var req shell.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type is required")
	}

	ctx := c.Request().Context()
	screen := c.Param("screen")
	err := s.deps.Shell.Dispatch(ctx, screen, req)
	switch {
	case errors.Is(err, shell.ErrStaleScreen):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, shell.ErrInvalidIntent):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}

	middleware.FromContext(ctx).Debug("intent accepted", "screen", screen, "type", req.Type)
	return c.NoContent(http.StatusAccepted)
}

// handleState returns the visible screen and its last state.
func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Shell.Snapshot())
}
