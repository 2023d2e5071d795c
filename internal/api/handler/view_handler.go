package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
)

// ViewHandler answers view routes with a descriptor the front end renders.
// Access control happens in the Guard middleware before these run.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

type viewResponse struct {
	View string       `json:"view"`
	Path string       `json:"path"`
	User *sessionUser `json:"user,omitempty"`
}

// Page returns a handler describing the named view.
func (h *ViewHandler) Page(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, viewResponse{
			View: view,
			Path: c.Request().URL.Path,
			User: toSessionUser(middleware.CurrentSession(c)),
		})
	}
}
