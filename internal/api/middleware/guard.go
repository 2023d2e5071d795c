package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/metrics"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/service"
)

// Guard protects a view route. Callers who may not see it are redirected
// with 302: to login when anonymous, to their own landing view otherwise.
// An empty required role admits any signed-in user.
func Guard(guard *service.AccessGuard, required domain.Role) echo.MiddlewareFunc {
	roleLabel := string(required)
	if roleLabel == "" {
		roleLabel = "any"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Check(CurrentSession(c), required, c.Request().URL.RequestURI())
			metrics.GuardDecisionsTotal.WithLabelValues(roleLabel, string(d.Outcome)).Inc()

			if !d.Allow {
				return c.Redirect(http.StatusFound, d.RedirectTo)
			}
			return next(c)
		}
	}
}
