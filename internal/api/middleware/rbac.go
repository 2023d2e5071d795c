package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// RBAC enforces role-based access control on API routes. It expects Session
// to have run; anonymous callers are rejected with 401.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil {
				return domain.NewError(domain.KindUnauthorized, "authentication required", nil)
			}
			if _, ok := allowed[sess.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "forbidden",
					"kind":  string(domain.KindForbidden),
				})
			}
			return next(c)
		}
	}
}
