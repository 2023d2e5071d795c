package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// ctxSession returns the session resolved by the Session middleware. Routes
// are mounted behind RequireSession or RBAC, so a missing session means the
// middleware chain is misconfigured; it still fails closed with 401.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return nil, domain.NewError(domain.KindUnauthorized, "missing session", nil)
	}
	return sess, nil
}

// sessionUser is the public view of a session.
type sessionUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func toSessionUser(sess *domain.Session) *sessionUser {
	if sess == nil {
		return nil
	}
	return &sessionUser{ID: sess.UserID, Name: sess.Name, Email: sess.Email, Role: sess.Role}
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the error envelope for swagger.
type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Redirect   string `json:"redirect,omitempty"`
}
