package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

const sessionKey = "session"

// SessionRestorer resolves a presented token to its live session.
type SessionRestorer interface {
	Restore(ctx context.Context, token string) (*domain.Session, error)
}

// Session resolves the caller's session from the session cookie or a bearer
// token and stores it in the echo context. Requests without a valid session
// continue anonymously; a stale cookie is cleared.
func Session(sessions SessionRestorer, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, fromCookie := presentedToken(c, cookieName)
			if token == "" {
				return next(c)
			}

			sess, err := sessions.Restore(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("session not restored")
				if fromCookie {
					c.SetCookie(ExpiredCookie(cookieName))
				}
				return next(c)
			}

			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// RequireSession rejects anonymous API calls with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				return domain.NewError(domain.KindUnauthorized, "authentication required", nil)
			}
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by Session, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}

// SetSession stores sess in the echo context.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionKey, sess)
}

// ExpiredCookie returns a cookie that makes the browser drop name.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func presentedToken(c echo.Context, cookieName string) (token string, fromCookie bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1]), false
		}
	}
	if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return "", false
}
