package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/api/metrics"
	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Redirect   string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Ends the browser session on unauthorized and points the client at /login.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger, cookieName string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if resp.Kind == string(domain.KindUnauthorized) {
			c.SetCookie(middleware.ExpiredCookie(cookieName))
			resp.Redirect = domain.LoginPath
			if middleware.CurrentSession(c) != nil && isUpstreamRejection(err) {
				metrics.SessionsInvalidatedTotal.Inc()
			}
		}
		if resp.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Kind: string(kindForStatus(he.Code))}
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		// Unexpected error: log the real cause, return a generic message.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: string(domain.KindServer)}
	}

	resp := errorResponse{Error: publicMessage(err, de), Kind: string(de.Kind)}
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity, resp
	case domain.KindNotFound:
		return http.StatusNotFound, resp
	case domain.KindForbidden:
		return http.StatusForbidden, resp
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, resp
	case domain.KindConflict:
		return http.StatusConflict, resp
	case domain.KindRateLimited:
		resp.RetryAfter = int((de.RetryAfter + time.Second - 1) / time.Second)
		return http.StatusTooManyRequests, resp
	case domain.KindTimeout:
		return http.StatusGatewayTimeout, resp
	case domain.KindNetwork:
		return http.StatusBadGateway, resp
	default:
		log.Warn().Err(err).Str("path", c.Path()).Int("upstream_status", de.Status).Msg("market api server error")
		if de.Status == http.StatusServiceUnavailable {
			return http.StatusServiceUnavailable, resp
		}
		return http.StatusBadGateway, resp
	}
}

// publicMessage keeps local context such as "(only 3 available)" for
// validation errors and uses the classified message otherwise.
func publicMessage(err error, de *domain.Error) string {
	if de.Kind == domain.KindValidation || de.Kind == domain.KindNotFound {
		if de.Status == 0 {
			return stripOp(err.Error(), de)
		}
	}
	if de.Message != "" {
		return de.Message
	}
	return string(de.Kind)
}

// stripOp drops leading "op: " wrappers so only the domain message and any
// trailing detail remain.
func stripOp(full string, de *domain.Error) string {
	msg := de.Error()
	if i := strings.Index(full, msg); i >= 0 {
		return full[i:]
	}
	return msg
}

func isUpstreamRejection(err error) bool {
	var de *domain.Error
	return errors.As(err, &de) && de.Status == http.StatusUnauthorized
}

func kindForStatus(code int) domain.ErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return domain.KindUnauthorized
	case code == http.StatusForbidden:
		return domain.KindForbidden
	case code == http.StatusNotFound:
		return domain.KindNotFound
	case code == http.StatusTooManyRequests:
		return domain.KindRateLimited
	case code >= 500:
		return domain.KindServer
	default:
		return domain.KindValidation
	}
}
