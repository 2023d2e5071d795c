package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

func runErrorHandler(method string, err error) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/api/cart", nil), rec)
	NewHTTPErrorHandler(zerolog.New(io.Discard), "mp_session")(err, c)
	return rec
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		kind    domain.ErrorKind
		message string
	}{
		{
			name:    "local validation keeps detail",
			err:     fmt.Errorf("update quantity: %w (only 3 available)", domain.ErrStockExceeded),
			code:    http.StatusUnprocessableEntity,
			kind:    domain.KindValidation,
			message: "requested quantity exceeds available stock (only 3 available)",
		},
		{
			name:    "line not found",
			err:     fmt.Errorf("update quantity: %w", domain.ErrLineNotFound),
			code:    http.StatusNotFound,
			kind:    domain.KindNotFound,
			message: "product is not in the cart",
		},
		{
			name:    "upstream validation uses server message",
			err:     fmt.Errorf("add item: %w", &domain.Error{Kind: domain.KindValidation, Message: "Insufficient stock", Status: 400}),
			code:    http.StatusUnprocessableEntity,
			kind:    domain.KindValidation,
			message: "Insufficient stock",
		},
		{
			name:    "conflict",
			err:     fmt.Errorf("add item: %w", domain.ErrMutationInFlight),
			code:    http.StatusConflict,
			kind:    domain.KindConflict,
			message: "another change to this cart line is in progress",
		},
		{
			name: "forbidden",
			err:  &domain.Error{Kind: domain.KindForbidden, Message: "Not allowed", Status: 403},
			code: http.StatusForbidden,
			kind: domain.KindForbidden,
		},
		{
			name: "timeout",
			err:  &domain.Error{Kind: domain.KindTimeout, Message: "Request timeout - please try again"},
			code: http.StatusGatewayTimeout,
			kind: domain.KindTimeout,
		},
		{
			name: "network",
			err:  &domain.Error{Kind: domain.KindNetwork, Message: "Network error - please check your connection"},
			code: http.StatusBadGateway,
			kind: domain.KindNetwork,
		},
		{
			name:    "model overloaded",
			err:     &domain.Error{Kind: domain.KindServer, Message: "AI service is currently busy. Please try again in a few minutes.", Status: 503},
			code:    http.StatusServiceUnavailable,
			kind:    domain.KindServer,
			message: "AI service is currently busy. Please try again in a few minutes.",
		},
		{
			name: "upstream 500",
			err:  &domain.Error{Kind: domain.KindServer, Message: "Server error - please try again later", Status: 500},
			code: http.StatusBadGateway,
			kind: domain.KindServer,
		},
		{
			name:    "unclassified error",
			err:     errors.New("boom"),
			code:    http.StatusInternalServerError,
			kind:    domain.KindServer,
			message: "internal server error",
		},
		{
			name: "echo error",
			err:  echo.NewHTTPError(http.StatusNotFound, "Not Found"),
			code: http.StatusNotFound,
			kind: domain.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runErrorHandler(http.MethodGet, tt.err)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}

			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Kind != string(tt.kind) {
				t.Errorf("expected kind %s, got %s", tt.kind, resp.Kind)
			}
			if tt.message != "" && resp.Error != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Error)
			}
			if resp.Redirect != "" {
				t.Errorf("unexpected redirect %q", resp.Redirect)
			}
		})
	}
}

func TestHTTPErrorHandler_RateLimited(t *testing.T) {
	err := &domain.Error{
		Kind:       domain.KindRateLimited,
		Message:    "Rate limit exceeded. Please try again after 2 seconds",
		RetryAfter: 1500 * time.Millisecond,
		Status:     429,
	}
	rec := runErrorHandler(http.MethodPost, err)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After 2, got %q", got)
	}

	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.RetryAfter != 2 {
		t.Errorf("expected retry_after 2, got %d", resp.RetryAfter)
	}
}

func TestHTTPErrorHandler_UnauthorizedEndsSession(t *testing.T) {
	err := fmt.Errorf("fetch cart: %w", &domain.Error{Kind: domain.KindUnauthorized, Message: "Session expired - please login again", Status: 401})
	rec := runErrorHandler(http.MethodGet, err)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Redirect != domain.LoginPath {
		t.Errorf("expected redirect to %s, got %q", domain.LoginPath, resp.Redirect)
	}
	if resp.Error != "Session expired - please login again" {
		t.Errorf("unexpected message %q", resp.Error)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "mp_session" || cookies[0].MaxAge >= 0 {
		t.Errorf("expected the session cookie to be cleared, got %+v", cookies)
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := runErrorHandler(http.MethodHead, domain.ErrEmptyCart)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}
