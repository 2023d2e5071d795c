package marketapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Chat relays a message to the assistant. The reply is returned unchanged.
func (cl *Client) Chat(ctx context.Context, token, message string) (json.RawMessage, error) {
	var out json.RawMessage
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/chat",
		endpoint: "/chat",
		token:    token,
		body:     chatRequest{Message: message},
	}, &out)
	return out, err
}

// Analytics runs the AI analytics request with the longer analytics timeout.
func (cl *Client) Analytics(ctx context.Context, token string, request json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/ai-analytics",
		endpoint: "/ai-analytics",
		token:    token,
		body:     request,
		timeout:  cl.analyticsTimeout,
	}, &out)
	return out, err
}

// SalesAnalytics returns the farmer's sales report for period unchanged.
func (cl *Client) SalesAnalytics(ctx context.Context, token string, period domain.AnalyticsPeriod) (json.RawMessage, error) {
	var out json.RawMessage
	err := cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/analytics/sales?" + url.Values{"period": {string(period)}}.Encode(),
		endpoint: "/analytics/sales",
		token:    token,
	}, &out)
	return out, err
}

// InventoryAnalytics returns the farmer's inventory report unchanged.
func (cl *Client) InventoryAnalytics(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	err := cl.do(ctx, call{method: http.MethodGet, path: "/analytics/inventory", endpoint: "/analytics/inventory", token: token}, &out)
	return out, err
}
