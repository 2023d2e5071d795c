package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const maxAnalyticsBody = 1 << 20

// InsightHandler relays chat, AI analytics and the farmer's reports.
// Payloads are passed through.
type InsightHandler struct {
	insights ports.InsightService
}

func NewInsightHandler(insights ports.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Chat forwards a message to the farming assistant.
//
// @Summary      Chat
// @Tags         insights
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      chatRequest  true  "Message"
// @Success      200   {object}  map[string]any
// @Failure      503   {object}  errorResponse
// @Router       /api/chat [post]
func (h *InsightHandler) Chat(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	out, err := h.insights.Chat(c.Request().Context(), sess, req.Message)
	if err != nil {
		return err
	}
	return rawJSON(c, out)
}

// Analytics forwards an AI analytics request unchanged.
//
// @Summary      AI analytics
// @Tags         insights
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Analytics request"
// @Success      200   {object}  map[string]any
// @Failure      503   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /api/ai-analytics [post]
func (h *InsightHandler) Analytics(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAnalyticsBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	out, err := h.insights.Analytics(c.Request().Context(), sess, json.RawMessage(body))
	if err != nil {
		return err
	}
	return rawJSON(c, out)
}

// Sales returns the farmer's sales report unchanged.
//
// @Summary      Sales analytics
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Param        period  query     string  false  "daily, weekly, monthly (default) or yearly"
// @Success      200     {object}  map[string]any
// @Failure      422     {object}  errorResponse
// @Router       /api/analytics/sales [get]
func (h *InsightHandler) Sales(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	out, err := h.insights.Sales(c.Request().Context(), sess, c.QueryParam("period"))
	if err != nil {
		return err
	}
	return rawJSON(c, out)
}

// Inventory returns the farmer's inventory report unchanged.
//
// @Summary      Inventory analytics
// @Tags         insights
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /api/analytics/inventory [get]
func (h *InsightHandler) Inventory(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	out, err := h.insights.Inventory(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return rawJSON(c, out)
}

func rawJSON(c echo.Context, body json.RawMessage) error {
	if len(body) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSONBlob(http.StatusOK, body)
}
