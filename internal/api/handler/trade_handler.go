package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// TradeHandler serves the farmer's trades.
type TradeHandler struct {
	trades ports.TradeService
}

func NewTradeHandler(trades ports.TradeService) *TradeHandler {
	return &TradeHandler{trades: trades}
}

type createTradeRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity"   validate:"gt=0"`
	Amount    float64 `json:"amount"     validate:"min=0"`
}

type updateTradeStatusRequest struct {
	Status string `json:"status" validate:"required,trade_status"`
}

type tradesResponse struct {
	Trades []domain.Trade `json:"trades"`
}

// List returns the farmer's trades.
//
// @Summary      List trades
// @Tags         trades
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tradesResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/trades [get]
func (h *TradeHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	trades, err := h.trades.List(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if trades == nil {
		trades = []domain.Trade{}
	}
	return c.JSON(http.StatusOK, tradesResponse{Trades: trades})
}

// Summary returns revenue and order counts for the dashboard.
//
// @Summary      Trade summary
// @Tags         trades
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TradeSummary
// @Router       /api/trades/summary [get]
func (h *TradeHandler) Summary(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	sum, err := h.trades.Summary(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// Create records a new trade.
//
// @Summary      Create trade
// @Tags         trades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTradeRequest  true  "Trade"
// @Success      201   {object}  domain.Trade
// @Failure      422   {object}  errorResponse
// @Router       /api/trades [post]
func (h *TradeHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createTradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trade, err := h.trades.Create(c.Request().Context(), sess, ports.NewTradeInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Amount:    req.Amount,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, trade)
}

// UpdateStatus moves a pending trade to completed or cancelled.
//
// @Summary      Update trade status
// @Tags         trades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Trade id"
// @Param        body  body      updateTradeStatusRequest  true  "New status"
// @Success      200   {object}  domain.Trade
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/trades/{id}/status [put]
func (h *TradeHandler) UpdateStatus(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateTradeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trade, err := h.trades.UpdateStatus(c.Request().Context(), sess, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}
