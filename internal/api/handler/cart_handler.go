package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/metrics"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// CartHandler handles HTTP requests for the buyer's cart.
type CartHandler struct {
	cart    ports.CartService
	history ports.CartHistory
}

func NewCartHandler(cart ports.CartService, history ports.CartHistory) *CartHandler {
	return &CartHandler{cart: cart, history: history}
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	Total     float64            `json:"total"`
	ItemCount int                `json:"item_count"`
}

type cartLineResponse struct {
	domain.CartLine
	Subtotal float64 `json:"subtotal"`
}

type checkoutResponse struct {
	Message string                    `json:"message"`
	Order   *domain.OrderConfirmation `json:"order"`
}

type historyResponse struct {
	Events []domain.CartEvent `json:"events"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	resp := cartResponse{Lines: make([]cartLineResponse, 0, len(cart.Lines)), Total: cart.Total}
	for _, l := range cart.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{CartLine: l, Subtotal: l.Subtotal()})
		resp.ItemCount += l.Quantity
	}
	return resp
}

// Get returns the buyer's cart. refresh=true forces a fetch from the market API.
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        refresh  query     bool  false  "Bypass the cached snapshot"
// @Success      200      {object}  cartResponse
// @Failure      401      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var cart domain.Cart
	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh {
		cart, err = h.cart.FetchCart(c.Request().Context(), sess)
	} else {
		cart, err = h.cart.Current(c.Request().Context(), sess)
	}
	observe("fetch", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// AddItem adds a product to the cart.
//
// @Summary      Add item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      200   {object}  cartResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	cart, err := h.cart.AddItem(c.Request().Context(), sess, req.ProductID, req.Quantity)
	observe("add", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// UpdateItem sets the quantity of a cart line. Use DELETE to remove a line.
//
// @Summary      Update quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string             true  "Product id"
// @Param        body        body      updateItemRequest  true  "New quantity"
// @Success      200         {object}  cartResponse
// @Failure      404         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /api/cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cart, err := h.cart.UpdateQuantity(c.Request().Context(), sess, c.Param("product_id"), req.Quantity)
	observe("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// RemoveItem deletes a cart line.
//
// @Summary      Remove item
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string  true  "Product id"
// @Success      200         {object}  cartResponse
// @Failure      409         {object}  errorResponse
// @Router       /api/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	cart, err := h.cart.RemoveItem(c.Request().Context(), sess, c.Param("product_id"))
	observe("remove", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// Clear empties the cart.
//
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	cart, err := h.cart.Clear(c.Request().Context(), sess)
	observe("clear", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// Checkout places the order for the whole cart.
//
// @Summary      Checkout
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  checkoutResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	order, err := h.cart.Checkout(c.Request().Context(), sess)
	observe("checkout", err)
	if err != nil {
		return err
	}
	metrics.CheckoutTotal.Inc()

	msg := order.Message
	if msg == "" {
		msg = "Order placed successfully"
	}
	return c.JSON(http.StatusCreated, checkoutResponse{Message: msg, Order: order})
}

// History lists the buyer's recorded cart changes, newest first.
//
// @Summary      Cart history
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of events"
// @Success      200    {object}  historyResponse
// @Router       /api/cart/history [get]
func (h *CartHandler) History(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := h.history.History(c.Request().Context(), sess, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.CartEvent{}
	}
	return c.JSON(http.StatusOK, historyResponse{Events: events})
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.CartOperationsTotal.WithLabelValues(op, result).Inc()
}
