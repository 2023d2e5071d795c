package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

type stubCartService struct {
	cart      domain.Cart
	order     *domain.OrderConfirmation
	err       error
	fetched   bool
	lastID    string
	lastQty   int
	checkouts int
	cleared   bool
}

func (s *stubCartService) FetchCart(context.Context, *domain.Session) (domain.Cart, error) {
	s.fetched = true
	return s.cart, s.err
}

func (s *stubCartService) Current(context.Context, *domain.Session) (domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ *domain.Session, id string, qty int) (domain.Cart, error) {
	s.lastID, s.lastQty = id, qty
	return s.cart, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _ *domain.Session, id string, qty int) (domain.Cart, error) {
	s.lastID, s.lastQty = id, qty
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _ *domain.Session, id string) (domain.Cart, error) {
	s.lastID = id
	return s.cart, s.err
}

func (s *stubCartService) Clear(context.Context, *domain.Session) (domain.Cart, error) {
	s.cleared = true
	return domain.EmptyCart(), s.err
}

func (s *stubCartService) Checkout(context.Context, *domain.Session) (*domain.OrderConfirmation, error) {
	s.checkouts++
	return s.order, s.err
}

type stubHistory struct {
	events []domain.CartEvent
	limit  int
}

func (h *stubHistory) History(_ context.Context, _ *domain.Session, limit int) ([]domain.CartEvent, error) {
	h.limit = limit
	return h.events, nil
}

var buyerSession = &domain.Session{ID: "s1", UserID: "b1", Role: domain.RoleBuyer, Token: "tok"}

func buyerContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	middleware.SetSession(c, buyerSession)
	return c
}

func sampleCart() domain.Cart {
	return domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: "p1", Name: "Tomatoes", UnitPrice: 2.5, Quantity: 2, AvailableStock: domain.KnownStock(5)},
			{ProductID: "p2", Name: "Onions", UnitPrice: 1, Quantity: 3, AvailableStock: domain.KnownStock(3)},
		},
		Total: 8,
	}
}

func TestCartHandler_Get(t *testing.T) {
	stub := &stubCartService{cart: sampleCart()}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	rec := httptest.NewRecorder()
	c := buyerContext(e, httptest.NewRequest(http.MethodGet, "/api/cart", nil), rec)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.fetched {
		t.Error("plain get must use the cached cart")
	}

	var resp struct {
		Lines []struct {
			ProductID string  `json:"product_id"`
			Subtotal  float64 `json:"subtotal"`
		} `json:"lines"`
		Total     float64 `json:"total"`
		ItemCount int     `json:"item_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 8 || resp.ItemCount != 5 || len(resp.Lines) != 2 || resp.Lines[0].Subtotal != 5 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCartHandler_GetRefresh(t *testing.T) {
	stub := &stubCartService{cart: domain.EmptyCart()}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	rec := httptest.NewRecorder()
	c := buyerContext(e, httptest.NewRequest(http.MethodGet, "/api/cart?refresh=true", nil), rec)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.fetched {
		t.Error("refresh must fetch from the market api")
	}
	if got := rec.Body.String(); got != "{\"lines\":[],\"total\":0,\"item_count\":0}\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	stub := &stubCartService{cart: sampleCart()}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	rec := httptest.NewRecorder()
	c := buyerContext(e, jsonRequest(http.MethodPost, "/api/cart/items", `{"product_id":"p1","quantity":2}`), rec)

	if err := h.AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastID != "p1" || stub.lastQty != 2 {
		t.Errorf("unexpected call %s x%d", stub.lastID, stub.lastQty)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCartHandler_AddItem_MissingProduct(t *testing.T) {
	stub := &stubCartService{}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	c := buyerContext(e, jsonRequest(http.MethodPost, "/api/cart/items", `{"quantity":2}`), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := h.AddItem(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if stub.lastID != "" {
		t.Error("service must not be called")
	}
}

func TestCartHandler_UpdateItem_UsesPathParam(t *testing.T) {
	stub := &stubCartService{cart: sampleCart()}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	c := buyerContext(e, jsonRequest(http.MethodPut, "/api/cart/items/p2", `{"quantity":1}`), httptest.NewRecorder())
	c.SetParamNames("product_id")
	c.SetParamValues("p2")

	if err := h.UpdateItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastID != "p2" || stub.lastQty != 1 {
		t.Errorf("unexpected call %s x%d", stub.lastID, stub.lastQty)
	}
}

func TestCartHandler_UpdateItem_PropagatesDomainError(t *testing.T) {
	stub := &stubCartService{err: domain.ErrStockExceeded}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	c := buyerContext(e, jsonRequest(http.MethodPut, "/api/cart/items/p1", `{"quantity":9}`), httptest.NewRecorder())
	c.SetParamNames("product_id")
	c.SetParamValues("p1")

	if err := h.UpdateItem(c); !errors.Is(err, domain.ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}
}

func TestCartHandler_Clear(t *testing.T) {
	stub := &stubCartService{}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	rec := httptest.NewRecorder()

	if err := h.Clear(buyerContext(e, httptest.NewRequest(http.MethodDelete, "/api/cart", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.cleared {
		t.Error("expected the cart service to be asked")
	}
	if got := rec.Body.String(); got != "{\"lines\":[],\"total\":0,\"item_count\":0}\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestCartHandler_Checkout(t *testing.T) {
	stub := &stubCartService{order: &domain.OrderConfirmation{OrderID: "o1", Total: 8, Status: "pending"}}
	h := NewCartHandler(stub, &stubHistory{})
	e := newEcho()
	rec := httptest.NewRecorder()
	c := buyerContext(e, httptest.NewRequest(http.MethodPost, "/api/cart/checkout", nil), rec)

	if err := h.Checkout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Order placed successfully" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCartHandler_History(t *testing.T) {
	hist := &stubHistory{}
	h := NewCartHandler(&stubCartService{}, hist)
	e := newEcho()
	rec := httptest.NewRecorder()
	c := buyerContext(e, httptest.NewRequest(http.MethodGet, "/api/cart/history?limit=5", nil), rec)

	if err := h.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if hist.limit != 5 {
		t.Errorf("expected limit 5, got %d", hist.limit)
	}
	if got := rec.Body.String(); got != "{\"events\":[]}\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestCartHandler_NoSession(t *testing.T) {
	h := NewCartHandler(&stubCartService{}, &stubHistory{})
	e := newEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/cart", nil), httptest.NewRecorder())

	if err := h.Get(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
