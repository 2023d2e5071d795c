package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// wireCart is a cart as the market API sends it. Older endpoints return
// lines under "items" instead of "products".
type wireCart struct {
	Products []wireLine `json:"products"`
	Items    []wireLine `json:"items"`
	Total    float64    `json:"total"`
}

// cartEnvelope accepts both {"cart": {...}} and a bare cart document.
type cartEnvelope struct {
	Cart *wireCart `json:"cart"`
	wireCart
}

// wireLine covers both line shapes: flat fields, or a product reference
// that is either an id string or a populated product document.
type wireLine struct {
	ID        string          `json:"id"`
	MongoID   string          `json:"_id"`
	ProductID string          `json:"productId"`
	Product   json.RawMessage `json:"product"`
	Name      string          `json:"name"`
	Price     *float64        `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     *int            `json:"stock"`
	Image     string          `json:"image"`
}

type wireProduct struct {
	ID      string     `json:"id"`
	MongoID string     `json:"_id"`
	Name    string     `json:"name"`
	Price   float64    `json:"price"`
	Stock   *int       `json:"stock"`
	Image   string     `json:"image"`
	Images  wireImages `json:"images"`
}

// wireImages accepts image lists sent either as URLs or as {"url": ...} objects.
type wireImages []string

func (w *wireImages) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(wireImages, 0, len(raw))
	for _, r := range raw {
		var u string
		if err := json.Unmarshal(r, &u); err == nil {
			out = append(out, u)
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(r, &obj); err == nil && obj.URL != "" {
			out = append(out, obj.URL)
		}
	}
	*w = out
	return nil
}

func (w wireImages) first() string {
	if len(w) == 0 {
		return ""
	}
	return w[0]
}

// normalizeCart is the single mapping from any wire cart to domain.Cart.
// Lines without a resolvable product or with a non-positive quantity are dropped.
func normalizeCart(env cartEnvelope) domain.Cart {
	wc := env.wireCart
	if env.Cart != nil {
		wc = *env.Cart
	}
	raw := wc.Products
	if len(raw) == 0 {
		raw = wc.Items
	}

	cart := domain.EmptyCart()
	cart.Total = wc.Total
	for _, wl := range raw {
		line, ok := normalizeLine(wl)
		if !ok {
			continue
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}

func normalizeLine(wl wireLine) (domain.CartLine, bool) {
	line := domain.CartLine{
		Name:     wl.Name,
		Quantity: wl.Quantity,
		Image:    wl.Image,
	}

	ref := bytes.TrimSpace(wl.Product)
	switch {
	case len(ref) == 0:
		line.ProductID = firstNonEmpty(wl.ProductID, wl.ID, wl.MongoID)
	case bytes.Equal(ref, []byte("null")):
		// Product was deleted upstream.
		return domain.CartLine{}, false
	case ref[0] == '"':
		var id string
		if err := json.Unmarshal(ref, &id); err != nil {
			return domain.CartLine{}, false
		}
		line.ProductID = id
	default:
		var p wireProduct
		if err := json.Unmarshal(ref, &p); err != nil {
			return domain.CartLine{}, false
		}
		line.ProductID = firstNonEmpty(p.ID, p.MongoID)
		if line.Name == "" {
			line.Name = p.Name
		}
		line.UnitPrice = p.Price
		line.AvailableStock = p.Stock
		line.Image = firstNonEmpty(line.Image, p.Image, p.Images.first())
	}

	if wl.Price != nil {
		line.UnitPrice = *wl.Price
	}
	if wl.Stock != nil {
		line.AvailableStock = wl.Stock
	}

	if line.ProductID == "" || line.Quantity < 1 {
		return domain.CartLine{}, false
	}
	return line, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (cl *Client) GetCart(ctx context.Context, token string) (domain.Cart, error) {
	return cl.cartCall(ctx, call{method: http.MethodGet, path: "/cart", endpoint: "/cart", token: token})
}

func (cl *Client) AddToCart(ctx context.Context, token, productID string, quantity int) (domain.Cart, error) {
	return cl.cartCall(ctx, call{
		method:   http.MethodPost,
		path:     "/cart/add",
		endpoint: "/cart/add",
		token:    token,
		body:     addToCartRequest{ProductID: productID, Quantity: quantity},
	})
}

func (cl *Client) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (domain.Cart, error) {
	return cl.cartCall(ctx, call{
		method:   http.MethodPut,
		path:     "/cart/update/" + url.PathEscape(productID),
		endpoint: "/cart/update/{id}",
		token:    token,
		body:     updateCartRequest{Quantity: quantity},
	})
}

func (cl *Client) RemoveFromCart(ctx context.Context, token, productID string) (domain.Cart, error) {
	return cl.cartCall(ctx, call{
		method:   http.MethodDelete,
		path:     "/cart/remove/" + url.PathEscape(productID),
		endpoint: "/cart/remove/{id}",
		token:    token,
	})
}

// ClearCart empties the cart server side. An empty response means an empty cart.
func (cl *Client) ClearCart(ctx context.Context, token string) (domain.Cart, error) {
	return cl.cartCall(ctx, call{
		method:   http.MethodDelete,
		path:     "/cart/clear",
		endpoint: "/cart/clear",
		token:    token,
	})
}

func (cl *Client) cartCall(ctx context.Context, c call) (domain.Cart, error) {
	var env cartEnvelope
	if err := cl.do(ctx, c, &env); err != nil {
		return domain.Cart{}, err
	}
	return normalizeCart(env), nil
}

type checkoutResponse struct {
	Message string     `json:"message"`
	Order   *wireOrder `json:"order"`
}

type wireOrder struct {
	ID          string     `json:"id"`
	MongoID     string     `json:"_id"`
	Products    []wireLine `json:"products"`
	Items       []wireLine `json:"items"`
	Total       float64    `json:"total"`
	TotalAmount float64    `json:"totalAmount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (o wireOrder) total() float64 {
	if o.Total != 0 {
		return o.Total
	}
	return o.TotalAmount
}

// Checkout places the order. The server empties its cart on success.
func (cl *Client) Checkout(ctx context.Context, token string) (*domain.OrderConfirmation, error) {
	var resp checkoutResponse
	err := cl.do(ctx, call{method: http.MethodPost, path: "/cart/checkout", endpoint: "/cart/checkout", token: token}, &resp)
	if err != nil {
		return nil, err
	}

	order := &domain.OrderConfirmation{Message: resp.Message, Status: "placed"}
	if o := resp.Order; o != nil {
		order.OrderID = firstNonEmpty(o.ID, o.MongoID)
		order.Total = o.total()
		if o.Status != "" {
			order.Status = o.Status
		}
		order.CreatedAt = o.CreatedAt
	}
	return order, nil
}
