package domain

import "time"

// CartLine is one product entry in a buyer's cart.
// The server guarantees 1 <= Quantity <= AvailableStock. AvailableStock is
// nil when the market API did not report stock for the line.
type CartLine struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int     `json:"quantity"`
	AvailableStock *int    `json:"available_stock,omitempty"`
	Image          string  `json:"image,omitempty"`
}

// KnownStock returns n as a reported stock figure.
func KnownStock(n int) *int {
	return &n
}

// StockLimit returns the last stock the server reported for the line.
func (l CartLine) StockLimit() (int, bool) {
	if l.AvailableStock == nil {
		return 0, false
	}
	return *l.AvailableStock, true
}

// Subtotal is the display value of the line. The authoritative figure is Cart.Total.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is the last snapshot returned by the market API. Total is taken from
// the server as-is and never recomputed locally.
type Cart struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// EmptyCart returns a cart with no lines and a zero total.
func EmptyCart() Cart {
	return Cart{Lines: []CartLine{}, Total: 0}
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID, if present.
func (c Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Clone returns a deep copy so cached snapshots cannot be mutated by callers.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if n, ok := lines[i].StockLimit(); ok {
			lines[i].AvailableStock = KnownStock(n)
		}
	}
	return Cart{Lines: lines, Total: c.Total}
}

// OrderConfirmation is returned by a successful checkout.
type OrderConfirmation struct {
	OrderID   string    `json:"order_id"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
