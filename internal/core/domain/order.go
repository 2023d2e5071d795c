package domain

import "time"

// OrderStatus mirrors the market API order lifecycle.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderLine is one product of a placed order, priced at order time.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Order is a buyer's past order.
type Order struct {
	ID        string      `json:"id"`
	Lines     []OrderLine `json:"lines"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ItemCount is the number of units across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
