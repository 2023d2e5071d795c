package domain

import "time"

// CartAction names a successful cart mutation.
type CartAction string

const (
	CartActionAdd      CartAction = "add"
	CartActionUpdate   CartAction = "update"
	CartActionRemove   CartAction = "remove"
	CartActionCheckout CartAction = "checkout"
	CartActionClear    CartAction = "clear"
)

// CartEvent is the audit record of a cart mutation accepted by the market API.
type CartEvent struct {
	BuyerID   string     `json:"buyer_id"`
	Action    CartAction `json:"action"`
	ProductID string     `json:"product_id,omitempty"` // empty for checkout and clear
	Quantity  int        `json:"quantity,omitempty"`
	Total     float64    `json:"total"`
	OrderID   string     `json:"order_id,omitempty"` // set for checkout
	At        time.Time  `json:"at"`
}
