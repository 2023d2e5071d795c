package domain

import (
	"strings"
	"time"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeCompleted TradeStatus = "completed"
	TradeCancelled TradeStatus = "cancelled"
)

// validTradeTransitions defines the allowed state machine transitions.
// Completed and cancelled are terminal.
var validTradeTransitions = map[TradeStatus][]TradeStatus{
	TradePending: {TradeCompleted, TradeCancelled},
}

// ParseTradeStatus accepts one of pending, completed or cancelled.
func ParseTradeStatus(s string) (TradeStatus, error) {
	switch st := TradeStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TradePending, TradeCompleted, TradeCancelled:
		return st, nil
	default:
		return "", ErrInvalidTradeStatus
	}
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	for _, allowed := range validTradeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s TradeStatus) Terminal() bool {
	return len(validTradeTransitions[s]) == 0
}

// Trade is a committed purchase between a buyer and a farmer's product.
type Trade struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name,omitempty"`
	BuyerID     string      `json:"buyer_id,omitempty"`
	BuyerName   string      `json:"buyer_name,omitempty"`
	Quantity    int         `json:"quantity"`
	Amount      float64     `json:"amount"`
	Status      TradeStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TradeSummary aggregates a farmer's trades for the dashboard.
type TradeSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	Pending      int     `json:"pending_orders"`
	Completed    int     `json:"completed_orders"`
	Cancelled    int     `json:"cancelled_orders"`
}

// SummarizeTrades counts trades by status. Only completed trades add revenue.
func SummarizeTrades(trades []Trade) TradeSummary {
	var sum TradeSummary
	for _, t := range trades {
		switch t.Status {
		case TradePending:
			sum.Pending++
		case TradeCompleted:
			sum.Completed++
			sum.TotalRevenue += t.Amount
		case TradeCancelled:
			sum.Cancelled++
		}
	}
	return sum
}
