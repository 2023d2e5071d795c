package ports

import (
	"context"
	"encoding/json"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// TradeService exposes the farmer's trades.
type TradeService interface {
	List(ctx context.Context, sess *domain.Session) ([]domain.Trade, error)
	Summary(ctx context.Context, sess *domain.Session) (domain.TradeSummary, error)
	Create(ctx context.Context, sess *domain.Session, in NewTradeInput) (*domain.Trade, error)
	UpdateStatus(ctx context.Context, sess *domain.Session, tradeID, status string) (*domain.Trade, error)
}

// ExpenseService manages the farmer's expense ledger.
type ExpenseService interface {
	List(ctx context.Context, sess *domain.Session) ([]domain.Expense, error)
	Create(ctx context.Context, sess *domain.Session, in domain.ExpenseInput) (*domain.Expense, error)
	Update(ctx context.Context, sess *domain.Session, expenseID string, in domain.ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, sess *domain.Session, expenseID string) error
	Analytics(ctx context.Context, sess *domain.Session, period string) (*domain.ExpenseAnalytics, error)
}

// CatalogService lists marketplace products for any signed-in user.
type CatalogService interface {
	Products(ctx context.Context, sess *domain.Session, filter domain.ProductFilter) ([]domain.Product, error)
}

// InsightService forwards chat and analytics requests unchanged.
type InsightService interface {
	Chat(ctx context.Context, sess *domain.Session, message string) (json.RawMessage, error)
	Analytics(ctx context.Context, sess *domain.Session, request json.RawMessage) (json.RawMessage, error)
	Sales(ctx context.Context, sess *domain.Session, period string) (json.RawMessage, error)
	Inventory(ctx context.Context, sess *domain.Session) (json.RawMessage, error)
}
