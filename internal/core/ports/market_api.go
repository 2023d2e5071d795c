package ports

import (
	"context"
	"encoding/json"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// Credentials are forwarded to the market API login endpoint.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries a new account for the market API.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Location string
	Phone    string
}

// LoginResult is what the market API returns on a successful login.
type LoginResult struct {
	Token string
	User  domain.User
}

// NewTradeInput is the farmer-side trade creation payload.
type NewTradeInput struct {
	ProductID string
	Quantity  int
	Amount    float64
}

// AuthAPI is the authentication part of the market API.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) error
}

// CartAPI is the cart part of the market API. Every mutation returns the
// authoritative cart snapshot.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (domain.Cart, error)
	AddToCart(ctx context.Context, token, productID string, quantity int) (domain.Cart, error)
	UpdateCartItem(ctx context.Context, token, productID string, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, token, productID string) (domain.Cart, error)
	ClearCart(ctx context.Context, token string) (domain.Cart, error)
	Checkout(ctx context.Context, token string) (*domain.OrderConfirmation, error)
}

// TradeAPI is the trade part of the market API.
type TradeAPI interface {
	ListTrades(ctx context.Context, token string) ([]domain.Trade, error)
	CreateTrade(ctx context.Context, token string, in NewTradeInput) (*domain.Trade, error)
	UpdateTradeStatus(ctx context.Context, token, tradeID string, status domain.TradeStatus) (*domain.Trade, error)
}

// CatalogAPI lists the marketplace products.
type CatalogAPI interface {
	ListProducts(ctx context.Context, token string, filter domain.ProductFilter) ([]domain.Product, error)
}

// OrderAPI reads the buyer's placed orders.
type OrderAPI interface {
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// ExpenseAPI is the farmer expense ledger of the market API.
type ExpenseAPI interface {
	ListExpenses(ctx context.Context, token string) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, token string, in domain.ExpenseInput) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, token, expenseID string, in domain.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, token, expenseID string) error
	ExpenseAnalytics(ctx context.Context, token string, period domain.AnalyticsPeriod) (*domain.ExpenseAnalytics, error)
}

// InsightAPI proxies the opaque chat and analytics endpoints.
type InsightAPI interface {
	Chat(ctx context.Context, token, message string) (json.RawMessage, error)
	Analytics(ctx context.Context, token string, request json.RawMessage) (json.RawMessage, error)
	SalesAnalytics(ctx context.Context, token string, period domain.AnalyticsPeriod) (json.RawMessage, error)
	InventoryAnalytics(ctx context.Context, token string) (json.RawMessage, error)
}

// MarketAPI is the full REST backend.
type MarketAPI interface {
	AuthAPI
	CartAPI
	TradeAPI
	CatalogAPI
	OrderAPI
	ExpenseAPI
	InsightAPI
}
