package ports

import (
	"context"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// CartCache holds the last snapshot the market API returned for each buyer.
type CartCache interface {
	Get(ctx context.Context, buyerID string) (domain.Cart, bool, error)
	Put(ctx context.Context, buyerID string, cart domain.Cart) error
	Delete(ctx context.Context, buyerID string) error
}

// LineLocker serialises mutations on the same cart line. TryLock returns a
// token that must be passed back to Unlock.
type LineLocker interface {
	TryLock(ctx context.Context, key string) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// AuditSink accepts cart events without blocking the caller.
type AuditSink interface {
	Record(event domain.CartEvent)
}

// CartEventRepository persists the cart audit trail.
type CartEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.CartEvent) error
	ListByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.CartEvent, error)
}

// CartService owns the cart lifecycle of the session's buyer. On failure the
// cached cart is left exactly as it was.
type CartService interface {
	FetchCart(ctx context.Context, sess *domain.Session) (domain.Cart, error)
	Current(ctx context.Context, sess *domain.Session) (domain.Cart, error)
	AddItem(ctx context.Context, sess *domain.Session, productID string, quantity int) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, sess *domain.Session, productID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, sess *domain.Session, productID string) (domain.Cart, error)
	Clear(ctx context.Context, sess *domain.Session) (domain.Cart, error)
	Checkout(ctx context.Context, sess *domain.Session) (*domain.OrderConfirmation, error)
}

// CartHistory reads back the session buyer's audit trail.
type CartHistory interface {
	History(ctx context.Context, sess *domain.Session, limit int) ([]domain.CartEvent, error)
}

// OrderService lists the session buyer's placed orders.
type OrderService interface {
	List(ctx context.Context, sess *domain.Session) ([]domain.Order, error)
}
