package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

var errProductRequired = domain.NewError(domain.KindValidation, "product id is required", nil)

// CartService keeps each buyer's cart identical to the last snapshot returned
// by the market API. The cached snapshot is only replaced after the market
// API accepted a call, so a failed call leaves it untouched.
type CartService struct {
	api      ports.CartAPI
	cache    ports.CartCache
	locks    ports.LineLocker
	audit    ports.AuditSink
	sessions ports.SessionInvalidator
	logger   zerolog.Logger

	fetches singleflight.Group
	now     func() time.Time
}

func NewCartService(
	api ports.CartAPI,
	cache ports.CartCache,
	locks ports.LineLocker,
	audit ports.AuditSink,
	sessions ports.SessionInvalidator,
	logger zerolog.Logger,
) *CartService {
	return &CartService{
		api:      api,
		cache:    cache,
		locks:    locks,
		audit:    audit,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchCart retrieves the authoritative snapshot. Concurrent fetches for the
// same buyer share one upstream request, which is detached from any single
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func (s *CartService) FetchCart(ctx context.Context, sess *domain.Session) (domain.Cart, error) {
	ch := s.fetches.DoChan(sess.UserID, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		cart, err := s.api.GetCart(fetchCtx, sess.Token)
		if err != nil {
			return nil, err
		}
		s.store(fetchCtx, sess, cart)
		return cart, nil
	})

	select {
	case <-ctx.Done():
		return domain.Cart{}, fmt.Errorf("fetch cart: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Cart{}, s.fail(ctx, sess, "fetch cart", res.Err)
		}
		return res.Val.(domain.Cart).Clone(), nil
	}
}

// Current returns the last known cart, fetching it when nothing is cached.
func (s *CartService) Current(ctx context.Context, sess *domain.Session) (domain.Cart, error) {
	cart, ok, err := s.cache.Get(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", sess.UserID).Msg("cart cache read failed, fetching from market api")
	} else if ok {
		return cart, nil
	}
	return s.FetchCart(ctx, sess)
}

// AddItem asks the market API to add quantity units of productID. Stock is
// validated by the server.
func (s *CartService) AddItem(ctx context.Context, sess *domain.Session, productID string, quantity int) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Cart{}, fmt.Errorf("add item: %w", errProductRequired)
	}
	if quantity < 1 {
		return domain.Cart{}, fmt.Errorf("add item: %w", domain.ErrInvalidQuantity)
	}

	var cart domain.Cart
	err := s.withLock(ctx, lineKey(sess.UserID, productID), func() error {
		var err error
		cart, err = s.api.AddToCart(ctx, sess.Token, productID, quantity)
		return err
	})
	if err != nil {
		return domain.Cart{}, s.fail(ctx, sess, "add item", err)
	}

	s.store(ctx, sess, cart)
	s.record(sess, domain.CartActionAdd, productID, quantity, cart.Total, "")
	s.logger.Info().Str("buyer_id", sess.UserID).Str("product_id", productID).Int("quantity", quantity).Msg("cart item added")
	return cart.Clone(), nil
}

// UpdateQuantity sets the quantity of an existing line. Zero or negative
// quantities are rejected, never treated as a removal. An increase beyond
// the last known stock is rejected without calling the market API; lines
// whose stock was never reported are left to the server to validate.
func (s *CartService) UpdateQuantity(ctx context.Context, sess *domain.Session, productID string, quantity int) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Cart{}, fmt.Errorf("update quantity: %w", errProductRequired)
	}
	if quantity < 1 {
		return domain.Cart{}, fmt.Errorf("update quantity: %w", domain.ErrInvalidQuantity)
	}

	line, err := s.findLine(ctx, sess, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if stock, ok := line.StockLimit(); ok && quantity > line.Quantity && quantity > stock {
		return domain.Cart{}, fmt.Errorf("update quantity: %w (only %d available)", domain.ErrStockExceeded, stock)
	}

	var cart domain.Cart
	err = s.withLock(ctx, lineKey(sess.UserID, productID), func() error {
		var err error
		cart, err = s.api.UpdateCartItem(ctx, sess.Token, productID, quantity)
		return err
	})
	if err != nil {
		return domain.Cart{}, s.fail(ctx, sess, "update quantity", err)
	}

	s.store(ctx, sess, cart)
	s.record(sess, domain.CartActionUpdate, productID, quantity, cart.Total, "")
	s.logger.Info().Str("buyer_id", sess.UserID).Str("product_id", productID).Int("quantity", quantity).Msg("cart quantity updated")
	return cart.Clone(), nil
}

// RemoveItem deletes a line. This is the only way a line leaves the cart
// apart from checkout.
func (s *CartService) RemoveItem(ctx context.Context, sess *domain.Session, productID string) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Cart{}, fmt.Errorf("remove item: %w", errProductRequired)
	}

	var cart domain.Cart
	err := s.withLock(ctx, lineKey(sess.UserID, productID), func() error {
		var err error
		cart, err = s.api.RemoveFromCart(ctx, sess.Token, productID)
		return err
	})
	if err != nil {
		return domain.Cart{}, s.fail(ctx, sess, "remove item", err)
	}

	s.store(ctx, sess, cart)
	s.record(sess, domain.CartActionRemove, productID, 0, cart.Total, "")
	s.logger.Info().Str("buyer_id", sess.UserID).Str("product_id", productID).Msg("cart item removed")
	return cart.Clone(), nil
}

// Clear empties the whole cart. It shares the checkout lock, so it cannot
// overlap a checkout of the same buyer.
func (s *CartService) Clear(ctx context.Context, sess *domain.Session) (domain.Cart, error) {
	var cart domain.Cart
	err := s.withLock(ctx, checkoutKey(sess.UserID), func() error {
		var err error
		cart, err = s.api.ClearCart(ctx, sess.Token)
		return err
	})
	if err != nil {
		return domain.Cart{}, s.fail(ctx, sess, "clear cart", err)
	}

	s.store(ctx, sess, cart)
	s.record(sess, domain.CartActionClear, "", 0, cart.Total, "")
	s.logger.Info().Str("buyer_id", sess.UserID).Msg("cart cleared")
	return cart.Clone(), nil
}

// Checkout places the order for the whole cart. The cached cart is cleared
// only after the market API confirmed the order.
func (s *CartService) Checkout(ctx context.Context, sess *domain.Session) (*domain.OrderConfirmation, error) {
	current, err := s.Current(ctx, sess)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, fmt.Errorf("checkout: %w", domain.ErrEmptyCart)
	}

	var order *domain.OrderConfirmation
	err = s.withLock(ctx, checkoutKey(sess.UserID), func() error {
		var err error
		order, err = s.api.Checkout(ctx, sess.Token)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, sess, "checkout", err)
	}

	s.store(ctx, sess, domain.EmptyCart())
	total := order.Total
	if total == 0 {
		total = current.Total
	}
	s.record(sess, domain.CartActionCheckout, "", 0, total, order.OrderID)
	s.logger.Info().Str("buyer_id", sess.UserID).Str("order_id", order.OrderID).Float64("total", total).Msg("checkout completed")
	return order, nil
}

// findLine looks productID up in the cached cart, refreshing the snapshot once
// when the cache is cold or does not hold the line.
func (s *CartService) findLine(ctx context.Context, sess *domain.Session, productID string) (domain.CartLine, error) {
	cached, hit, err := s.cache.Get(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", sess.UserID).Msg("cart cache read failed, fetching from market api")
	}
	if hit {
		if line, ok := cached.Line(productID); ok {
			return line, nil
		}
	}

	fresh, err := s.FetchCart(ctx, sess)
	if err != nil {
		return domain.CartLine{}, err
	}
	if line, ok := fresh.Line(productID); ok {
		return line, nil
	}
	return domain.CartLine{}, fmt.Errorf("update quantity: %w", domain.ErrLineNotFound)
}

// withLock runs fn while holding key. A second mutation on the same key gets
// ErrMutationInFlight. If the lock store is unreachable fn runs unguarded.
func (s *CartService) withLock(ctx context.Context, key string, fn func() error) error {
	token, ok, err := s.locks.TryLock(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("lock", key).Msg("cart lock unavailable, proceeding without it")
		return fn()
	}
	if !ok {
		return domain.ErrMutationInFlight
	}
	defer func() {
		if err := s.locks.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn().Err(err).Str("lock", key).Msg("failed to release cart lock")
		}
	}()
	return fn()
}

func (s *CartService) store(ctx context.Context, sess *domain.Session, cart domain.Cart) {
	if err := s.cache.Put(ctx, sess.UserID, cart); err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", sess.UserID).Msg("failed to cache cart snapshot")
	}
}

func (s *CartService) record(sess *domain.Session, action domain.CartAction, productID string, quantity int, total float64, orderID string) {
	s.audit.Record(domain.CartEvent{
		BuyerID:   sess.UserID,
		Action:    action,
		ProductID: productID,
		Quantity:  quantity,
		Total:     total,
		OrderID:   orderID,
		At:        s.now().UTC(),
	})
}

func (s *CartService) fail(ctx context.Context, sess *domain.Session, op string, err error) error {
	s.logger.Warn().Err(err).Str("buyer_id", sess.UserID).Str("kind", string(domain.KindOf(err))).Msg(op + " failed")
	expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
	return fmt.Errorf("%s: %w", op, err)
}

func lineKey(buyerID, productID string) string {
	return "cart:" + buyerID + ":" + productID
}

func checkoutKey(buyerID string) string {
	return "checkout:" + buyerID
}
