package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const defaultCartTTL = 30 * time.Minute

// CartCache holds the last cart snapshot per buyer.
// Key format: cart:snapshot:<buyer_id>
type CartCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.CartCache = (*CartCache)(nil)

// NewCartCache creates a CartCache. A default TTL is applied when none is provided.
func NewCartCache(client *redis.Client, ttl time.Duration) *CartCache {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartCache{client: client, ttl: ttl}
}

func (c *CartCache) Get(ctx context.Context, buyerID string) (domain.Cart, bool, error) {
	b, err := c.client.Get(ctx, cartKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("load cart snapshot: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(b, &cart); err != nil {
		return domain.Cart{}, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return cart, true, nil
}

func (c *CartCache) Put(ctx context.Context, buyerID string, cart domain.Cart) error {
	b, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return c.client.Set(ctx, cartKey(buyerID), b, c.ttl).Err()
}

func (c *CartCache) Delete(ctx context.Context, buyerID string) error {
	return c.client.Del(ctx, cartKey(buyerID)).Err()
}

func cartKey(buyerID string) string {
	return "cart:snapshot:" + buyerID
}
