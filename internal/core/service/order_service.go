package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

type OrderService struct {
	api      ports.OrderAPI
	sessions ports.SessionInvalidator
	logger   zerolog.Logger
}

func NewOrderService(api ports.OrderAPI, sessions ports.SessionInvalidator, logger zerolog.Logger) *OrderService {
	return &OrderService{api: api, sessions: sessions, logger: logger}
}

// List returns the buyer's orders, newest first.
func (s *OrderService) List(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	orders, err := s.api.ListOrders(ctx, sess.Token)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", sess.UserID).Str("kind", string(domain.KindOf(err))).Msg("list orders failed")
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("list orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
