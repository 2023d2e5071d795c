package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// CatalogService lists marketplace products. Filters are checked locally
// before the market API is asked.
type CatalogService struct {
	api      ports.CatalogAPI
	sessions ports.SessionInvalidator
	logger   zerolog.Logger
}

func NewCatalogService(api ports.CatalogAPI, sessions ports.SessionInvalidator, logger zerolog.Logger) *CatalogService {
	return &CatalogService{api: api, sessions: sessions, logger: logger}
}

func (s *CatalogService) Products(ctx context.Context, sess *domain.Session, filter domain.ProductFilter) ([]domain.Product, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products, err := s.api.ListProducts(ctx, sess.Token, filter)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", sess.UserID).Str("kind", string(domain.KindOf(err))).Msg("list products failed")
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
