package service

import (
	"context"
	"fmt"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// CartHistoryService serves the audit trail written by the audit dispatcher.
type CartHistoryService struct {
	repo ports.CartEventRepository
}

func NewCartHistoryService(repo ports.CartEventRepository) *CartHistoryService {
	return &CartHistoryService{repo: repo}
}

// History returns the buyer's most recent cart events, newest first.
func (s *CartHistoryService) History(ctx context.Context, sess *domain.Session, limit int) ([]domain.CartEvent, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	events, err := s.repo.ListByBuyer(ctx, sess.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("cart history: %w", err)
	}
	return events, nil
}
