package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// InsightService relays chat, AI analytics and the farmer's sales and
// inventory reports. Their payloads are owned by the backend and pass
// through unchanged.
type InsightService struct {
	api      ports.InsightAPI
	sessions ports.SessionInvalidator
	logger   zerolog.Logger
}

func NewInsightService(api ports.InsightAPI, sessions ports.SessionInvalidator, logger zerolog.Logger) *InsightService {
	return &InsightService{api: api, sessions: sessions, logger: logger}
}

func (s *InsightService) Chat(ctx context.Context, sess *domain.Session, message string) (json.RawMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewError(domain.KindValidation, "message is required", nil)
	}

	out, err := s.api.Chat(ctx, sess.Token, message)
	if err != nil {
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("chat: %w", err)
	}
	return out, nil
}

func (s *InsightService) Analytics(ctx context.Context, sess *domain.Session, request json.RawMessage) (json.RawMessage, error) {
	if len(request) == 0 || !json.Valid(request) {
		return nil, domain.NewError(domain.KindValidation, "analytics request must be a JSON document", nil)
	}

	out, err := s.api.Analytics(ctx, sess.Token, request)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("ai analytics failed")
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("ai analytics: %w", err)
	}
	return out, nil
}

// Sales returns the farmer's sales report for period unchanged.
func (s *InsightService) Sales(ctx context.Context, sess *domain.Session, period string) (json.RawMessage, error) {
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("sales analytics: %w", err)
	}

	out, err := s.api.SalesAnalytics(ctx, sess.Token, p)
	if err != nil {
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("sales analytics: %w", err)
	}
	return out, nil
}

func (s *InsightService) Inventory(ctx context.Context, sess *domain.Session) (json.RawMessage, error) {
	out, err := s.api.InventoryAnalytics(ctx, sess.Token)
	if err != nil {
		expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
		return nil, fmt.Errorf("inventory analytics: %w", err)
	}
	return out, nil
}
