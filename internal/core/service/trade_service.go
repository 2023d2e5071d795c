package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

type TradeService struct {
	api      ports.TradeAPI
	sessions ports.SessionInvalidator
	logger   zerolog.Logger
}

func NewTradeService(api ports.TradeAPI, sessions ports.SessionInvalidator, logger zerolog.Logger) *TradeService {
	return &TradeService{api: api, sessions: sessions, logger: logger}
}

func (s *TradeService) List(ctx context.Context, sess *domain.Session) ([]domain.Trade, error) {
	trades, err := s.api.ListTrades(ctx, sess.Token)
	if err != nil {
		return nil, s.fail(ctx, sess, "list trades", err)
	}
	return trades, nil
}

// Summary aggregates the farmer's trades for the dashboard.
func (s *TradeService) Summary(ctx context.Context, sess *domain.Session) (domain.TradeSummary, error) {
	trades, err := s.List(ctx, sess)
	if err != nil {
		return domain.TradeSummary{}, err
	}
	return domain.SummarizeTrades(trades), nil
}

func (s *TradeService) Create(ctx context.Context, sess *domain.Session, in ports.NewTradeInput) (*domain.Trade, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	switch {
	case in.ProductID == "":
		return nil, fmt.Errorf("create trade: %w", errProductRequired)
	case in.Quantity < 1:
		return nil, fmt.Errorf("create trade: %w", domain.ErrInvalidQuantity)
	case in.Amount < 0:
		return nil, domain.NewError(domain.KindValidation, "amount must not be negative", nil)
	}

	trade, err := s.api.CreateTrade(ctx, sess.Token, in)
	if err != nil {
		return nil, s.fail(ctx, sess, "create trade", err)
	}

	s.logger.Info().Str("trade_id", trade.ID).Str("product_id", in.ProductID).Msg("trade created")
	return trade, nil
}

// UpdateStatus moves a trade along pending -> completed|cancelled. The
// current status is read from the market API before the update is sent.
func (s *TradeService) UpdateStatus(ctx context.Context, sess *domain.Session, tradeID, status string) (*domain.Trade, error) {
	next, err := domain.ParseTradeStatus(status)
	if err != nil {
		return nil, fmt.Errorf("update trade status: %w", err)
	}

	trades, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	var current *domain.Trade
	for i := range trades {
		if trades[i].ID == tradeID {
			current = &trades[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("update trade status: %w", domain.ErrTradeNotFound)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("update trade status: %w (from %s to %s)", domain.ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.api.UpdateTradeStatus(ctx, sess.Token, tradeID, next)
	if err != nil {
		return nil, s.fail(ctx, sess, "update trade status", err)
	}

	s.logger.Info().Str("trade_id", tradeID).Str("from", string(current.Status)).Str("to", string(next)).Msg("trade status updated")
	return updated, nil
}

func (s *TradeService) fail(ctx context.Context, sess *domain.Session, op string, err error) error {
	s.logger.Warn().Err(err).Str("user_id", sess.UserID).Str("kind", string(domain.KindOf(err))).Msg(op + " failed")
	expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
	return fmt.Errorf("%s: %w", op, err)
}
