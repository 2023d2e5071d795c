package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

var errExpenseIDRequired = domain.NewError(domain.KindValidation, "expense id is required", nil)

// ExpenseService manages the farmer's expense ledger. Input is validated
// before any call; a 404 on update or delete becomes ErrExpenseNotFound.
type ExpenseService struct {
	api      ports.ExpenseAPI
	sessions ports.SessionInvalidator
	logger   zerolog.Logger
}

func NewExpenseService(api ports.ExpenseAPI, sessions ports.SessionInvalidator, logger zerolog.Logger) *ExpenseService {
	return &ExpenseService{api: api, sessions: sessions, logger: logger}
}

func (s *ExpenseService) List(ctx context.Context, sess *domain.Session) ([]domain.Expense, error) {
	expenses, err := s.api.ListExpenses(ctx, sess.Token)
	if err != nil {
		return nil, s.fail(ctx, sess, "list expenses", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, sess *domain.Session, in domain.ExpenseInput) (*domain.Expense, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	exp, err := s.api.CreateExpense(ctx, sess.Token, in)
	if err != nil {
		return nil, s.fail(ctx, sess, "create expense", err)
	}

	s.logger.Info().Str("expense_id", exp.ID).Str("category", in.Category).Float64("amount", in.Amount).Msg("expense recorded")
	return exp, nil
}

func (s *ExpenseService) Update(ctx context.Context, sess *domain.Session, expenseID string, in domain.ExpenseInput) (*domain.Expense, error) {
	expenseID = strings.TrimSpace(expenseID)
	if expenseID == "" {
		return nil, fmt.Errorf("update expense: %w", errExpenseIDRequired)
	}
	in, err := in.Normalize()
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	exp, err := s.api.UpdateExpense(ctx, sess.Token, expenseID, in)
	if err != nil {
		return nil, s.fail(ctx, sess, "update expense", notFoundAs(err, domain.ErrExpenseNotFound))
	}

	s.logger.Info().Str("expense_id", expenseID).Msg("expense updated")
	return exp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, sess *domain.Session, expenseID string) error {
	expenseID = strings.TrimSpace(expenseID)
	if expenseID == "" {
		return fmt.Errorf("delete expense: %w", errExpenseIDRequired)
	}

	if err := s.api.DeleteExpense(ctx, sess.Token, expenseID); err != nil {
		return s.fail(ctx, sess, "delete expense", notFoundAs(err, domain.ErrExpenseNotFound))
	}

	s.logger.Info().Str("expense_id", expenseID).Msg("expense deleted")
	return nil
}

// Analytics returns the expense report for period (daily, weekly, monthly
// or yearly; empty means monthly).
func (s *ExpenseService) Analytics(ctx context.Context, sess *domain.Session, period string) (*domain.ExpenseAnalytics, error) {
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("expense analytics: %w", err)
	}

	out, err := s.api.ExpenseAnalytics(ctx, sess.Token, p)
	if err != nil {
		return nil, s.fail(ctx, sess, "expense analytics", err)
	}
	return out, nil
}

func (s *ExpenseService) fail(ctx context.Context, sess *domain.Session, op string, err error) error {
	s.logger.Warn().Err(err).Str("user_id", sess.UserID).Str("kind", string(domain.KindOf(err))).Msg(op + " failed")
	expireOnUnauthorized(ctx, s.sessions, sess, s.logger, err)
	return fmt.Errorf("%s: %w", op, err)
}

// notFoundAs replaces a generic not_found from the market API with the
// named sentinel, keeping the upstream error in the chain.
func notFoundAs(err error, named *domain.Error) error {
	if domain.KindOf(err) != domain.KindNotFound {
		return err
	}
	return fmt.Errorf("%w: %w", named, err)
}
