package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

type wireExpense struct {
	ID          string  `json:"id"`
	MongoID     string  `json:"_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func (w wireExpense) toDomain() domain.Expense {
	return domain.Expense{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Category:    w.Category,
		Amount:      w.Amount,
		Date:        calendarDate(w.Date),
		Description: w.Description,
	}
}

// calendarDate reduces a stored timestamp such as 2024-03-01T00:00:00.000Z
// to its date. Values that do not start with a date are kept as sent.
func calendarDate(s string) string {
	if len(s) < len(domain.ExpenseDateLayout) {
		return s
	}
	d := s[:len(domain.ExpenseDateLayout)]
	if _, err := time.Parse(domain.ExpenseDateLayout, d); err != nil {
		return s
	}
	return d
}

// expenseEnvelope accepts {"expense": {...}} as well as a bare expense.
type expenseEnvelope struct {
	Expense *wireExpense `json:"expense"`
	wireExpense
}

func (e expenseEnvelope) toDomain() *domain.Expense {
	we := e.wireExpense
	if e.Expense != nil {
		we = *e.Expense
	}
	exp := we.toDomain()
	return &exp
}

type expenseRequest struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func toExpenseRequest(in domain.ExpenseInput) expenseRequest {
	return expenseRequest{Category: in.Category, Amount: in.Amount, Date: in.Date, Description: in.Description}
}

// decodeExpenses accepts a bare array or {"expenses": [...]}.
func decodeExpenses(raw json.RawMessage) ([]domain.Expense, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Expense{}, nil
	}

	var list []wireExpense
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Expenses []wireExpense `json:"expenses"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		list = env.Expenses
	}

	expenses := make([]domain.Expense, 0, len(list))
	for _, we := range list {
		expenses = append(expenses, we.toDomain())
	}
	return expenses, nil
}

func (cl *Client) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	var raw json.RawMessage
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/expenses", endpoint: "/expenses", token: token}, &raw); err != nil {
		return nil, err
	}
	expenses, err := decodeExpenses(raw)
	if err != nil {
		return nil, domain.NewError(domain.KindServer, "invalid expenses response from market api", err)
	}
	return expenses, nil
}

func (cl *Client) CreateExpense(ctx context.Context, token string, in domain.ExpenseInput) (*domain.Expense, error) {
	var resp expenseEnvelope
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/expenses",
		endpoint: "/expenses",
		token:    token,
		body:     toExpenseRequest(in),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (cl *Client) UpdateExpense(ctx context.Context, token, expenseID string, in domain.ExpenseInput) (*domain.Expense, error) {
	var resp expenseEnvelope
	err := cl.do(ctx, call{
		method:   http.MethodPut,
		path:     "/expenses/" + url.PathEscape(expenseID),
		endpoint: "/expenses/{id}",
		token:    token,
		body:     toExpenseRequest(in),
	}, &resp)
	if err != nil {
		return nil, err
	}

	exp := resp.toDomain()
	if exp.ID == "" {
		exp.ID = expenseID
	}
	return exp, nil
}

func (cl *Client) DeleteExpense(ctx context.Context, token, expenseID string) error {
	return cl.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/expenses/" + url.PathEscape(expenseID),
		endpoint: "/expenses/{id}",
		token:    token,
	}, nil)
}

type wireExpenseAnalytics struct {
	TotalExpenses     float64 `json:"totalExpenses"`
	ExpenseChange     float64 `json:"expenseChange"`
	ExpensesThisMonth float64 `json:"expensesThisMonth"`
	CategoryBreakdown []struct {
		Category   string  `json:"category"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	} `json:"categoryBreakdown"`
}

func (cl *Client) ExpenseAnalytics(ctx context.Context, token string, period domain.AnalyticsPeriod) (*domain.ExpenseAnalytics, error) {
	var resp wireExpenseAnalytics
	err := cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/analytics/expenses?" + url.Values{"period": {string(period)}}.Encode(),
		endpoint: "/analytics/expenses",
		token:    token,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &domain.ExpenseAnalytics{
		Period:            period,
		TotalExpenses:     resp.TotalExpenses,
		ExpenseChange:     resp.ExpenseChange,
		ExpensesThisMonth: resp.ExpensesThisMonth,
		CategoryBreakdown: make([]domain.CategoryAmount, 0, len(resp.CategoryBreakdown)),
	}
	for _, c := range resp.CategoryBreakdown {
		out.CategoryBreakdown = append(out.CategoryBreakdown, domain.CategoryAmount{
			Category:   c.Category,
			Amount:     c.Amount,
			Percentage: c.Percentage,
		})
	}
	return out, nil
}
