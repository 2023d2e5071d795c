package domain

import (
	"math"
	"strings"
	"time"
)

// ExpenseDateLayout is the calendar date format used for expenses.
const ExpenseDateLayout = "2006-01-02"

// ExpenseCategories are the categories offered by the expenses view. The
// market API accepts free text, so other values pass validation.
var ExpenseCategories = []string{
	"Seeds & Plants",
	"Equipment",
	"Fertilizers",
	"Pesticides",
	"Labor",
	"Utilities",
	"Transportation",
	"Other",
}

// Expense is a farm cost recorded by a farmer.
type Expense struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
}

// ExpenseInput is the payload for creating or replacing an expense.
type ExpenseInput struct {
	Category    string
	Amount      float64
	Date        string
	Description string
}

// Normalize trims the input and checks category, amount and date.
func (in ExpenseInput) Normalize() (ExpenseInput, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)

	switch {
	case in.Category == "":
		return ExpenseInput{}, NewError(KindValidation, "category is required", nil)
	case in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0):
		return ExpenseInput{}, ErrInvalidAmount
	}
	if _, err := time.Parse(ExpenseDateLayout, in.Date); err != nil {
		return ExpenseInput{}, ErrInvalidExpenseDate
	}
	return in, nil
}

// AnalyticsPeriod is the reporting window of farmer analytics.
type AnalyticsPeriod string

const (
	PeriodDaily   AnalyticsPeriod = "daily"
	PeriodWeekly  AnalyticsPeriod = "weekly"
	PeriodMonthly AnalyticsPeriod = "monthly"
	PeriodYearly  AnalyticsPeriod = "yearly"
)

// ParsePeriod accepts daily, weekly, monthly or yearly. Empty means monthly.
func ParsePeriod(s string) (AnalyticsPeriod, error) {
	switch p := AnalyticsPeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodMonthly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// CategoryAmount is one slice of the expense breakdown.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// ExpenseAnalytics is the market API's expense report for a period.
type ExpenseAnalytics struct {
	Period            AnalyticsPeriod  `json:"period"`
	TotalExpenses     float64          `json:"total_expenses"`
	ExpenseChange     float64          `json:"expense_change"`
	ExpensesThisMonth float64          `json:"expenses_this_month"`
	CategoryBreakdown []CategoryAmount `json:"category_breakdown"`
}
