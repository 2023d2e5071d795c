package domain

import (
	"errors"
	"testing"
)

func TestExpenseInput_Normalize(t *testing.T) {
	in, err := ExpenseInput{Category: " Labor ", Amount: 120.5, Date: "2024-03-01", Description: " harvest crew "}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Category != "Labor" || in.Description != "harvest crew" {
		t.Errorf("input not trimmed: %+v", in)
	}
}

func TestExpenseInput_NormalizeRejects(t *testing.T) {
	cases := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"missing category", ExpenseInput{Amount: 1, Date: "2024-03-01"}, ErrValidation},
		{"zero amount", ExpenseInput{Category: "Labor", Date: "2024-03-01"}, ErrInvalidAmount},
		{"negative amount", ExpenseInput{Category: "Labor", Amount: -3, Date: "2024-03-01"}, ErrInvalidAmount},
		{"bad date", ExpenseInput{Category: "Labor", Amount: 3, Date: "01/03/2024"}, ErrInvalidExpenseDate},
		{"missing date", ExpenseInput{Category: "Labor", Amount: 3}, ErrInvalidExpenseDate},
	}
	for _, tc := range cases {
		if _, err := tc.in.Normalize(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != PeriodMonthly {
		t.Errorf("empty period: expected monthly, got %q %v", p, err)
	}
	if p, err := ParsePeriod(" Weekly "); err != nil || p != PeriodWeekly {
		t.Errorf("expected weekly, got %q %v", p, err)
	}
	if _, err := ParsePeriod("hourly"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}
