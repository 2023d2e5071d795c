package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// ExpenseHandler serves the farmer's expense ledger.
type ExpenseHandler struct {
	expenses ports.ExpenseService
}

func NewExpenseHandler(expenses ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type expenseRequest struct {
	Category    string  `json:"category"    validate:"required,max=64"`
	Amount      float64 `json:"amount"      validate:"gt=0"`
	Date        string  `json:"date"        validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=500"`
}

func (r expenseRequest) input() domain.ExpenseInput {
	return domain.ExpenseInput{Category: r.Category, Amount: r.Amount, Date: r.Date, Description: r.Description}
}

type expensesResponse struct {
	Expenses   []domain.Expense `json:"expenses"`
	Categories []string         `json:"categories"`
}

// List returns the farmer's expenses and the suggested categories.
//
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  expensesResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	expenses, err := h.expenses.List(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return c.JSON(http.StatusOK, expensesResponse{Expenses: expenses, Categories: domain.ExpenseCategories})
}

// Create records an expense.
//
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      expenseRequest  true  "Expense"
// @Success      201   {object}  domain.Expense
// @Failure      422   {object}  errorResponse
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	exp, err := h.expenses.Create(c.Request().Context(), sess, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, exp)
}

// Update replaces an expense.
//
// @Summary      Update expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Expense id"
// @Param        body  body      expenseRequest  true  "Expense"
// @Success      200   {object}  domain.Expense
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	exp, err := h.expenses.Update(c.Request().Context(), sess, c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exp)
}

// Delete removes an expense.
//
// @Summary      Delete expense
// @Tags         expenses
// @Security     BearerAuth
// @Param        id   path  string  true  "Expense id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.expenses.Delete(c.Request().Context(), sess, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Analytics returns the expense report for a period.
//
// @Summary      Expense analytics
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        period  query     string  false  "daily, weekly, monthly (default) or yearly"
// @Success      200     {object}  domain.ExpenseAnalytics
// @Failure      422     {object}  errorResponse
// @Router       /api/expenses/analytics [get]
func (h *ExpenseHandler) Analytics(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	out, err := h.expenses.Analytics(c.Request().Context(), sess, c.QueryParam("period"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
