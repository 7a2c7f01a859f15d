// This file shapes domain values into their wire representations. Amounts go
// out as whole currency units with two decimals of precision.

package http

import (
	"tally/internal/core"
)

type expenseResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

type budgetResponse struct {
	ID     int64   `json:"id"`
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type summaryResponse struct {
	Month    string            `json:"month"`
	Total    float64           `json:"total"`
	Expenses []expenseResponse `json:"expenses"`
}

func buildExpense(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date.Key(),
		Description: e.Description,
		Amount:      e.Amount.Float64(),
		Category:    e.Category,
		IsAnomaly:   e.Anomaly,
	}
}

func buildExpenses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = buildExpense(e)
	}
	return out
}

func buildBudget(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:     b.ID,
		Month:  b.Month,
		Amount: b.Amount.Float64(),
	}
}

func buildBudgets(budgets []core.Budget) []budgetResponse {
	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = buildBudget(b)
	}
	return out
}
