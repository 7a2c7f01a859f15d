// This file parses and validates JSON request bodies. Amounts arrive as JSON
// numbers or decimal strings and are converted to cents at the boundary so
// float error never reaches storage.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tally/internal/core"
)

// errMalformedBody distinguishes unreadable JSON (400) from readable JSON
// that fails validation (422).
var errMalformedBody = errors.New("malformed request body")

type expenseRequest struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
}

type budgetRequest struct {
	Month  string      `json:"month"`
	Amount json.Number `json:"amount"`
}

type simulateRequest struct {
	ScenarioType string `json:"scenario_type"`
	Scenario     string `json:"scenario"`
}

func (r simulateRequest) scenario() string {
	if s := strings.TrimSpace(r.ScenarioType); s != "" {
		return s
	}
	return strings.TrimSpace(r.Scenario)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// parseExpense turns a request body into a validated domain expense.
func parseExpense(r *http.Request) (core.Expense, error) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Expense{}, err
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", req.Date)
	}
	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q", req.Amount.String())
	}

	e := core.Expense{
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(req.Category),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// parseBudget turns a request body into a validated domain budget.
func parseBudget(r *http.Request) (core.Budget, error) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Budget{}, err
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("invalid amount %q", req.Amount.String())
	}

	b := core.Budget{
		Month:  strings.TrimSpace(req.Month),
		Amount: core.Money{Cents: cents},
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// parseScenario accepts the scenario as a query parameter or in the body as
// "scenario_type" (with "scenario" as an alias), query winning.
func parseScenario(r *http.Request) (string, error) {
	if scenario := strings.TrimSpace(r.URL.Query().Get("scenario")); scenario != "" {
		return scenario, nil
	}

	var req simulateRequest
	if r.Body == nil || r.ContentLength == 0 {
		return "", fmt.Errorf("missing scenario")
	}
	if err := decodeBody(r, &req); err != nil {
		return "", err
	}
	if req.scenario() == "" {
		return "", fmt.Errorf("missing scenario")
	}
	return req.scenario(), nil
}
