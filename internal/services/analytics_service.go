package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"tally/internal/analytics"
	"tally/internal/core"
	"tally/internal/storage"
)

// defaultBudgetLimit stands in when a month has no budget set, so the
// simulator and the wrapped report still have a yardstick to measure
// against. Budget risk, in contrast, reports "no budget" outright.
const defaultBudgetLimit = 1000.0

// anomalyListLimit caps the recent-anomalies feed.
const anomalyListLimit = 5

// AnalyticsStore is the read-side slice of the repository the analytics
// operations consume.
type AnalyticsStore interface {
	ListExpensesByMonth(ctx context.Context, userID int64, month string) ([]core.Expense, error)
	ListExpensesByMonthAndCategory(ctx context.Context, userID int64, month, category string) ([]core.Expense, error)
	CategoryTotalsByMonth(ctx context.Context, userID int64, month string) (map[string]int64, error)
	GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error)
	ListAnomalies(ctx context.Context, userID int64, limit int) ([]core.Expense, error)
}

// AnalyticsService binds the persistence collaborator to the pure engine:
// it loads the record sets, calls the engine, and shapes the responses.
type AnalyticsService struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// WithClock overrides the service clock; tests pin "today" with it.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// BudgetRisk is the current month's projection against its budget.
type BudgetRisk struct {
	HasBudget        bool    `json:"has_budget"`
	Message          string  `json:"message,omitempty"`
	TotalSpent       float64 `json:"total_spent"`
	BudgetLimit      float64 `json:"budget_limit,omitempty"`
	Projected        float64 `json:"projected_total_spend"`
	Status           string  `json:"status"`
	DaysToExhaustion string  `json:"days_to_exhaustion"`
}

// Simulation compares the baseline projection with a scenario's outcome.
type Simulation struct {
	Scenario          string  `json:"scenario"`
	OriginalProjected float64 `json:"original_projected"`
	NewProjected      float64 `json:"new_projected"`
	DaysToExhaustion  string  `json:"days_to_exhaustion"`
	RiskStatus        string  `json:"risk_status"`
	SavingsMessage    string  `json:"savings_message"`
}

// CategoryDiff is one row of the month-over-month comparison.
type CategoryDiff struct {
	Category string  `json:"category"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Diff     float64 `json:"diff"`
}

// MonthSummary is the raw listing plus total for one month.
type MonthSummary struct {
	Total    float64        `json:"total"`
	Expenses []core.Expense `json:"-"`
}

// BudgetRisk projects the current month's spend. Without a budget there is
// nothing to project against and the response says so.
func (s *AnalyticsService) BudgetRisk(ctx context.Context, userID int64) (BudgetRisk, error) {
	today := s.today()
	budget, err := s.store.GetBudget(ctx, userID, today.MonthKey())
	if errors.Is(err, storage.ErrNotFound) {
		return BudgetRisk{Message: "No budget set for this month."}, nil
	}
	if err != nil {
		return BudgetRisk{}, fmt.Errorf("get budget: %w", err)
	}

	expenses, err := s.store.ListExpensesByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return BudgetRisk{}, fmt.Errorf("list expenses: %w", err)
	}

	agg := analytics.Aggregate(expenses)
	proj := analytics.ProjectBudget(agg.Total, budget.Amount.Float64(), today.Day(), today.DaysInMonth())

	return BudgetRisk{
		HasBudget:        true,
		TotalSpent:       round2(agg.Total),
		BudgetLimit:      budget.Amount.Float64(),
		Projected:        proj.Projected,
		Status:           string(proj.Status),
		DaysToExhaustion: analytics.FormatDays(proj),
	}, nil
}

// Insights evaluates the pattern rules over this month against last month.
func (s *AnalyticsService) Insights(ctx context.Context, userID int64) ([]analytics.Insight, error) {
	today := s.today()

	expenses, err := s.store.ListExpensesByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	prevTotals, err := s.store.CategoryTotalsByMonth(ctx, userID, prevMonthKey(today))
	if err != nil {
		return nil, fmt.Errorf("previous month totals: %w", err)
	}

	descriptions := make([]string, len(expenses))
	for i, e := range expenses {
		descriptions[i] = e.Description
	}

	curr := analytics.Aggregate(expenses)
	prev := analytics.Summary{CategoryTotals: centsMapToFloats(prevTotals)}

	return analytics.GenerateInsights(curr, prev, descriptions), nil
}

// SpendingProfile classifies the current month with the base decision tree.
func (s *AnalyticsService) SpendingProfile(ctx context.Context, userID int64) (analytics.Profile, error) {
	today := s.today()
	expenses, err := s.store.ListExpensesByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return analytics.Profile{}, fmt.Errorf("list expenses: %w", err)
	}
	limit, err := s.budgetLimitOrDefault(ctx, userID, today)
	if err != nil {
		return analytics.Profile{}, err
	}
	return analytics.ClassifyProfile(analytics.Aggregate(expenses), limit), nil
}

// Simulate runs a what-if scenario over the current month without touching
// stored data. An unknown selector surfaces analytics.ErrUnknownScenario.
func (s *AnalyticsService) Simulate(ctx context.Context, userID int64, scenario string) (Simulation, error) {
	today := s.today()
	expenses, err := s.store.ListExpensesByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return Simulation{}, fmt.Errorf("list expenses: %w", err)
	}

	agg := analytics.Aggregate(expenses)
	limit, err := s.budgetLimitOrDefault(ctx, userID, today)
	if err != nil {
		return Simulation{}, err
	}
	remaining := today.DaysInMonth() - today.Day()

	sim, err := analytics.SimulateScenario(agg, limit, today.Day(), remaining, analytics.Scenario(scenario))
	if err != nil {
		return Simulation{}, err
	}

	return Simulation{
		Scenario:          string(sim.Scenario),
		OriginalProjected: sim.Baseline.Projected,
		NewProjected:      sim.Adjusted.Projected,
		DaysToExhaustion:  analytics.FormatDays(sim.Adjusted),
		RiskStatus:        string(sim.Adjusted.Status),
		SavingsMessage:    sim.Recommendation,
	}, nil
}

// Wrapped composes the end-of-period report for the current month.
func (s *AnalyticsService) Wrapped(ctx context.Context, userID int64) (analytics.Wrapped, error) {
	today := s.today()
	expenses, err := s.store.ListExpensesByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return analytics.Wrapped{}, fmt.Errorf("list expenses: %w", err)
	}
	limit, err := s.budgetLimitOrDefault(ctx, userID, today)
	if err != nil {
		return analytics.Wrapped{}, err
	}
	return analytics.ComposeWrapped(expenses, limit, today.Time), nil
}

// MonthlyDiff compares this and last month per category, largest absolute
// change first.
func (s *AnalyticsService) MonthlyDiff(ctx context.Context, userID int64) ([]CategoryDiff, error) {
	today := s.today()

	curr, err := s.store.CategoryTotalsByMonth(ctx, userID, today.MonthKey())
	if err != nil {
		return nil, fmt.Errorf("current month totals: %w", err)
	}
	prev, err := s.store.CategoryTotalsByMonth(ctx, userID, prevMonthKey(today))
	if err != nil {
		return nil, fmt.Errorf("previous month totals: %w", err)
	}

	categories := make(map[string]struct{})
	for c := range curr {
		categories[c] = struct{}{}
	}
	for c := range prev {
		categories[c] = struct{}{}
	}

	diffs := make([]CategoryDiff, 0, len(categories))
	for c := range categories {
		currAmount := float64(curr[c]) / 100.0
		prevAmount := float64(prev[c]) / 100.0
		diffs = append(diffs, CategoryDiff{
			Category: c,
			Current:  currAmount,
			Previous: prevAmount,
			Diff:     round2(currAmount - prevAmount),
		})
	}
	sort.Slice(diffs, func(i, j int) bool {
		a, b := math.Abs(diffs[i].Diff), math.Abs(diffs[j].Diff)
		if a != b {
			return a > b
		}
		return diffs[i].Category < diffs[j].Category
	})
	return diffs, nil
}

// Anomalies returns the user's most recent anomalous expenses.
func (s *AnalyticsService) Anomalies(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListAnomalies(ctx, userID, anomalyListLimit)
}

// Summary lists a month's expenses with their total, optionally narrowed to
// one category. An empty month defaults to the current one.
func (s *AnalyticsService) Summary(ctx context.Context, userID int64, month, category string) (MonthSummary, error) {
	if month == "" {
		month = s.today().MonthKey()
	}

	var expenses []core.Expense
	var err error
	if category != "" {
		expenses, err = s.store.ListExpensesByMonthAndCategory(ctx, userID, month, category)
	} else {
		expenses, err = s.store.ListExpensesByMonth(ctx, userID, month)
	}
	if err != nil {
		return MonthSummary{}, fmt.Errorf("list expenses: %w", err)
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount.Float64()
	}
	return MonthSummary{Total: round2(total), Expenses: expenses}, nil
}

// ReportByCategory sums a month's spend per category.
func (s *AnalyticsService) ReportByCategory(ctx context.Context, userID int64, month string) (map[string]float64, error) {
	if month == "" {
		month = s.today().MonthKey()
	}
	totals, err := s.store.CategoryTotalsByMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return centsMapToFloats(totals), nil
}

func (s *AnalyticsService) today() core.Date {
	return core.Date{Time: s.now()}
}

func (s *AnalyticsService) budgetLimitOrDefault(ctx context.Context, userID int64, today core.Date) (float64, error) {
	budget, err := s.store.GetBudget(ctx, userID, today.MonthKey())
	if errors.Is(err, storage.ErrNotFound) {
		return defaultBudgetLimit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading budget: %w", err)
	}
	return budget.Amount.Float64(), nil
}

func prevMonthKey(today core.Date) string {
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}

func centsMapToFloats(cents map[string]int64) map[string]float64 {
	out := make(map[string]float64, len(cents))
	for k, v := range cents {
		out[k] = float64(v) / 100.0
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
