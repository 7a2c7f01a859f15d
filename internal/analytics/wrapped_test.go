package analytics

import (
	"strings"
	"testing"
	"time"

	"tally/internal/core"
)

func TestComposeWrappedFragile(t *testing.T) {
	// Day 10 of a 31-day month; 310 spent against a 500 budget projects to
	// 961 (average 31 over 21 remaining days), so the month is fragile.
	today := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2025, 3, 3), "groceries", 5000, "Food"),
		expense(core.NewDate(2025, 3, 5), "dinner", 6000, "Food"),
		expense(core.NewDate(2025, 3, 7), "concert", 20000, "Entertainment"),
	}

	got := ComposeWrapped(expenses, 500, today)

	if got.Period != "March 2025" {
		t.Errorf("Period = %q, want March 2025", got.Period)
	}
	if !almostEqual(got.TotalSpent, 310) {
		t.Errorf("TotalSpent = %v, want 310", got.TotalSpent)
	}
	if got.Risk.Status != riskFragile {
		t.Errorf("Risk.Status = %q, want FRAGILE", got.Risk.Status)
	}
	if !almostEqual(got.Risk.Buffer, 190) {
		t.Errorf("Risk.Buffer = %v, want 190", got.Risk.Buffer)
	}
	if got.Risk.DaysLeft != 6 { // (500-310)/31
		t.Errorf("Risk.DaysLeft = %d, want 6", got.Risk.DaysLeft)
	}
	if !strings.Contains(got.Recommendation, "Cut Entertainment by 25%") {
		t.Errorf("Recommendation = %q, want a 25%% cut of the top category", got.Recommendation)
	}
	// Entertainment holds 64% of the total, so the dominant-category pattern
	// leads the list.
	if len(got.Patterns) == 0 || !strings.Contains(got.Patterns[0], "64% spent on Entertainment") {
		t.Errorf("Patterns = %v, want dominant category first", got.Patterns)
	}
}

func TestComposeWrappedStable(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2025, 6, 2), "book", 2000, "Shopping"),
		expense(core.NewDate(2025, 6, 9), "lunch", 1500, "Food"),
		expense(core.NewDate(2025, 6, 16), "fuel", 2500, "Transport"),
	}

	got := ComposeWrapped(expenses, 1000, today)

	if got.Risk.Status != riskStable {
		t.Errorf("Risk.Status = %q, want STABLE", got.Risk.Status)
	}
	if got.Risk.DaysLeft != wrappedHorizonDays {
		t.Errorf("Risk.DaysLeft = %d, want %d", got.Risk.DaysLeft, wrappedHorizonDays)
	}
	if !strings.Contains(got.Recommendation, "Save 10%") {
		t.Errorf("Recommendation = %q, want the save-10%% wording", got.Recommendation)
	}
	if got.Personality.Label != "Budget Optimist" { // 60 spent of 1000
		t.Errorf("Personality = %q, want Budget Optimist", got.Personality.Label)
	}
}

func TestComposeWrappedEmptyMonth(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got := ComposeWrapped(nil, 1000, today)

	if got.TotalSpent != 0 {
		t.Errorf("TotalSpent = %v, want 0", got.TotalSpent)
	}
	if got.Personality.Label != "Newcomer" {
		t.Errorf("Personality = %q, want Newcomer", got.Personality.Label)
	}
	if len(got.Patterns) != 1 || !strings.Contains(got.Patterns[0], "building your spending history") {
		t.Errorf("Patterns = %v, want the placeholder", got.Patterns)
	}
	if got.Risk.Status != riskStable {
		t.Errorf("Risk.Status = %q, want STABLE", got.Risk.Status)
	}
}

func TestComposeWrappedNoBudget(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2025, 6, 3), "rent", 80000, "Housing"),
	}

	// Budget 0 means no active budget: risk handling stays neutral instead
	// of treating every cent as an overrun.
	got := ComposeWrapped(expenses, 0, today)

	if got.Risk.Status != riskStable {
		t.Errorf("Risk.Status = %q, want STABLE without a budget", got.Risk.Status)
	}
	if got.Risk.Buffer != 0 {
		t.Errorf("Risk.Buffer = %v, want 0", got.Risk.Buffer)
	}
}

func TestWrappedPatterns(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    []string
	}{
		{
			name: "frequent buyer",
			summary: Summary{
				CategoryTotals: map[string]float64{"A": 60, "B": 60},
				Total:          120,
				Count:          16,
			},
			want: []string{"🛒 You averaged a purchase every 2 days"},
		},
		{
			name: "big ticket style",
			summary: Summary{
				CategoryTotals: map[string]float64{"A": 150, "B": 150},
				Total:          300,
				Count:          2,
			},
			want: []string{"💎 You prefer few, high-value purchases"},
		},
		{
			name:    "empty falls back to placeholder",
			summary: Summary{},
			want:    []string{"🌱 You are building your spending history"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrappedPatterns(tt.summary)
			if len(got) != len(tt.want) {
				t.Fatalf("wrappedPatterns() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("pattern[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
