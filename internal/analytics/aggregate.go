// Package analytics implements the financial analytics and projection
// engine: aggregation, write-time anomaly detection, linear budget
// projection, rule-based insights, spending-profile classification,
// what-if scenario simulation and the composite period report.
//
// Every operation is a pure function of its inputs. The engine performs no
// I/O and keeps no state between calls; aggregates are recomputed from the
// exact record set passed in. Amounts are plain float64 currency units,
// rounded to two decimal places where an output is monetary.
package analytics

import (
	"math"
	"sort"

	"tally/internal/core"
)

// Summary is the aggregate view of one period's expenses: totals grouped by
// day and by category, plus the figures every downstream rule needs.
type Summary struct {
	DailyTotals    map[string]float64 // keyed by YYYY-MM-DD
	CategoryTotals map[string]float64
	Total          float64
	Count          int
	WeekendTotal   float64
}

// Category groups used by the profile classifier and the food scenario.
var (
	foodCategories          = []string{"Food", "Groceries", "Restaurants"}
	entertainmentCategories = []string{"Entertainment", "Shopping"}
)

// Aggregate reduces a period's expenses into a Summary. The input is assumed
// to be pre-filtered to the period of interest; no date filtering happens
// here. An empty input yields zero totals and empty maps.
func Aggregate(expenses []core.Expense) Summary {
	s := Summary{
		DailyTotals:    make(map[string]float64),
		CategoryTotals: make(map[string]float64),
	}
	for _, e := range expenses {
		amount := e.Amount.Float64()
		s.DailyTotals[e.Date.Key()] += amount
		s.CategoryTotals[e.Category] += amount
		s.Total += amount
		s.Count++
		if e.Date.IsWeekend() {
			s.WeekendTotal += amount
		}
	}
	return s
}

// TopCategory returns the category with the highest total and its amount.
// Ties break on the lexicographically smaller name so the result is stable
// across map iteration orders. Returns ("", 0) for an empty summary.
func (s Summary) TopCategory() (string, float64) {
	var top string
	var topAmount float64
	for _, name := range s.sortedCategories() {
		if amount := s.CategoryTotals[name]; top == "" || amount > topAmount {
			top, topAmount = name, amount
		}
	}
	return top, topAmount
}

// WeekendShare returns the weekend fraction of total spend, 0 when the total
// is zero.
func (s Summary) WeekendShare() float64 {
	if s.Total <= 0 {
		return 0
	}
	return s.WeekendTotal / s.Total
}

// groupTotal sums the totals of the named categories. Category labels are
// case-sensitive.
func (s Summary) groupTotal(names []string) float64 {
	var total float64
	for _, name := range names {
		total += s.CategoryTotals[name]
	}
	return total
}

// FoodTotal returns the combined Food, Groceries and Restaurants spend.
func (s Summary) FoodTotal() float64 {
	return s.groupTotal(foodCategories)
}

// EntertainmentTotal returns the combined Entertainment and Shopping spend.
func (s Summary) EntertainmentTotal() float64 {
	return s.groupTotal(entertainmentCategories)
}

// sortedCategories returns the category names in lexicographic order, so
// rule evaluation over categories is deterministic.
func (s Summary) sortedCategories() []string {
	names := make([]string, 0, len(s.CategoryTotals))
	for name := range s.CategoryTotals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// round2 rounds a monetary value to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
