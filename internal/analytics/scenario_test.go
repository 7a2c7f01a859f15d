package analytics

import (
	"errors"
	"strings"
	"testing"
)

func TestSimulateReduceFood(t *testing.T) {
	s := Summary{
		CategoryTotals: map[string]float64{"Food": 150, "Groceries": 50, "Transport": 100},
		Total:          300,
	}

	sim, err := SimulateScenario(s, 1000, 10, 20, ScenarioReduceFood20)
	if err != nil {
		t.Fatalf("SimulateScenario() error = %v", err)
	}

	// Baseline average 30/day; food group 200 over 10 days saves 20% of 20.
	if !almostEqual(sim.Baseline.DailyAverage, 30) {
		t.Errorf("baseline average = %v, want 30", sim.Baseline.DailyAverage)
	}
	if !almostEqual(sim.DailySaving, 4) {
		t.Errorf("DailySaving = %v, want 4", sim.DailySaving)
	}
	if !almostEqual(sim.Baseline.Projected, 900) { // 300 + 30*20
		t.Errorf("baseline projected = %v, want 900", sim.Baseline.Projected)
	}
	if !almostEqual(sim.Adjusted.Projected, 820) { // 300 + 26*20
		t.Errorf("adjusted projected = %v, want 820", sim.Adjusted.Projected)
	}
	if sim.Adjusted.Status != StatusSafe {
		t.Errorf("adjusted status = %v, want safe", sim.Adjusted.Status)
	}
	if !strings.Contains(sim.Recommendation, "secures your budget") {
		t.Errorf("Recommendation = %q, want the safe wording", sim.Recommendation)
	}
}

func TestSimulateReduceFoodNothingToCut(t *testing.T) {
	s := Summary{
		CategoryTotals: map[string]float64{"Transport": 300},
		Total:          300,
	}

	sim, err := SimulateScenario(s, 1000, 10, 20, ScenarioReduceFood20)
	if err != nil {
		t.Fatalf("SimulateScenario() error = %v", err)
	}

	// No food spend means no savings may be claimed.
	if sim.DailySaving != 0 {
		t.Errorf("DailySaving = %v, want 0", sim.DailySaving)
	}
	if sim.Adjusted.DailyAverage != sim.Baseline.DailyAverage {
		t.Errorf("adjusted average %v differs from baseline %v", sim.Adjusted.DailyAverage, sim.Baseline.DailyAverage)
	}
	if sim.Adjusted.Projected != sim.Baseline.Projected {
		t.Errorf("adjusted projection %v differs from baseline %v", sim.Adjusted.Projected, sim.Baseline.Projected)
	}
}

func TestSimulateCutSubscription(t *testing.T) {
	s := Summary{
		CategoryTotals: map[string]float64{"Misc": 100},
		Total:          100,
	}

	sim, err := SimulateScenario(s, 120, 10, 20, ScenarioCutSubscription)
	if err != nil {
		t.Fatalf("SimulateScenario() error = %v", err)
	}

	if !almostEqual(sim.Adjusted.DailyAverage, 5) { // 10 - 5
		t.Errorf("adjusted average = %v, want 5", sim.Adjusted.DailyAverage)
	}
	if !almostEqual(sim.Adjusted.Projected, 200) { // 100 + 5*20
		t.Errorf("adjusted projected = %v, want 200", sim.Adjusted.Projected)
	}
	if sim.Adjusted.Status != StatusWarning {
		t.Errorf("adjusted status = %v, want warning", sim.Adjusted.Status)
	}
	if !strings.Contains(sim.Recommendation, "deeper cuts") {
		t.Errorf("Recommendation = %q, want the over-budget wording", sim.Recommendation)
	}
	if !strings.Contains(sim.Recommendation, "4 days") { // (120-100)/5
		t.Errorf("Recommendation = %q, want 4 days", sim.Recommendation)
	}
}

func TestSimulateClampsAtZero(t *testing.T) {
	s := Summary{
		CategoryTotals: map[string]float64{"Misc": 30},
		Total:          30,
	}

	// Baseline average 3/day; the 5/day subscription cut clamps to zero.
	sim, err := SimulateScenario(s, 1000, 10, 20, ScenarioCutSubscription)
	if err != nil {
		t.Fatalf("SimulateScenario() error = %v", err)
	}
	if sim.Adjusted.DailyAverage != 0 {
		t.Errorf("adjusted average = %v, want 0", sim.Adjusted.DailyAverage)
	}
	if !almostEqual(sim.Adjusted.Projected, 30) {
		t.Errorf("adjusted projected = %v, want 30", sim.Adjusted.Projected)
	}
	if !sim.Adjusted.Unbounded {
		t.Errorf("zero average should be beyond the horizon")
	}
	if !strings.Contains(sim.Recommendation, ">30") {
		t.Errorf("Recommendation = %q, want the >30 horizon", sim.Recommendation)
	}
}

func TestSimulateZeroElapsedDays(t *testing.T) {
	sim, err := SimulateScenario(Summary{}, 1000, 0, 30, ScenarioReduceFood20)
	if err != nil {
		t.Fatalf("SimulateScenario() error = %v", err)
	}
	if sim.Baseline.DailyAverage != 0 || sim.Adjusted.DailyAverage != 0 {
		t.Errorf("zero elapsed days must not divide: %+v", sim)
	}
}

func TestSimulateUnknownScenario(t *testing.T) {
	_, err := SimulateScenario(Summary{}, 1000, 10, 20, Scenario("win_lottery"))
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("error = %v, want ErrUnknownScenario", err)
	}
}
