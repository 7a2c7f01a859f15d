package analytics

import (
	"errors"
	"fmt"
)

// Scenario selects a hypothetical spending adjustment to simulate.
type Scenario string

const (
	// ScenarioReduceFood20 cuts the food-group daily average by 20%.
	ScenarioReduceFood20 Scenario = "reduce_food_20"
	// ScenarioCutSubscription removes a fixed daily subscription cost.
	ScenarioCutSubscription Scenario = "cut_subscription"
)

// subscriptionDailySaving is the fixed per-day amount the subscription
// scenario removes from the daily average.
const subscriptionDailySaving = 5.0

// ErrUnknownScenario signals a scenario selector outside the closed set.
// Unknown selectors fail loudly instead of silently simulating nothing.
var ErrUnknownScenario = errors.New("unknown scenario")

// Simulation compares the unmodified projection with one recomputed under a
// scenario's adjusted daily average.
type Simulation struct {
	Scenario       Scenario
	Baseline       Projection
	Adjusted       Projection
	DailySaving    float64
	Recommendation string
}

// SimulateScenario recomputes the budget projection under the selected
// scenario without touching stored data. The adjusted daily average is
// clamped at zero: a cut can never make spending negative. When there is
// nothing to cut (e.g. zero food spend) the adjusted projection equals the
// baseline and the simulation honestly claims no savings.
func SimulateScenario(s Summary, budgetLimit float64, elapsedDays, remainingDays int, kind Scenario) (Simulation, error) {
	var baselineAverage float64
	if elapsedDays > 0 {
		baselineAverage = s.Total / float64(elapsedDays)
	}

	var saving float64
	switch kind {
	case ScenarioReduceFood20:
		if elapsedDays > 0 {
			foodDaily := s.FoodTotal() / float64(elapsedDays)
			saving = foodDaily * 0.20
		}
	case ScenarioCutSubscription:
		saving = subscriptionDailySaving
	default:
		return Simulation{}, fmt.Errorf("%w: %q", ErrUnknownScenario, kind)
	}

	adjustedAverage := baselineAverage - saving
	if adjustedAverage < 0 {
		adjustedAverage = 0
	}

	sim := Simulation{
		Scenario:    kind,
		Baseline:    project(s.Total, budgetLimit, baselineAverage, remainingDays),
		Adjusted:    project(s.Total, budgetLimit, adjustedAverage, remainingDays),
		DailySaving: baselineAverage - adjustedAverage,
	}

	days := FormatDays(sim.Adjusted)
	if sim.Adjusted.Status == StatusSafe {
		sim.Recommendation = fmt.Sprintf("This change secures your budget for %s days. You have a small safety buffer.", days)
	} else {
		sim.Recommendation = fmt.Sprintf("Even with this change, you will run out of money in %s days. You need deeper cuts.", days)
	}
	return sim, nil
}

// FormatDays renders a projection's days-to-exhaustion for display, using
// ">30" when the budget outlasts the horizon.
func FormatDays(p Projection) string {
	if p.Unbounded {
		return ">30"
	}
	return fmt.Sprintf("%d", p.DaysToExhaustion)
}
