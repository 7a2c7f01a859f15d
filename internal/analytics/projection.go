package analytics

// Status classifies a projection against the month's budget.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

// BeyondHorizon is the days-to-exhaustion sentinel meaning "more than 30
// days", used instead of dividing by a zero daily average.
const BeyondHorizon = 99

// Projection is the linear end-of-month extrapolation of spend so far.
type Projection struct {
	Projected        float64 // projected end-of-month total, 2 decimals
	DailyAverage     float64 // spend per elapsed day
	Status           Status
	DaysToExhaustion int  // days until the budget runs out at the current pace
	Unbounded        bool // true when the budget outlasts the horizon
}

// ProjectBudget extrapolates the month's total spend from the elapsed-day
// average. budgetLimit 0 means "no active budget" and is the caller's cue to
// skip status handling, not a zero-tolerance budget. todayDay <= 0 is the
// degenerate first-instant case: no projection is attempted.
func ProjectBudget(totalSpent, budgetLimit float64, todayDay, daysInMonth int) Projection {
	var dailyAverage float64
	remainingDays := 0
	if todayDay > 0 {
		dailyAverage = totalSpent / float64(todayDay)
		remainingDays = daysInMonth - todayDay
	}
	return project(totalSpent, budgetLimit, dailyAverage, remainingDays)
}

// project applies the shared extrapolation formula to an explicit daily
// average. The scenario simulator reuses it with an adjusted average; the
// budget-risk and wrapped paths both go through here so their zero-guards
// cannot diverge.
func project(totalSpent, budgetLimit, dailyAverage float64, remainingDays int) Projection {
	if remainingDays < 0 {
		remainingDays = 0
	}
	projected := totalSpent + dailyAverage*float64(remainingDays)

	// Already over budget beats merely projected to exceed.
	status := StatusSafe
	switch {
	case totalSpent > budgetLimit:
		status = StatusExceeded
	case projected > budgetLimit:
		status = StatusWarning
	}

	p := Projection{
		Projected:        round2(projected),
		DailyAverage:     dailyAverage,
		Status:           status,
		DaysToExhaustion: BeyondHorizon,
		Unbounded:        true,
	}
	if dailyAverage > 0 {
		days := int((budgetLimit - totalSpent) / dailyAverage)
		if days < 0 {
			days = 0
		}
		if days < BeyondHorizon {
			p.DaysToExhaustion = days
			p.Unbounded = false
		}
	}
	return p
}
