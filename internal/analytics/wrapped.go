package analytics

import (
	"fmt"
	"time"

	"tally/internal/core"
)

// Wrapped is the composite end-of-period report: top patterns, a money
// personality, a risk bucket and a single-action recommendation.
type Wrapped struct {
	Period         string      `json:"period"`
	TotalSpent     float64     `json:"total_spent"`
	Patterns       []string    `json:"patterns"`
	Personality    Profile     `json:"personality"`
	Risk           WrappedRisk `json:"risk"`
	Recommendation string      `json:"recommendation"`
}

// WrappedRisk buckets the projection into STABLE or FRAGILE with a capped
// days-left figure and the remaining buffer.
type WrappedRisk struct {
	DaysLeft int     `json:"days_left"`
	Buffer   float64 `json:"buffer"`
	Status   string  `json:"status"`
}

const (
	riskStable  = "STABLE"
	riskFragile = "FRAGILE"

	// wrappedHorizonDays caps the displayed runway.
	wrappedHorizonDays = 30
	// wrappedWeekendShare is the weekend fraction worth calling out in the
	// report; looser than the insight rule's 50%.
	wrappedWeekendShare = 0.35
	// frequentBuyerCount marks a purchase roughly every other day.
	frequentBuyerCount = 15
	// bigTicketAverage marks a few-but-large purchase style.
	bigTicketAverage = 100.0
)

// ComposeWrapped runs the aggregator once and fans out to the pattern rules,
// the extended profile classifier and the budget projector, merging the
// results into one report. There is no algorithm here beyond merge-and-cap.
func ComposeWrapped(expenses []core.Expense, budgetLimit float64, today time.Time) Wrapped {
	s := Aggregate(expenses)
	day := core.Date{Time: today}
	projection := ProjectBudget(s.Total, budgetLimit, today.Day(), day.DaysInMonth())

	risk := WrappedRisk{Status: riskStable, DaysLeft: wrappedHorizonDays}
	if budgetLimit > 0 {
		if remaining := budgetLimit - s.Total; remaining > 0 {
			risk.Buffer = round2(remaining)
		}
		if projection.Status != StatusSafe {
			risk.Status = riskFragile
			if !projection.Unbounded && projection.DaysToExhaustion < wrappedHorizonDays {
				risk.DaysLeft = projection.DaysToExhaustion
			}
		}
	}

	topCategory, _ := s.TopCategory()
	recommendation := "You're safe. Save 10% of your remaining budget."
	if risk.Status == riskFragile {
		recommendation = fmt.Sprintf("Cut %s by 25%% and you stay safe.", topCategory)
	}

	return Wrapped{
		Period:         today.Format("January 2006"),
		TotalSpent:     round2(s.Total),
		Patterns:       wrappedPatterns(s),
		Personality:    ClassifyProfileExtended(s, budgetLimit),
		Risk:           risk,
		Recommendation: recommendation,
	}
}

// wrappedPatterns emits up to MaxInsights one-line patterns in rule order,
// falling back to the history placeholder when nothing qualifies.
func wrappedPatterns(s Summary) []string {
	var patterns []string

	if s.Total > 0 {
		if top, topAmount := s.TopCategory(); topAmount/s.Total > concentrationShare {
			patterns = append(patterns, fmt.Sprintf("🎬 %d%% spent on %s", int(topAmount/s.Total*100), top))
		}
		if share := s.WeekendShare(); share > wrappedWeekendShare {
			patterns = append(patterns, fmt.Sprintf("⚡ One weekend consumed %d%% of your budget", int(share*100)))
		}
	}

	switch {
	case s.Count > frequentBuyerCount:
		patterns = append(patterns, "🛒 You averaged a purchase every 2 days")
	case s.Count > 0 && s.Total/float64(s.Count) > bigTicketAverage:
		patterns = append(patterns, "💎 You prefer few, high-value purchases")
	}

	if len(patterns) == 0 {
		patterns = append(patterns, "🌱 You are building your spending history")
	}
	if len(patterns) > MaxInsights {
		patterns = patterns[:MaxInsights]
	}
	return patterns
}
