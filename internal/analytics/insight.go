package analytics

import (
	"fmt"
	"strings"
)

// Insight is a single behavioral finding about a period's spending.
type Insight struct {
	Kind string `json:"type"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// MaxInsights caps how many insights a single evaluation reports.
const MaxInsights = 3

const (
	// concentrationShare is the top-category share above which spending is
	// considered concentrated.
	concentrationShare = 0.40
	// surgeFloor ignores categories whose prior-period spend was too small
	// for a percentage jump to mean anything.
	surgeFloor = 50.0
	// surgeChange is the month-over-month growth that counts as a surge.
	surgeChange = 0.30
	// weekendShareLimit is the weekend fraction above which the weekend
	// pattern fires.
	weekendShareLimit = 0.50
	// habitCount is how many keyword-matching purchases make a habit.
	habitCount = 5
)

// habitKeywords are matched case-insensitively against expense descriptions
// for the habit-frequency rule.
var habitKeywords = []string{"coffee", "starbucks", "cafe"}

// insightInput carries everything the rules see for one evaluation.
type insightInput struct {
	curr         Summary
	prev         Summary
	descriptions []string
}

// insightRule is one entry of the ordered rule table. Each rule is gated
// independently and may emit zero or more insights; evaluation order is the
// output order, there is no severity re-sort.
type insightRule struct {
	kind string
	emit func(in insightInput) []Insight
}

var insightRules = []insightRule{
	{kind: "concentration", emit: concentrationInsight},
	{kind: "increase", emit: surgeInsights},
	{kind: "weekend", emit: weekendInsight},
	{kind: "habit", emit: habitInsight},
}

// GenerateInsights evaluates the pattern rules in fixed order against this
// period's aggregates, last period's aggregates and the raw descriptions.
// At most MaxInsights findings are returned; when nothing qualifies a single
// placeholder takes their place so the caller always has something to show.
func GenerateInsights(curr, prev Summary, descriptions []string) []Insight {
	in := insightInput{curr: curr, prev: prev, descriptions: descriptions}

	var insights []Insight
	for _, rule := range insightRules {
		insights = append(insights, rule.emit(in)...)
	}
	if len(insights) == 0 {
		return []Insight{PlaceholderInsight()}
	}
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

// PlaceholderInsight is the fallback finding for periods with no qualifying
// patterns yet.
func PlaceholderInsight() Insight {
	return Insight{
		Kind: "placeholder",
		Text: "You are building your spending history.",
		Icon: "🌱",
	}
}

func concentrationInsight(in insightInput) []Insight {
	if in.curr.Total <= 0 {
		return nil
	}
	top, topAmount := in.curr.TopCategory()
	if top == "" {
		return nil
	}
	share := topAmount / in.curr.Total
	if share <= concentrationShare {
		return nil
	}
	return []Insight{{
		Kind: "concentration",
		Text: fmt.Sprintf("%s makes up %d%% of your spending — a deviation here will immediately impact your ability to pay essential bills.", top, int(share*100)),
		Icon: "📊",
	}}
}

func surgeInsights(in insightInput) []Insight {
	var out []Insight
	for _, category := range in.curr.sortedCategories() {
		prevAmount := in.prev.CategoryTotals[category]
		if prevAmount <= surgeFloor {
			continue
		}
		change := (in.curr.CategoryTotals[category] - prevAmount) / prevAmount
		if change <= surgeChange {
			continue
		}
		out = append(out, Insight{
			Kind: "increase",
			Text: fmt.Sprintf("Spending on %s spiked %d%% vs last month. This unexpected volatility shortens your budget runway.", category, int(change*100)),
			Icon: "📈",
		})
	}
	return out
}

func weekendInsight(in insightInput) []Insight {
	if in.curr.Total <= 0 || in.curr.WeekendShare() <= weekendShareLimit {
		return nil
	}
	return []Insight{{
		Kind: "weekend",
		Text: "Over 50% of your spending happens on weekends. This 'binge-spending' pattern leaves you vulnerable on weekdays.",
		Icon: "🎉",
	}}
}

func habitInsight(in insightInput) []Insight {
	count := 0
	for _, desc := range in.descriptions {
		lowered := strings.ToLower(desc)
		for _, keyword := range habitKeywords {
			if strings.Contains(lowered, keyword) {
				count++
				break
			}
		}
	}
	if count <= habitCount {
		return nil
	}
	return []Insight{{
		Kind: "habit",
		Text: fmt.Sprintf("You made %d coffee trips this month. These micro-transactions are silently draining your adjustable income.", count),
		Icon: "☕",
	}}
}
