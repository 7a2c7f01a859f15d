package analytics

// Profile labels a user's dominant spending pattern for a period. Exactly
// one profile comes out of an evaluation.
type Profile struct {
	Label       string `json:"profile"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var (
	profileNewcomer = Profile{
		Label:       "Newcomer",
		Description: "Not enough data yet.",
		Icon:        "🌱",
	}
	profileBalanced = Profile{
		Label:       "Balanced Spender",
		Description: "Your spending is distributed, but you lack a clear saving strategy for unexpected costs.",
		Icon:        "⚖️",
	}
	profileWeekendSpender = Profile{
		Label:       "Weekend Spender",
		Description: "You spend 40% of your money in 2 days. This volatility creates Monday-Friday cash flow gaps.",
		Icon:        "🎉",
	}
	profileFoodDominant = Profile{
		Label:       "Food-Dominant",
		Description: "Food costs are eating 50% of your budget. One less meal out extends your runway by 3 days.",
		Icon:        "🍔",
	}
	profileEntertainer = Profile{
		Label:       "Late-Night Entertainer",
		Description: "Your money wakes up after 9 PM. Entertainment rules your weekends.",
		Icon:        "🌙",
	}
	profileImpulse = Profile{
		Label:       "Impulse Buyer",
		Description: "Lots of small taps. You love the dopamine of a new purchase.",
		Icon:        "🛍️",
	}
	profileOptimist = Profile{
		Label:       "Budget Optimist",
		Description: "You're playing it safe. Maybe too safe? Live a little.",
		Icon:        "🌤️",
	}
	profileWarrior = Profile{
		Label:       "Weekend Warrior",
		Description: "Mon-Fri you save. Sat-Sun you behave like a different person.",
		Icon:        "⚔️",
	}
)

// profileBranch is one branch of the top-down decision tree: the first
// matching branch wins, there are no ties.
type profileBranch struct {
	match   func(s Summary, budgetLimit float64) bool
	profile Profile
}

// baseBranches are the two branches of the standalone classifier.
var baseBranches = []profileBranch{
	{
		match:   func(s Summary, _ float64) bool { return s.WeekendShare() > 0.40 },
		profile: profileWeekendSpender,
	},
	{
		match:   func(s Summary, _ float64) bool { return s.FoodTotal()/s.Total > 0.50 },
		profile: profileFoodDominant,
	},
}

// extendedBranches are checked after the base branches fail; the period
// report uses this longer tree. Budget-ratio branches cannot fire without an
// active budget, which keeps the ratios away from a zero divisor.
var extendedBranches = []profileBranch{
	{
		match:   func(s Summary, _ float64) bool { return s.EntertainmentTotal()/s.Total > 0.50 },
		profile: profileEntertainer,
	},
	{
		match: func(s Summary, budgetLimit float64) bool {
			return budgetLimit > 0 && s.Count > 20 && s.Total/budgetLimit < 0.80
		},
		profile: profileImpulse,
	},
	{
		match: func(s Summary, budgetLimit float64) bool {
			return budgetLimit > 0 && s.Total/budgetLimit < 0.30
		},
		profile: profileOptimist,
	},
	{
		match:   func(s Summary, _ float64) bool { return s.WeekendShare() > 0.60 },
		profile: profileWarrior,
	},
}

// ClassifyProfile maps a period's aggregates onto the base profile tree.
// A period with zero total short-circuits to Newcomer before any ratio is
// evaluated.
func ClassifyProfile(s Summary, budgetLimit float64) Profile {
	return classify(s, budgetLimit, baseBranches)
}

// ClassifyProfileExtended evaluates the base branches followed by the
// extended ones; the period report composer uses this variant.
func ClassifyProfileExtended(s Summary, budgetLimit float64) Profile {
	branches := make([]profileBranch, 0, len(baseBranches)+len(extendedBranches))
	branches = append(branches, baseBranches...)
	branches = append(branches, extendedBranches...)
	return classify(s, budgetLimit, branches)
}

func classify(s Summary, budgetLimit float64, branches []profileBranch) Profile {
	if s.Total <= 0 {
		return profileNewcomer
	}
	for _, branch := range branches {
		if branch.match(s, budgetLimit) {
			return branch.profile
		}
	}
	return profileBalanced
}
