package analytics

import "testing"

func TestClassifyProfile(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{
			name:    "zero total short-circuits to newcomer",
			summary: Summary{},
			want:    "Newcomer",
		},
		{
			name: "weekend share over 40 percent",
			summary: Summary{
				CategoryTotals: map[string]float64{"Fun": 100},
				Total:          100,
				WeekendTotal:   45,
			},
			want: "Weekend Spender",
		},
		{
			name: "weekend wins over simultaneously qualifying food share",
			summary: Summary{
				CategoryTotals: map[string]float64{"Food": 60, "Other": 40},
				Total:          100,
				WeekendTotal:   45,
			},
			want: "Weekend Spender",
		},
		{
			name: "food group over half the total",
			summary: Summary{
				CategoryTotals: map[string]float64{"Food": 30, "Groceries": 15, "Restaurants": 10, "Other": 45},
				Total:          100,
			},
			want: "Food-Dominant",
		},
		{
			name: "nothing dominant",
			summary: Summary{
				CategoryTotals: map[string]float64{"Food": 30, "Transport": 30, "Other": 40},
				Total:          100,
				WeekendTotal:   20,
			},
			want: "Balanced Spender",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyProfile(tt.summary, 1000)
			if got.Label != tt.want {
				t.Errorf("ClassifyProfile() = %q, want %q", got.Label, tt.want)
			}
			if got.Description == "" || got.Icon == "" {
				t.Errorf("profile %q missing description or icon", got.Label)
			}
		})
	}
}

func TestClassifyProfileExtended(t *testing.T) {
	tests := []struct {
		name        string
		summary     Summary
		budgetLimit float64
		want        string
	}{
		{
			name: "entertainment group dominates",
			summary: Summary{
				CategoryTotals: map[string]float64{"Entertainment": 40, "Shopping": 15, "Other": 45},
				Total:          100,
			},
			budgetLimit: 1000,
			want:        "Late-Night Entertainer",
		},
		{
			name: "many small purchases under budget",
			summary: Summary{
				CategoryTotals: map[string]float64{"Misc": 400},
				Total:          400,
				Count:          25,
			},
			budgetLimit: 1000,
			want:        "Impulse Buyer",
		},
		{
			name: "well under budget",
			summary: Summary{
				CategoryTotals: map[string]float64{"Misc": 200},
				Total:          200,
				Count:          5,
			},
			budgetLimit: 1000,
			want:        "Budget Optimist",
		},
		{
			name: "weekend share at exactly 40 percent fires nothing",
			summary: Summary{
				CategoryTotals: map[string]float64{"Misc": 1000},
				Total:          1000,
				WeekendTotal:   400,
				Count:          5,
			},
			budgetLimit: 1000,
			want:        "Balanced Spender",
		},
		{
			name: "base weekend branch still wins in the extended tree",
			summary: Summary{
				CategoryTotals: map[string]float64{"Misc": 100},
				Total:          100,
				WeekendTotal:   65,
			},
			budgetLimit: 1000,
			want:        "Weekend Spender",
		},
		{
			name: "zero budget skips the ratio branches",
			summary: Summary{
				CategoryTotals: map[string]float64{"Misc": 100},
				Total:          100,
				Count:          25,
			},
			budgetLimit: 0,
			want:        "Balanced Spender",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyProfileExtended(tt.summary, tt.budgetLimit)
			if got.Label != tt.want {
				t.Errorf("ClassifyProfileExtended() = %q, want %q", got.Label, tt.want)
			}
		})
	}
}
