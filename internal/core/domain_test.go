package core

import (
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Date:        NewDate(2025, 3, 14),
		Description: "lunch",
		Amount:      Money{Cents: 1250},
		Category:    "Food",
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{
			name:   "valid expense",
			mutate: func(e *Expense) {},
		},
		{
			name:    "empty description",
			mutate:  func(e *Expense) { e.Description = "   " },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "zero amount",
			mutate:  func(e *Expense) { e.Amount = Money{} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(e *Expense) { e.Amount = Money{Cents: -100} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "empty category",
			mutate:  func(e *Expense) { e.Category = "" },
			wantErr: ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		budget  Budget
		wantErr bool
	}{
		{name: "valid", budget: Budget{Month: "2025-03", Amount: Money{Cents: 100000}}},
		{name: "bad month format", budget: Budget{Month: "2025-3", Amount: Money{Cents: 100000}}, wantErr: true},
		{name: "month out of range", budget: Budget{Month: "2025-13", Amount: Money{Cents: 100000}}, wantErr: true},
		{name: "zero amount", budget: Budget{Month: "2025-03"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2025, 3, 8) // a Saturday
	if !d.IsWeekend() {
		t.Errorf("IsWeekend(2025-03-08) = false, want true")
	}
	if NewDate(2025, 3, 10).IsWeekend() { // Monday
		t.Errorf("IsWeekend(2025-03-10) = true, want false")
	}
	if got := d.Key(); got != "2025-03-08" {
		t.Errorf("Key() = %q, want 2025-03-08", got)
	}
	if got := d.MonthKey(); got != "2025-03" {
		t.Errorf("MonthKey() = %q, want 2025-03", got)
	}
	if got := NewDate(2024, 2, 1).DaysInMonth(); got != 29 {
		t.Errorf("DaysInMonth(feb 2024) = %d, want 29", got)
	}
	if got := NewDate(2025, 4, 1).DaysInMonth(); got != 30 {
		t.Errorf("DaysInMonth(apr 2025) = %d, want 30", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 6 || d.Day() != 15 {
		t.Errorf("ParseDate() = %v, want 2025-06-15", d)
	}
	if _, err := ParseDate("15/06/2025"); err == nil {
		t.Errorf("ParseDate(15/06/2025) expected error")
	}
}

func TestValidMonthKey(t *testing.T) {
	for key, want := range map[string]bool{
		"2025-01": true,
		"2025-12": true,
		"2025-00": false,
		"2025-13": false,
		"2025-1":  false,
		"2025/01": false,
		"":        false,
	} {
		if got := ValidMonthKey(key); got != want {
			t.Errorf("ValidMonthKey(%q) = %v, want %v", key, got, want)
		}
	}
}
