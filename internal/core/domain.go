package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single recorded transaction. Anomaly is set once when the
	// expense is created and never revised afterwards, even when later
	// expenses shift the category average.
	Expense struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Category    string
		Anomaly     bool
	}

	// Budget is the spending limit for one calendar month. At most one
	// budget exists per user per month.
	Budget struct {
		ID     int64
		Month  string // YYYY-MM
		Amount Money
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Key returns the date in YYYY-MM-DD form, the canonical key for daily
// aggregates and the wire format for dates.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the month identifier in YYYY-MM form.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysInMonth returns the number of calendar days in the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidMonthKey reports whether s is a well-formed YYYY-MM month identifier.
func ValidMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if !ValidMonthKey(b.Month) {
		return ErrInvalidMonth
	}
	return b.Amount.Validate()
}
