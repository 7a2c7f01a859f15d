// Package memory is the in-process ledger adapter, used in development and
// in tests where no spreadsheet is available.
package memory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	ports "tally/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.Row
}

var (
	_ ports.ExpenseWriter  = (*Store)(nil)
	_ ports.ExpenseDeleter = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row ports.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Delete removes the first row matching the given data.
func (s *Store) Delete(_ context.Context, row ports.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if matches(r, row) {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("ledger row not found: %s %q", row.Date, row.Description)
}

// Rows returns a copy of the stored ledger.
func (s *Store) Rows() []ports.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Row(nil), s.rows...)
}

func matches(a, b ports.Row) bool {
	return a.Date == b.Date &&
		a.Description == b.Description &&
		math.Abs(a.Amount-b.Amount) < 0.005 &&
		strings.EqualFold(a.Category, b.Category)
}
