// Package services wires storage, messaging and the analytics engine into
// the operations the HTTP layer exposes.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/analytics"
	"tally/internal/core"
)

// ExpenseStore is the slice of the repository the expense lifecycle needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, userID int64, e core.Expense) (int64, error)
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
	UpdateExpense(ctx context.Context, userID int64, e core.Expense) error
	DeleteExpense(ctx context.Context, userID, id int64) error
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	CategoryHistory(ctx context.Context, userID int64, category string) ([]int64, error)
}

// SyncPublisher pushes ledger sync messages. A nil publisher disables sync;
// expense writes never fail because the broker is away.
type SyncPublisher interface {
	PublishExpenseSync(ctx context.Context, userID, expenseID int64) error
	PublishExpenseDelete(ctx context.Context, msg *amqp.ExpenseDeleteMessage) error
}

// ExpenseService owns the expense lifecycle. Creation is where the anomaly
// flag is decided: the new amount is compared against the category history
// recorded so far, and the verdict is stored with the row, never revised.
type ExpenseService struct {
	store     ExpenseStore
	publisher SyncPublisher
}

func NewExpenseService(store ExpenseStore, publisher SyncPublisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

// Create classifies, saves and publishes a new expense. The returned copy
// carries the generated id and the anomaly verdict.
func (s *ExpenseService) Create(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	// The new expense is not part of its own history.
	history, err := s.store.CategoryHistory(ctx, userID, e.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("category history: %w", err)
	}
	e.Anomaly = analytics.ClassifyAnomaly(e.Amount.Float64(), centsToFloats(history))

	id, err := s.store.CreateExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseSync(ctx, userID, id); err != nil {
			// The row is saved; the ledger catches up on the next sync.
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"expense_id", id, "user_id", userID, "error", err)
		}
	}

	return e, nil
}

// Update rewrites an expense's fields and republishes it for the ledger.
// The anomaly flag keeps its creation-time value.
func (s *ExpenseService) Update(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpdateExpense(ctx, userID, e); err != nil {
		return core.Expense{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseSync(ctx, userID, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"expense_id", e.ID, "user_id", userID, "error", err)
		}
	}

	return s.store.GetExpense(ctx, userID, e.ID)
}

// Delete removes an expense and tells the ledger to drop it. The delete
// message carries the row's data because the row is gone once it's sent.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	if s.publisher != nil {
		msg := &amqp.ExpenseDeleteMessage{
			UserID:      userID,
			ExpenseID:   id,
			Date:        e.Date.Key(),
			Description: e.Description,
			AmountCents: e.Amount.Cents,
			Category:    e.Category,
		}
		if err := s.publisher.PublishExpenseDelete(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"expense_id", id, "user_id", userID, "error", err)
		}
	}

	return nil
}

// List returns all of a user's expenses, oldest first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func centsToFloats(cents []int64) []float64 {
	if len(cents) == 0 {
		return nil
	}
	out := make([]float64, len(cents))
	for i, c := range cents {
		out[i] = float64(c) / 100.0
	}
	return out
}
