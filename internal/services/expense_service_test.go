package services

import (
	"context"
	"errors"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

type fakeExpenseStore struct {
	nextID  int64
	rows    map[int64]core.Expense
	history map[string][]int64
}

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{
		rows:    make(map[int64]core.Expense),
		history: make(map[string][]int64),
	}
}

func (f *fakeExpenseStore) CreateExpense(_ context.Context, _ int64, e core.Expense) (int64, error) {
	f.nextID++
	e.ID = f.nextID
	f.rows[e.ID] = e
	return e.ID, nil
}

func (f *fakeExpenseStore) GetExpense(_ context.Context, _ int64, id int64) (core.Expense, error) {
	e, ok := f.rows[id]
	if !ok {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (f *fakeExpenseStore) UpdateExpense(_ context.Context, _ int64, e core.Expense) error {
	existing, ok := f.rows[e.ID]
	if !ok {
		return storage.ErrNotFound
	}
	e.Anomaly = existing.Anomaly
	f.rows[e.ID] = e
	return nil
}

func (f *fakeExpenseStore) DeleteExpense(_ context.Context, _ int64, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context, _ int64) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(f.rows))
	for _, e := range f.rows {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExpenseStore) CategoryHistory(_ context.Context, _ int64, category string) ([]int64, error) {
	return f.history[category], nil
}

type fakePublisher struct {
	syncIDs []int64
	deletes []*amqp.ExpenseDeleteMessage
	err     error
}

func (f *fakePublisher) PublishExpenseSync(_ context.Context, _, expenseID int64) error {
	if f.err != nil {
		return f.err
	}
	f.syncIDs = append(f.syncIDs, expenseID)
	return nil
}

func (f *fakePublisher) PublishExpenseDelete(_ context.Context, msg *amqp.ExpenseDeleteMessage) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, msg)
	return nil
}

func validExpense(cents int64, category string) core.Expense {
	return core.Expense{
		Date:        core.NewDate(2025, 6, 10),
		Description: "test purchase",
		Amount:      core.Money{Cents: cents},
		Category:    category,
	}
}

func TestCreateClassifiesAnomaly(t *testing.T) {
	tests := []struct {
		name    string
		history []int64
		cents   int64
		want    bool
	}{
		{"far above average and floor", []int64{2000, 3000}, 12000, true},
		{"above average but under floor", []int64{2000, 3000}, 9000, false},
		{"first expense in category", nil, 50000, false},
		{"ordinary amount", []int64{2000, 3000}, 2600, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeExpenseStore()
			store.history["Food"] = tt.history
			svc := NewExpenseService(store, nil)

			created, err := svc.Create(context.Background(), 1, validExpense(tt.cents, "Food"))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if created.Anomaly != tt.want {
				t.Errorf("Anomaly = %v, want %v", created.Anomaly, tt.want)
			}
			if stored := store.rows[created.ID]; stored.Anomaly != tt.want {
				t.Errorf("stored Anomaly = %v, want %v", stored.Anomaly, tt.want)
			}
		})
	}
}

func TestCreateRejectsInvalidExpense(t *testing.T) {
	store := newFakeExpenseStore()
	svc := NewExpenseService(store, nil)

	e := validExpense(1000, "Food")
	e.Description = "   "
	if _, err := svc.Create(context.Background(), 1, e); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("Create with blank description: error = %v, want ErrEmptyDescription", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("invalid expense reached the store")
	}
}

func TestCreateSurvivesPublisherFailure(t *testing.T) {
	store := newFakeExpenseStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(store, pub)

	created, err := svc.Create(context.Background(), 1, validExpense(1500, "Food"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := store.rows[created.ID]; !ok {
		t.Errorf("expense not saved when publish fails")
	}
}

func TestCreatePublishesSync(t *testing.T) {
	store := newFakeExpenseStore()
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	created, err := svc.Create(context.Background(), 1, validExpense(1500, "Food"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(pub.syncIDs) != 1 || pub.syncIDs[0] != created.ID {
		t.Errorf("sync publishes = %v, want [%d]", pub.syncIDs, created.ID)
	}
}

func TestUpdateReturnsFreshRow(t *testing.T) {
	store := newFakeExpenseStore()
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	created, err := svc.Create(context.Background(), 1, validExpense(1500, "Food"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Description = "updated purchase"
	created.Amount = core.Money{Cents: 2500}
	updated, err := svc.Update(context.Background(), 1, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != "updated purchase" || updated.Amount.Cents != 2500 {
		t.Errorf("Update returned stale row: %+v", updated)
	}
	if len(pub.syncIDs) != 2 {
		t.Errorf("update did not republish, sync publishes = %v", pub.syncIDs)
	}
}

func TestDeletePublishesRowData(t *testing.T) {
	store := newFakeExpenseStore()
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	created, err := svc.Create(context.Background(), 1, validExpense(1500, "Food"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), 1, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.rows[created.ID]; ok {
		t.Errorf("expense still in store after delete")
	}
	if len(pub.deletes) != 1 {
		t.Fatalf("delete publishes = %d, want 1", len(pub.deletes))
	}
	msg := pub.deletes[0]
	if msg.ExpenseID != created.ID || msg.Date != "2025-06-10" || msg.AmountCents != 1500 {
		t.Errorf("delete message = %+v, missing row data", msg)
	}
}

func TestDeleteMissingExpense(t *testing.T) {
	svc := NewExpenseService(newFakeExpenseStore(), nil)
	if err := svc.Delete(context.Background(), 1, 99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete missing: error = %v, want ErrNotFound", err)
	}
}
