package amqp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExpenseSyncMessageRoundTrip(t *testing.T) {
	msg := NewExpenseSyncMessage(7, 42)
	if msg.Kind != KindExpenseSync {
		t.Errorf("Kind = %q, want %q", msg.Kind, KindExpenseSync)
	}
	if msg.Timestamp.IsZero() {
		t.Errorf("Timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := ExpenseSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if got.UserID != 7 || got.ExpenseID != 42 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDispatchSync(t *testing.T) {
	body, _ := NewExpenseSyncMessage(1, 2).ToJSON()

	var handled *ExpenseSyncMessage
	err := dispatch(context.Background(), body, Handlers{
		OnSync: func(_ context.Context, m *ExpenseSyncMessage) error {
			handled = m
			return nil
		},
	})
	if err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if handled == nil || handled.ExpenseID != 2 {
		t.Errorf("sync handler not invoked: %+v", handled)
	}
}

func TestDispatchDelete(t *testing.T) {
	msg := &ExpenseDeleteMessage{
		Kind:        KindExpenseDelete,
		UserID:      1,
		ExpenseID:   9,
		Date:        "2025-03-14",
		Description: "lunch",
		AmountCents: 1250,
		Category:    "Food",
		Timestamp:   time.Now(),
	}
	body, _ := msg.ToJSON()

	var handled *ExpenseDeleteMessage
	err := dispatch(context.Background(), body, Handlers{
		OnDelete: func(_ context.Context, m *ExpenseDeleteMessage) error {
			handled = m
			return nil
		},
	})
	if err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if handled == nil || handled.ExpenseID != 9 || handled.Category != "Food" {
		t.Errorf("delete handler not invoked correctly: %+v", handled)
	}
}

func TestDispatchHandlerError(t *testing.T) {
	body, _ := NewExpenseSyncMessage(1, 2).ToJSON()
	wantErr := errors.New("ledger down")

	err := dispatch(context.Background(), body, Handlers{
		OnSync: func(context.Context, *ExpenseSyncMessage) error { return wantErr },
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("dispatch() = %v, want handler error", err)
	}
}

func TestDispatchToleratesJunk(t *testing.T) {
	// Undecodable or unknown messages are dropped, not requeued forever.
	if err := dispatch(context.Background(), []byte("not json"), Handlers{}); err != nil {
		t.Errorf("dispatch(junk) = %v, want nil", err)
	}
	if err := dispatch(context.Background(), []byte(`{"kind":"mystery"}`), Handlers{}); err != nil {
		t.Errorf("dispatch(unknown kind) = %v, want nil", err)
	}
	body, _ := NewExpenseSyncMessage(1, 2).ToJSON()
	if err := dispatch(context.Background(), body, Handlers{}); err != nil {
		t.Errorf("dispatch() with nil handler = %v, want nil", err)
	}
}
