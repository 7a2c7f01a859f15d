package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindExpenseSync   = "expense_sync"
	KindExpenseDelete = "expense_delete"
)

// ExpenseSyncMessage asks the worker to mirror one expense to the export
// ledger. It carries only identifiers; the worker fetches the full row from
// the database so the ledger never sees stale payloads.
type ExpenseSyncMessage struct {
	Kind      string    `json:"kind"`
	UserID    int64     `json:"user_id"`
	ExpenseID int64     `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpenseDeleteMessage asks the worker to drop an expense from the ledger.
// The row is already gone locally, so the message carries the data the
// ledger needs to find it.
type ExpenseDeleteMessage struct {
	Kind        string    `json:"kind"`
	UserID      int64     `json:"user_id"`
	ExpenseID   int64     `json:"expense_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// envelope is decoded first to pick the concrete message type.
type envelope struct {
	Kind string `json:"kind"`
}

func NewExpenseSyncMessage(userID, expenseID int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		Kind:      KindExpenseSync,
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *ExpenseDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseDeleteMessageFromJSON(data []byte) (*ExpenseDeleteMessage, error) {
	var msg ExpenseDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
