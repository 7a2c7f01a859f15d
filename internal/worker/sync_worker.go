// Package worker mirrors expense writes into the export ledger. It consumes
// sync messages from AMQP, fetches the fresh row from storage and appends or
// removes the matching ledger line.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
)

// ExpenseGetter is the storage slice the worker reads from.
type ExpenseGetter interface {
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
}

type SyncWorker struct {
	store   ExpenseGetter
	writer  sheets.ExpenseWriter
	deleter sheets.ExpenseDeleter
}

func NewSyncWorker(store ExpenseGetter, writer sheets.ExpenseWriter, deleter sheets.ExpenseDeleter) *SyncWorker {
	return &SyncWorker{
		store:   store,
		writer:  writer,
		deleter: deleter,
	}
}

// Handlers returns the AMQP dispatch table for this worker.
func (w *SyncWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		OnSync:   w.HandleSyncMessage,
		OnDelete: w.HandleDeleteMessage,
	}
}

// HandleSyncMessage appends one expense to the ledger. The row is fetched by
// id so the ledger always reflects the latest local state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"expense_id", msg.ExpenseID,
		"user_id", msg.UserID)

	expense, err := w.store.GetExpense(ctx, msg.UserID, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, ledgerRow(expense))
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	slog.InfoContext(ctx, "Expense synced to ledger",
		"expense_id", msg.ExpenseID,
		"ledger_ref", ref)
	return nil
}

// HandleDeleteMessage removes one expense from the ledger using the row data
// carried in the message; the local row is already gone.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"expense_id", msg.ExpenseID,
		"user_id", msg.UserID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping",
			"expense_id", msg.ExpenseID)
		return nil
	}

	row := sheets.Row{
		Date:        msg.Date,
		Description: msg.Description,
		Amount:      float64(msg.AmountCents) / 100.0,
		Category:    msg.Category,
	}
	if err := w.deleter.Delete(ctx, row); err != nil {
		return fmt.Errorf("delete from ledger: %w", err)
	}

	slog.InfoContext(ctx, "Expense removed from ledger",
		"expense_id", msg.ExpenseID)
	return nil
}

func ledgerRow(e core.Expense) sheets.Row {
	return sheets.Row{
		Date:        e.Date.Key(),
		Description: e.Description,
		Amount:      e.Amount.Float64(),
		Category:    e.Category,
	}
}
