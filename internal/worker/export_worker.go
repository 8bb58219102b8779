package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"investflow/internal/amqp"
	"investflow/internal/core"
	"investflow/internal/sheets"
)

// ExpenseReader is the storage surface the worker needs.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, start, end core.Date) ([]core.Expense, error)
}

// ExportWorker mirrors recorded expenses into the shared spreadsheet.
// The broker delivers at-least-once, so a row may be appended twice
// after a requeue; the sheet is an audit mirror, not a ledger.
type ExportWorker struct {
	storage ExpenseReader
	writer  sheets.ExpenseWriter
}

func NewExportWorker(storage ExpenseReader, writer sheets.ExpenseWriter) *ExportWorker {
	return &ExportWorker{
		storage: storage,
		writer:  writer,
	}
}

// HandleMessage processes one expense recorded message.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	expense, err := w.storage.GetExpense(ctx, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("append expense to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Expense mirrored to sheet",
		"expense_id", msg.ExpenseID,
		"sheets_ref", ref,
		"component", "export_worker")
	return nil
}

// Resync re-appends the last `days` of expenses, catching anything a
// broker outage dropped.
func (w *ExportWorker) Resync(ctx context.Context, days int) error {
	if days <= 0 {
		days = 7
	}
	end := core.DateOf(time.Now())
	start := core.DateOf(end.AddDate(0, 0, -(days - 1)))

	expenses, err := w.storage.ListExpenses(ctx, start, end)
	if err != nil {
		return fmt.Errorf("list expenses for resync: %w", err)
	}

	var failed int
	for _, e := range expenses {
		if _, err := w.writer.Append(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Resync append failed",
				"expense_id", e.ID, "error", err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Resync completed",
		"window_days", days,
		"expenses", len(expenses),
		"failed", failed,
		"component", "export_worker")
	if failed > 0 {
		return fmt.Errorf("resync: %d of %d appends failed", failed, len(expenses))
	}
	return nil
}
