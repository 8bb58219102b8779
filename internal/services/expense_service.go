package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"investflow/internal/analytics"
	"investflow/internal/core"
	"investflow/internal/export"
)

// ExpenseStore is the persistence surface the expense service needs.
type ExpenseStore interface {
	InsertExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, start, end core.Date) ([]core.Expense, error)
}

// EventPublisher fans domain events out to the message broker.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, expenseID string) error
	PublishProposalResolved(ctx context.Context, proposalID, projectID, state string) error
}

// ExpenseService orchestrates expense operations across storage and AMQP.
type ExpenseService struct {
	storage   ExpenseStore
	publisher EventPublisher
	trendDays int
}

func NewExpenseService(storage ExpenseStore, publisher EventPublisher, trendDays int) *ExpenseService {
	if trendDays <= 0 {
		trendDays = analytics.DefaultTrendDays
	}
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		trendDays: trendDays,
	}
}

// RecordExpense validates, persists, and announces one expense. The
// broker publish is best-effort; a failure there never loses the record.
func (s *ExpenseService) RecordExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate expense: %w", err)
	}

	if err := s.storage.InsertExpense(ctx, e); err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping expense event")
		return e.ID, nil
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, e.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"expense_id", e.ID, "error", err)
		// Don't fail the request, the expense is saved locally.
	}
	return e.ID, nil
}

// ListExpenses returns expenses inside an inclusive day window.
func (s *ExpenseService) ListExpenses(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, start, end)
}

// Summarize aggregates a window of expenses for the dashboard.
func (s *ExpenseService) Summarize(ctx context.Context, opts analytics.Options) (core.Summary, error) {
	expenses, err := s.storage.ListExpenses(ctx, opts.Start, opts.End)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	if opts.TrendDays == 0 {
		opts.TrendDays = s.trendDays
	}
	return analytics.Aggregate(expenses, opts), nil
}

// Search filters a window of expenses by free text.
func (s *ExpenseService) Search(ctx context.Context, start, end core.Date, query string) ([]core.Expense, error) {
	expenses, err := s.storage.ListExpenses(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return analytics.Search(expenses, query), nil
}

// Export serializes a window of expenses into the requested format.
func (s *ExpenseService) Export(ctx context.Context, start, end core.Date, format export.Format, opts export.Options) (string, error) {
	expenses, err := s.storage.ListExpenses(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("list expenses: %w", err)
	}
	if opts.DateRange == "" {
		opts.DateRange = fmt.Sprintf("%s - %s", start.String(), end.String())
	}
	return export.Serialize(expenses, format, opts)
}
