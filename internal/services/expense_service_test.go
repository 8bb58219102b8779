package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"investflow/internal/analytics"
	"investflow/internal/core"
	"investflow/internal/export"
)

func newDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestRecordExpenseAssignsIDAndPublishes(t *testing.T) {
	store := &fakeExpenseStore{}
	pub := newFakePublisher()
	svc := NewExpenseService(store, pub, 7)

	id, err := svc.RecordExpense(context.Background(), core.Expense{
		Date:     newDate(t, "2026-01-15"),
		Category: "Food",
		Amount:   core.RupeesToMoney(250),
		Source:   core.SourcePersonal,
	})
	if err != nil {
		t.Fatalf("RecordExpense: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if len(store.expenses) != 1 || store.expenses[0].ID != id {
		t.Fatalf("expense not persisted with id %s", id)
	}
	if store.expenses[0].CreatedAt.IsZero() {
		t.Fatal("CreatedAt must be stamped")
	}
	if len(pub.expenses) != 1 || pub.expenses[0] != id {
		t.Fatalf("expected publish for %s, got %v", id, pub.expenses)
	}
}

func TestRecordExpenseRejectsInvalid(t *testing.T) {
	svc := NewExpenseService(&fakeExpenseStore{}, nil, 7)

	_, err := svc.RecordExpense(context.Background(), core.Expense{
		Date:     newDate(t, "2026-01-15"),
		Category: "Food",
		Amount:   core.Money{Paise: -100},
		Source:   core.SourcePersonal,
	})
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestRecordExpensePublishFailureIsNotFatal(t *testing.T) {
	store := &fakeExpenseStore{}
	pub := newFakePublisher()
	pub.publishErr = errors.New("broker down")
	svc := NewExpenseService(store, pub, 7)

	id, err := svc.RecordExpense(context.Background(), core.Expense{
		Date:     newDate(t, "2026-01-15"),
		Category: "Food",
		Amount:   core.RupeesToMoney(250),
		Source:   core.SourcePersonal,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if len(store.expenses) != 1 || store.expenses[0].ID != id {
		t.Fatal("expense must still be persisted")
	}
}

func TestSummarizeUsesConfiguredTrendDays(t *testing.T) {
	store := &fakeExpenseStore{}
	svc := NewExpenseService(store, nil, 3)

	for _, day := range []string{"2026-01-10", "2026-01-12"} {
		store.expenses = append(store.expenses, core.Expense{
			ID:       day,
			Date:     newDate(t, day),
			Category: "Food",
			Amount:   core.RupeesToMoney(100),
			Source:   core.SourcePersonal,
		})
	}

	sum, err := svc.Summarize(context.Background(), analytics.Options{
		Start: newDate(t, "2026-01-01"),
		End:   newDate(t, "2026-01-31"),
	})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Count != 2 {
		t.Fatalf("Count = %d, want 2", sum.Count)
	}
	if len(sum.Trend) != 3 {
		t.Fatalf("trend length = %d, want configured 3", len(sum.Trend))
	}
}

func TestExportDefaultsDateRange(t *testing.T) {
	store := &fakeExpenseStore{}
	store.expenses = append(store.expenses, core.Expense{
		ID:       "EXP001",
		Date:     newDate(t, "2026-01-15"),
		Time:     "10:30 AM",
		Category: "Food",
		Note:     "Lunch",
		Amount:   core.RupeesToMoney(250),
		Source:   core.SourcePersonal,
	})
	svc := NewExpenseService(store, nil, 7)

	out, err := svc.Export(context.Background(),
		newDate(t, "2026-01-01"), newDate(t, "2026-01-31"),
		export.FormatCSV, export.Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "2026-01-01 - 2026-01-31") {
		t.Fatalf("expected default date range header, got:\n%s", out)
	}
	if !strings.Contains(out, "Lunch") {
		t.Fatal("expected expense row in output")
	}
}

func TestSearchDelegatesToAnalytics(t *testing.T) {
	store := &fakeExpenseStore{}
	store.expenses = append(store.expenses,
		core.Expense{ID: "a", Date: newDate(t, "2026-01-10"), Category: "Food", Note: "Cement bags", Amount: core.RupeesToMoney(10), Source: core.SourcePersonal},
		core.Expense{ID: "b", Date: newDate(t, "2026-01-11"), Category: "Transport", Note: "Fuel", Amount: core.RupeesToMoney(20), Source: core.SourcePersonal},
	)
	svc := NewExpenseService(store, nil, 7)

	got, err := svc.Search(context.Background(), newDate(t, "2026-01-01"), newDate(t, "2026-01-31"), "cement")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [a], got %+v", got)
	}
}
