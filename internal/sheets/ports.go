package sheets

import (
	"context"

	"investflow/internal/core"
)

// Ports for outbound adapters.
type ExpenseWriter interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
