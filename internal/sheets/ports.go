package sheets

import (
	"context"

	"expenseledger/internal/core"
)

// Ports for outbound adapters.
type (
	// EventExporter mirrors ledger events into an external spreadsheet.
	EventExporter interface {
		ExportRecorded(ctx context.Context, sessionID string, e core.Expense) error
		ExportCleared(ctx context.Context, sessionID string, deletedCount int) error
	}
)
