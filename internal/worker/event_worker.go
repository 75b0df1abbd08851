package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"expenseledger/internal/amqp"
	"expenseledger/internal/sheets"
)

// Stats counts events seen by the worker since start.
type Stats struct {
	Recorded int64
	Cleared  int64
	Failed   int64
}

// EventWorker applies consumed ledger events to the configured exporter.
// With no exporter it only logs what it sees.
type EventWorker struct {
	exporter sheets.EventExporter

	recorded atomic.Int64
	cleared  atomic.Int64
	failed   atomic.Int64
}

func NewEventWorker(exporter sheets.EventExporter) *EventWorker {
	return &EventWorker{exporter: exporter}
}

// Handle processes a single ledger event. A returned error makes the
// consumer requeue the delivery.
func (w *EventWorker) Handle(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"type", ev.Type,
		"session_id", ev.SessionID,
		"timestamp", ev.Timestamp)

	var err error
	switch ev.Type {
	case amqp.EventExpenseRecorded:
		err = w.exportRecorded(ctx, ev)
		if err == nil {
			w.recorded.Add(1)
		}
	case amqp.EventLedgerCleared:
		err = w.exportCleared(ctx, ev)
		if err == nil {
			w.cleared.Add(1)
		}
	default:
		err = fmt.Errorf("unsupported event type %q", ev.Type)
	}

	if err != nil {
		w.failed.Add(1)
		slog.ErrorContext(ctx, "Failed to process ledger event",
			"type", ev.Type,
			"session_id", ev.SessionID,
			"error", err)
		return err
	}
	return nil
}

func (w *EventWorker) exportRecorded(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Expense == nil {
		return fmt.Errorf("%s event without expense", ev.Type)
	}
	if w.exporter == nil {
		slog.InfoContext(ctx, "Expense recorded",
			"session_id", ev.SessionID,
			"expense_id", ev.Expense.ID,
			"amount", ev.Expense.Amount,
			"category", ev.Expense.Category)
		return nil
	}
	if err := w.exporter.ExportRecorded(ctx, ev.SessionID, *ev.Expense); err != nil {
		return fmt.Errorf("export recorded expense: %w", err)
	}
	return nil
}

func (w *EventWorker) exportCleared(ctx context.Context, ev *amqp.LedgerEvent) error {
	if w.exporter == nil {
		slog.InfoContext(ctx, "Ledger cleared",
			"session_id", ev.SessionID,
			"deleted_count", ev.DeletedCount)
		return nil
	}
	if err := w.exporter.ExportCleared(ctx, ev.SessionID, ev.DeletedCount); err != nil {
		return fmt.Errorf("export cleared ledger: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (w *EventWorker) Stats() Stats {
	return Stats{
		Recorded: w.recorded.Load(),
		Cleared:  w.cleared.Load(),
		Failed:   w.failed.Load(),
	}
}

// RunStats logs the counters every interval until ctx is done.
func (w *EventWorker) RunStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := w.Stats()
			slog.InfoContext(ctx, "Worker stats",
				"recorded", s.Recorded,
				"cleared", s.Cleared,
				"failed", s.Failed)
		}
	}
}
