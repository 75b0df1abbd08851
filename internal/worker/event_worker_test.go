package worker

import (
	"context"
	"errors"
	"testing"

	"expenseledger/internal/amqp"
	"expenseledger/internal/core"
)

type fakeExporter struct {
	recorded []core.Expense
	cleared  []int
	err      error
}

func (f *fakeExporter) ExportRecorded(_ context.Context, _ string, e core.Expense) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, e)
	return nil
}

func (f *fakeExporter) ExportCleared(_ context.Context, _ string, n int) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, n)
	return nil
}

func TestHandleRoutesEvents(t *testing.T) {
	exp := &fakeExporter{}
	w := NewEventWorker(exp)
	ctx := context.Background()

	e := core.Expense{ID: 1, Amount: 12.5, Description: "lunch", Category: "food"}
	if err := w.Handle(ctx, amqp.NewExpenseRecordedEvent("s1", e)); err != nil {
		t.Fatalf("recorded: %v", err)
	}
	if err := w.Handle(ctx, amqp.NewLedgerClearedEvent("s1", 4)); err != nil {
		t.Fatalf("cleared: %v", err)
	}

	if len(exp.recorded) != 1 || exp.recorded[0] != e {
		t.Fatalf("unexpected recorded exports: %+v", exp.recorded)
	}
	if len(exp.cleared) != 1 || exp.cleared[0] != 4 {
		t.Fatalf("unexpected cleared exports: %+v", exp.cleared)
	}
	if s := w.Stats(); s != (Stats{Recorded: 1, Cleared: 1}) {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestHandleExporterFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewEventWorker(&fakeExporter{err: boom})

	err := w.Handle(context.Background(), amqp.NewLedgerClearedEvent("s1", 1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exporter error, got %v", err)
	}
	if s := w.Stats(); s.Failed != 1 || s.Cleared != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestHandleWithoutExporter(t *testing.T) {
	w := NewEventWorker(nil)
	ctx := context.Background()

	if err := w.Handle(ctx, amqp.NewExpenseRecordedEvent("s1", core.Expense{ID: 1})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Handle(ctx, &amqp.LedgerEvent{Type: amqp.EventExpenseRecorded, SessionID: "s1"}); err == nil {
		t.Fatal("expected error for recorded event without expense")
	}
	if err := w.Handle(ctx, &amqp.LedgerEvent{Type: "expense.deleted", SessionID: "s1"}); err == nil {
		t.Fatal("expected error for unsupported event type")
	}
	if s := w.Stats(); s != (Stats{Recorded: 1, Failed: 2}) {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestRunStatsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewEventWorker(nil).RunStats(ctx, 1); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}
