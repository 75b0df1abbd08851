package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"expenseledger/internal/core"
)

type mapState map[string][]core.Expense

func (m mapState) Get(_ context.Context, key string) ([]core.Expense, bool, error) {
	v, ok := m[key]
	return append([]core.Expense(nil), v...), ok, nil
}

func (m mapState) Set(_ context.Context, key string, v []core.Expense) error {
	m[key] = append([]core.Expense(nil), v...)
	return nil
}

var errBroken = errors.New("store down")

type brokenState struct{ failSet bool }

func (b brokenState) Get(context.Context, string) ([]core.Expense, bool, error) {
	if b.failSet {
		return nil, false, nil
	}
	return nil, false, errBroken
}

func (b brokenState) Set(context.Context, string, []core.Expense) error { return errBroken }

func mustRecord(t *testing.T, l *Ledger, amount float64, desc, cat string) core.RecordResult {
	t.Helper()
	res, err := l.Record(context.Background(), amount, desc, cat)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return res
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})

	r1 := mustRecord(t, l, 150.50, "Groceries at Walmart", "Food")
	if r1.Status != "success" || r1.Expense.ID != 1 || r1.Expense.Amount != 150.50 || r1.Expense.Category != "food" {
		t.Fatalf("unexpected first record: %+v", r1)
	}
	if !strings.Contains(r1.Message, "$150.50") {
		t.Fatalf("message missing amount: %q", r1.Message)
	}
	if r1.Message != "Added $150.50 for Groceries at Walmart under Food category." {
		t.Fatalf("unexpected message: %q", r1.Message)
	}

	r2 := mustRecord(t, l, 20, "Bus ticket", "Transport")
	if r2.Expense.ID != 2 || r2.Expense.Category != "transport" {
		t.Fatalf("unexpected second record: %+v", r2)
	}

	tot, err := l.Total(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if tot.Total != 170.50 || tot.Count != 2 {
		t.Fatalf("unexpected total: %+v", tot)
	}
	if tot.Message != "You've spent $170.50 in 2 expenses" {
		t.Fatalf("unexpected total message: %q", tot.Message)
	}

	f, err := l.FilterByCategory(ctx, "food")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.Count != 1 || len(f.Expenses) != 1 || f.Expenses[0].ID != 1 || f.Total != 150.50 {
		t.Fatalf("unexpected filter: %+v", f)
	}

	c, err := l.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if c.DeletedCount != 2 || c.Status != "success" || c.Message != "Cleared 2 expenses" {
		t.Fatalf("unexpected clear: %+v", c)
	}

	lst, err := l.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if lst.Count != 0 || lst.Expenses == nil || len(lst.Expenses) != 0 {
		t.Fatalf("unexpected list after clear: %+v", lst)
	}
}

func TestEmptyLedgerResults(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})

	tot, _ := l.Total(ctx)
	if tot.Total != 0 || tot.Count != 0 || tot.Message != "No expenses yet!" {
		t.Fatalf("unexpected empty total: %+v", tot)
	}
	lst, _ := l.List(ctx)
	if lst.Count != 0 || len(lst.Expenses) != 0 || lst.Message != "No expenses recorded" {
		t.Fatalf("unexpected empty list: %+v", lst)
	}
	f, _ := l.FilterByCategory(ctx, "Food")
	if f.Count != 0 || f.Total != 0 || f.Category != "Food" || f.Message != "No expenses in 'Food'" {
		t.Fatalf("unexpected empty filter: %+v", f)
	}
	c, _ := l.ClearAll(ctx)
	if c.DeletedCount != 0 {
		t.Fatalf("unexpected empty clear: %+v", c)
	}
}

func TestIDsFollowCallOrderAndRestartAfterClear(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})
	for i := 1; i <= 5; i++ {
		if r := mustRecord(t, l, float64(i), "x", "c"); r.Expense.ID != i {
			t.Fatalf("record %d got id %d", i, r.Expense.ID)
		}
	}
	lst, _ := l.List(ctx)
	if lst.Count != 5 {
		t.Fatalf("expected count 5, got %d", lst.Count)
	}
	for i, e := range lst.Expenses {
		if e.ID != i+1 {
			t.Fatalf("list out of insertion order: %+v", lst.Expenses)
		}
	}

	_, _ = l.ClearAll(ctx)
	if r := mustRecord(t, l, 1, "y", "c"); r.Expense.ID != 1 {
		t.Fatalf("expected id 1 after clear, got %d", r.Expense.ID)
	}
}

func TestFilterIsCaseInsensitiveAndExact(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})
	mustRecord(t, l, 10, "a", "Food")
	mustRecord(t, l, 5, "b", "fast food")
	mustRecord(t, l, 2.25, "c", "FOOD")
	mustRecord(t, l, 7, "d", "Transport")

	lower, _ := l.FilterByCategory(ctx, "food")
	upper, _ := l.FilterByCategory(ctx, "Food")
	if lower.Count != 2 || upper.Count != 2 {
		t.Fatalf("expected 2 matches, got %d and %d", lower.Count, upper.Count)
	}
	for i := range lower.Expenses {
		if lower.Expenses[i] != upper.Expenses[i] {
			t.Fatalf("case variants differ: %+v vs %+v", lower.Expenses, upper.Expenses)
		}
	}
	if lower.Expenses[0].ID != 1 || lower.Expenses[1].ID != 3 {
		t.Fatalf("unexpected order: %+v", lower.Expenses)
	}
	if lower.Total != 12.25 {
		t.Fatalf("expected total 12.25, got %v", lower.Total)
	}
	if upper.Category != "Food" || upper.Message != "2 expenses in 'Food' totalling $12.25" {
		t.Fatalf("expected input echoed, got %+v", upper)
	}
}

func TestTotalRoundsToCents(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})
	mustRecord(t, l, 0.1, "a", "x")
	mustRecord(t, l, 0.2, "b", "x")
	mustRecord(t, l, 1.004, "c", "x")

	tot, _ := l.Total(ctx)
	if tot.Total != 1.3 {
		t.Fatalf("expected 1.3, got %v", tot.Total)
	}
	lst, _ := l.List(ctx)
	if lst.Total != 1.3 {
		t.Fatalf("expected list total 1.3, got %v", lst.Total)
	}
}

func TestRecordAcceptsNonPositiveAndEmptyInputs(t *testing.T) {
	ctx := context.Background()
	l := New(mapState{})
	neg := mustRecord(t, l, -3, "", "")
	if neg.Expense.Amount != -3 || neg.Expense.Category != "" || neg.Message != "Added $-3.00 for  under  category." {
		t.Fatalf("unexpected negative record: %+v", neg)
	}
	mustRecord(t, l, 0, "free", "Misc")
	tot, _ := l.Total(ctx)
	if tot.Total != -3 || tot.Count != 2 {
		t.Fatalf("unexpected total: %+v", tot)
	}
}

func TestStateErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	l := New(brokenState{})
	if _, err := l.Record(ctx, 1, "a", "b"); !errors.Is(err, errBroken) {
		t.Fatalf("record: expected store error, got %v", err)
	}
	if _, err := l.Total(ctx); !errors.Is(err, errBroken) {
		t.Fatalf("total: expected store error, got %v", err)
	}
	if _, err := l.List(ctx); !errors.Is(err, errBroken) {
		t.Fatalf("list: expected store error, got %v", err)
	}
	if _, err := l.FilterByCategory(ctx, "b"); !errors.Is(err, errBroken) {
		t.Fatalf("filter: expected store error, got %v", err)
	}

	w := New(brokenState{failSet: true})
	if _, err := w.Record(ctx, 1, "a", "b"); !errors.Is(err, errBroken) {
		t.Fatalf("record set: expected store error, got %v", err)
	}
	if _, err := w.ClearAll(ctx); !errors.Is(err, errBroken) {
		t.Fatalf("clear set: expected store error, got %v", err)
	}
}
