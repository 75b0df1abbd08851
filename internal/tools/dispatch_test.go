package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"expenseledger/internal/core"
	"expenseledger/internal/services"
	"expenseledger/internal/session"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(services.NewLedgerService(session.NewMemoryStore(10, time.Hour), nil))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func mustCall(t *testing.T, d *Dispatcher, name, args string) any {
	t.Helper()
	res, err := d.Call(context.Background(), "s1", name, json.RawMessage(args))
	if err != nil {
		t.Fatalf("%s(%s): %v", name, args, err)
	}
	return res
}

func TestDispatchScenario(t *testing.T) {
	d := newDispatcher(t)

	r1 := mustCall(t, d, AddExpense, `{"amount":150.50,"description":"Groceries at Walmart","category":"Food"}`).(core.RecordResult)
	if r1.Expense.ID != 1 || r1.Expense.Category != "food" {
		t.Fatalf("unexpected record: %+v", r1)
	}
	r2 := mustCall(t, d, AddExpense, `{"amount":"20","description":"Bus ticket","category":"Transport"}`).(core.RecordResult)
	if r2.Expense.ID != 2 || r2.Expense.Amount != 20 {
		t.Fatalf("unexpected record: %+v", r2)
	}

	tot := mustCall(t, d, GetTotal, ``).(core.TotalResult)
	if tot.Total != 170.5 || tot.Count != 2 {
		t.Fatalf("unexpected total: %+v", tot)
	}
	f := mustCall(t, d, GetByCategory, `{"category":"FOOD"}`).(core.FilterResult)
	if f.Count != 1 || f.Expenses[0].ID != 1 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	c := mustCall(t, d, ClearAll, `{}`).(core.ClearResult)
	if c.DeletedCount != 2 {
		t.Fatalf("unexpected clear: %+v", c)
	}
	l := mustCall(t, d, ListExpenses, `null`).(core.ListResult)
	if l.Count != 0 {
		t.Fatalf("unexpected list: %+v", l)
	}
}

func TestDispatchRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     string
		argument string
	}{
		{"non-numeric amount", AddExpense, `{"amount":"abc","description":"x","category":"y"}`, "amount"},
		{"boolean amount", AddExpense, `{"amount":true,"description":"x","category":"y"}`, "amount"},
		{"missing amount", AddExpense, `{"description":"x","category":"y"}`, "amount"},
		{"null description", AddExpense, `{"amount":1,"description":null,"category":"y"}`, "description"},
		{"numeric category", AddExpense, `{"amount":1,"description":"x","category":3}`, "category"},
		{"missing category filter", GetByCategory, `{}`, "category"},
		{"not an object", GetTotal, `[1,2]`, ""},
		{"malformed json", GetByCategory, `{"category":`, ""},
		{"thousands separator", AddExpense, `{"amount":"1,234","description":"x","category":"y"}`, "amount"},
		{"hex float", AddExpense, `{"amount":"0x1p4","description":"x","category":"y"}`, "amount"},
		{"unknown field", AddExpense, `{"amount":1,"description":"x","category":"y","note":"z"}`, ""},
		{"trailing data", ListExpenses, `{} {}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t)
			_, err := d.Call(context.Background(), "s1", tt.tool, json.RawMessage(tt.args))
			if !errors.Is(err, ErrInvalidArguments) {
				t.Fatalf("expected ErrInvalidArguments, got %v", err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) || argErr.Argument != tt.argument || argErr.Tool != tt.tool {
				t.Fatalf("unexpected argument error: %#v", argErr)
			}

			// Nothing reached the ledger.
			l := mustCall(t, d, ListExpenses, `{}`).(core.ListResult)
			if l.Count != 0 {
				t.Fatalf("ledger mutated by invalid call: %+v", l)
			}
		})
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	_, err := newDispatcher(t).Call(context.Background(), "s1", "delete_expense", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestCatalog(t *testing.T) {
	tools := Catalog()
	want := []string{AddExpense, GetTotal, ListExpenses, GetByCategory, ClearAll}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}
	for i, name := range want {
		if tools[i].Slug != name {
			t.Fatalf("tool %d: expected %s, got %s", i, name, tools[i].Slug)
		}
		if !json.Valid(tools[i].ArgSchema) {
			t.Fatalf("tool %s: invalid arg schema", name)
		}
	}

	add, ok := Lookup(AddExpense)
	if !ok || add.GoImpl.FuncID != FuncIDAddExpense {
		t.Fatalf("unexpected add_expense tool: %+v", add)
	}
	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(add.ArgSchema, &schema); err != nil || len(schema.Required) != 3 {
		t.Fatalf("unexpected add_expense schema %s: %v", add.ArgSchema, err)
	}

	tools[0].Slug = "mutated"
	tools[0].ArgSchema[0] = 'X'
	tools[0].Tags[0] = "mutated"
	again, _ := Lookup(AddExpense)
	if again.Slug != AddExpense || again.ArgSchema[0] != '{' || again.Tags[0] != "ledger" {
		t.Fatal("Catalog must not share state between calls")
	}
}

func TestDispatcherTools(t *testing.T) {
	got := newDispatcher(t).Tools()
	if len(got) != 5 {
		t.Fatalf("expected 5 registered tools, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Slug > got[i].Slug {
			t.Fatalf("registered tools not sorted: %s before %s", got[i-1].Slug, got[i].Slug)
		}
	}
}

type failingLedger struct{ Ledger }

var errStoreDown = errors.New("store down")

func (failingLedger) Total(context.Context, string) (core.TotalResult, error) {
	return core.TotalResult{}, errStoreDown
}

func TestDispatchStoreErrorIsNotArgumentError(t *testing.T) {
	d, err := NewDispatcher(failingLedger{})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	_, err = d.Call(context.Background(), "s1", GetTotal, nil)
	if !errors.Is(err, errStoreDown) || errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAmountUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
		ok   bool
	}{
		{`12.5`, 12.5, true},
		{`"12,50"`, 12.5, true},
		{`"-3"`, -3, true},
		{`"1,234"`, 0, false},
		{`"0x1p4"`, 0, false},
		{`true`, 0, false},
		{`[]`, 0, false},
	}
	for _, tc := range cases {
		var a Amount
		err := json.Unmarshal([]byte(tc.in), &a)
		if tc.ok {
			if err != nil || a != tc.want {
				t.Fatalf("%s: expected %v, got %v (err=%v)", tc.in, tc.want, a, err)
			}
		} else if err == nil {
			t.Fatalf("%s: expected error, got %v", tc.in, a)
		}
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{core.RecordResult{Expense: core.Expense{ID: 3}}, "recorded id=3"},
		{core.TotalResult{Total: 1.5, Count: 2}, "total=1.50 count=2"},
		{core.ListResult{Count: 4}, "count=4"},
		{core.FilterResult{Category: "Food", Count: 1}, "category=food count=1"},
		{core.ClearResult{DeletedCount: 2}, "deleted=2"},
		{"other", ""},
	}
	for _, tc := range cases {
		if got := Summary(tc.in); got != tc.want {
			t.Fatalf("Summary(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
