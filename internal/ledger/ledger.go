// Package ledger implements the session-scoped expense ledger.
//
// A Ledger owns no records itself. Every operation loads the expense
// sequence from the session State under StateKey, computes its result and,
// for mutating operations, writes the sequence back. Operations never fail
// on their own; the only errors returned come from the State.
package ledger

import (
	"context"
	"fmt"

	"expenseledger/internal/core"
	"expenseledger/internal/session"
)

// StateKey is the key under which the expense sequence is stored.
const StateKey = "expenses"

type Ledger struct {
	state session.State
}

func New(state session.State) *Ledger {
	return &Ledger{state: state}
}

func (l *Ledger) load(ctx context.Context) ([]core.Expense, error) {
	expenses, ok, err := l.state.Get(ctx, StateKey)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	if !ok || expenses == nil {
		return []core.Expense{}, nil
	}
	return expenses, nil
}

func (l *Ledger) store(ctx context.Context, expenses []core.Expense) error {
	if err := l.state.Set(ctx, StateKey, expenses); err != nil {
		return fmt.Errorf("store expenses: %w", err)
	}
	return nil
}

// Record appends a new expense. The id is the sequence length plus one and
// the category is stored lowercased. Amounts are taken as given, including
// zero and negative values.
func (l *Ledger) Record(ctx context.Context, amount float64, description, category string) (core.RecordResult, error) {
	expenses, err := l.load(ctx)
	if err != nil {
		return core.RecordResult{}, err
	}

	e := core.Expense{
		ID:          len(expenses) + 1,
		Amount:      amount,
		Description: description,
		Category:    core.NormalizeCategory(category),
	}
	if err := l.store(ctx, append(expenses, e)); err != nil {
		return core.RecordResult{}, err
	}

	return core.RecordResult{
		Status:  core.StatusSuccess,
		Message: fmt.Sprintf("Added %s for %s under %s category.", core.FormatDollars(amount), description, category),
		Expense: e,
	}, nil
}

// Total reports the rounded sum and count of all expenses.
func (l *Ledger) Total(ctx context.Context) (core.TotalResult, error) {
	expenses, err := l.load(ctx)
	if err != nil {
		return core.TotalResult{}, err
	}
	if len(expenses) == 0 {
		return core.TotalResult{Total: 0, Count: 0, Message: "No expenses yet!"}, nil
	}

	total := core.SumAmounts(expenses)
	return core.TotalResult{
		Total:   core.RoundCents(total),
		Count:   len(expenses),
		Message: fmt.Sprintf("You've spent %s in %d expenses", core.FormatDollars(total), len(expenses)),
	}, nil
}

// List returns every expense in insertion order.
func (l *Ledger) List(ctx context.Context) (core.ListResult, error) {
	expenses, err := l.load(ctx)
	if err != nil {
		return core.ListResult{}, err
	}
	if len(expenses) == 0 {
		return core.ListResult{Count: 0, Expenses: []core.Expense{}, Message: "No expenses recorded"}, nil
	}

	total := core.SumAmounts(expenses)
	return core.ListResult{
		Count:    len(expenses),
		Expenses: expenses,
		Total:    core.RoundCents(total),
		Message:  fmt.Sprintf("%d expenses totalling %s", len(expenses), core.FormatDollars(total)),
	}, nil
}

// FilterByCategory returns the expenses whose category matches category
// case-insensitively. The result echoes category as supplied.
func (l *Ledger) FilterByCategory(ctx context.Context, category string) (core.FilterResult, error) {
	expenses, err := l.load(ctx)
	if err != nil {
		return core.FilterResult{}, err
	}

	matched := core.ByCategory(expenses, category)
	if len(matched) == 0 {
		return core.FilterResult{
			Category: category,
			Count:    0,
			Total:    0,
			Expenses: []core.Expense{},
			Message:  fmt.Sprintf("No expenses in '%s'", category),
		}, nil
	}

	total := core.SumAmounts(matched)
	return core.FilterResult{
		Category: category,
		Count:    len(matched),
		Total:    core.RoundCents(total),
		Expenses: matched,
		Message:  fmt.Sprintf("%d expenses in '%s' totalling %s", len(matched), category, core.FormatDollars(total)),
	}, nil
}

// ClearAll discards every expense in the session. It asks for no
// confirmation; callers gate it.
func (l *Ledger) ClearAll(ctx context.Context) (core.ClearResult, error) {
	expenses, err := l.load(ctx)
	if err != nil {
		return core.ClearResult{}, err
	}
	count := len(expenses)

	if err := l.store(ctx, []core.Expense{}); err != nil {
		return core.ClearResult{}, err
	}

	return core.ClearResult{
		Status:       core.StatusSuccess,
		DeletedCount: count,
		Message:      fmt.Sprintf("Cleared %d expenses", count),
	}, nil
}
