package session

import (
	"context"
	"testing"
	"time"

	"expenseledger/internal/core"

	"github.com/google/uuid"
)

func TestMemoryStoreGetAbsentAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Hour)

	st, err := s.Session(ctx, "one")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if v, ok, err := st.Get(ctx, "expenses"); err != nil || ok || v != nil {
		t.Fatalf("expected absent key, got v=%v ok=%v err=%v", v, ok, err)
	}

	want := []core.Expense{{ID: 1, Amount: 2, Description: "x", Category: "food"}}
	if err := st.Set(ctx, "expenses", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Same id resolves to the same state.
	again, _ := s.Session(ctx, "one")
	got, ok, err := again.Get(ctx, "expenses")
	if err != nil || !ok || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected get: v=%v ok=%v err=%v", got, ok, err)
	}

	// Mutating returned slices does not leak into the store.
	got[0].Amount = 99
	want[0].Amount = 98
	fresh, _, _ := again.Get(ctx, "expenses")
	if fresh[0].Amount != 2 {
		t.Fatalf("store aliased caller slice: %v", fresh)
	}
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Hour)
	a, _ := s.Session(ctx, "a")
	b, _ := s.Session(ctx, "b")
	_ = a.Set(ctx, "expenses", []core.Expense{{ID: 1}})

	if _, ok, _ := b.Get(ctx, "expenses"); ok {
		t.Fatal("session b should not see session a state")
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Fatalf("expected 2 sessions, got %d", n)
	}
	_ = s.Delete(ctx, "a")
	a2, _ := s.Session(ctx, "a")
	if _, ok, _ := a2.Get(ctx, "expenses"); ok {
		t.Fatal("deleted session should start empty")
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	if _, err := NewMemoryStore(1, time.Hour).Session(context.Background(), ""); err != ErrEmptySessionID {
		t.Fatalf("expected ErrEmptySessionID, got %v", err)
	}
}

func TestNewIDIsValid(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("generated id %q not a uuid: %v", id, err)
	}
	if NewID() == id {
		t.Fatal("expected distinct ids")
	}
}
