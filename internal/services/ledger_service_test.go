package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"expenseledger/internal/amqp"
	"expenseledger/internal/session"
)

type fakePublisher struct {
	events []*amqp.LedgerEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { f.closed = true; return nil }

func newService(pub EventPublisher) *LedgerService {
	return NewLedgerService(session.NewMemoryStore(10, time.Hour), pub)
}

func TestLedgerServicePublishesMutations(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	if _, err := svc.Record(ctx, "s1", 150.5, "Groceries at Walmart", "Food"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.Total(ctx, "s1"); err != nil {
		t.Fatalf("total: %v", err)
	}
	if _, err := svc.List(ctx, "s1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.FilterByCategory(ctx, "s1", "food"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	res, err := svc.ClearAll(ctx, "s1")
	if err != nil || res.DeletedCount != 1 {
		t.Fatalf("clear: %+v err=%v", res, err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if ev := pub.events[0]; ev.Type != amqp.EventExpenseRecorded || ev.SessionID != "s1" || ev.Expense.ID != 1 || ev.Expense.Category != "food" {
		t.Fatalf("unexpected recorded event: %+v", ev)
	}
	if ev := pub.events[1]; ev.Type != amqp.EventLedgerCleared || ev.DeletedCount != 1 {
		t.Fatalf("unexpected cleared event: %+v", ev)
	}
}

func TestLedgerServicePublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	svc := newService(&fakePublisher{err: errors.New("broker down")})

	res, err := svc.Record(ctx, "s1", 1, "x", "y")
	if err != nil || res.Expense.ID != 1 {
		t.Fatalf("expected record to succeed, got %+v err=%v", res, err)
	}
	lst, _ := svc.List(ctx, "s1")
	if lst.Count != 1 {
		t.Fatalf("expected state kept, got count %d", lst.Count)
	}
}

func TestLedgerServiceSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	_, _ = svc.Record(ctx, "a", 1, "x", "y")
	_, _ = svc.Record(ctx, "a", 2, "x", "y")
	r, _ := svc.Record(ctx, "b", 3, "x", "y")
	if r.Expense.ID != 1 {
		t.Fatalf("expected session b to start at id 1, got %d", r.Expense.ID)
	}

	if err := svc.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tot, _ := svc.Total(ctx, "a")
	if tot.Count != 0 {
		t.Fatalf("expected deleted session empty, got %+v", tot)
	}
}

func TestLedgerServiceEmptySessionID(t *testing.T) {
	if _, err := newService(nil).Total(context.Background(), ""); !errors.Is(err, session.ErrEmptySessionID) {
		t.Fatalf("expected ErrEmptySessionID, got %v", err)
	}
}

func TestLedgerServiceClose(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		if err := newService(nil).Close(); err != nil {
			t.Fatalf("Close should not return error with nil publisher: %v", err)
		}
	})
	t.Run("closes publisher", func(t *testing.T) {
		pub := &fakePublisher{}
		if err := newService(pub).Close(); err != nil || !pub.closed {
			t.Fatalf("expected publisher closed, err=%v", err)
		}
	})
}

type pingingStore struct {
	session.Store
	pinged  bool
	pingErr error
}

func (p *pingingStore) Ping(context.Context) error {
	p.pinged = true
	return p.pingErr
}

func (p *pingingStore) Count(context.Context) (int, error) {
	return 0, errors.New("count must not be used when the store can ping")
}

func TestReadyPrefersPing(t *testing.T) {
	ctx := context.Background()

	store := &pingingStore{Store: session.NewMemoryStore(1, time.Hour)}
	if err := NewLedgerService(store, nil).Ready(ctx); err != nil || !store.pinged {
		t.Fatalf("expected ping to be used, pinged=%v err=%v", store.pinged, err)
	}

	down := errors.New("database is locked")
	store = &pingingStore{Store: session.NewMemoryStore(1, time.Hour), pingErr: down}
	if err := NewLedgerService(store, nil).Ready(ctx); !errors.Is(err, down) {
		t.Fatalf("expected ping error, got %v", err)
	}

	if err := newService(nil).Ready(ctx); err != nil {
		t.Fatalf("memory store ready: %v", err)
	}
}
