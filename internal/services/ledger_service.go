package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"expenseledger/internal/amqp"
	"expenseledger/internal/core"
	"expenseledger/internal/ledger"
	"expenseledger/internal/session"
)

// EventPublisher receives ledger events after successful mutations.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService resolves session state and runs ledger operations against it,
// publishing an event after every successful mutation.
type LedgerService struct {
	store     session.Store
	publisher EventPublisher
}

// NewLedgerService builds a service over store. publisher may be nil.
func NewLedgerService(store session.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) ledgerFor(ctx context.Context, sessionID string) (*ledger.Ledger, error) {
	st, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return ledger.New(st), nil
}

// Record adds an expense to the session ledger.
func (s *LedgerService) Record(ctx context.Context, sessionID string, amount float64, description, category string) (core.RecordResult, error) {
	l, err := s.ledgerFor(ctx, sessionID)
	if err != nil {
		return core.RecordResult{}, err
	}
	res, err := l.Record(ctx, amount, description, category)
	if err != nil {
		return core.RecordResult{}, err
	}

	s.publish(ctx, amqp.NewExpenseRecordedEvent(sessionID, res.Expense))
	return res, nil
}

func (s *LedgerService) Total(ctx context.Context, sessionID string) (core.TotalResult, error) {
	l, err := s.ledgerFor(ctx, sessionID)
	if err != nil {
		return core.TotalResult{}, err
	}
	return l.Total(ctx)
}

func (s *LedgerService) List(ctx context.Context, sessionID string) (core.ListResult, error) {
	l, err := s.ledgerFor(ctx, sessionID)
	if err != nil {
		return core.ListResult{}, err
	}
	return l.List(ctx)
}

func (s *LedgerService) FilterByCategory(ctx context.Context, sessionID, category string) (core.FilterResult, error) {
	l, err := s.ledgerFor(ctx, sessionID)
	if err != nil {
		return core.FilterResult{}, err
	}
	return l.FilterByCategory(ctx, category)
}

// ClearAll empties the session ledger.
func (s *LedgerService) ClearAll(ctx context.Context, sessionID string) (core.ClearResult, error) {
	l, err := s.ledgerFor(ctx, sessionID)
	if err != nil {
		return core.ClearResult{}, err
	}
	res, err := l.ClearAll(ctx)
	if err != nil {
		return core.ClearResult{}, err
	}

	s.publish(ctx, amqp.NewLedgerClearedEvent(sessionID, res.DeletedCount))
	return res, nil
}

// DeleteSession drops every state key held for the session.
func (s *LedgerService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// pinger is implemented by stores that hold a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the underlying store answers. Stores without a
// connection are checked with Count.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.store.(pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.store.Count(ctx)
	return err
}

// publish never fails the caller: the session state is already written.
func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"session_id", ev.SessionID,
			"error", err)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
