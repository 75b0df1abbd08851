package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expenseledger/internal/core"
)

// EventType names a ledger mutation.
type EventType string

const (
	EventExpenseRecorded EventType = "expense.recorded"
	EventLedgerCleared   EventType = "ledger.cleared"
)

// LedgerEvent is published after every successful ledger mutation.
// Expense is set for expense.recorded, DeletedCount for ledger.cleared.
type LedgerEvent struct {
	Type         EventType     `json:"type"`
	SessionID    string        `json:"session_id"`
	Expense      *core.Expense `json:"expense,omitempty"`
	DeletedCount int           `json:"deleted_count,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NewExpenseRecordedEvent creates an event for a newly recorded expense
func NewExpenseRecordedEvent(sessionID string, e core.Expense) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventExpenseRecorded,
		SessionID: sessionID,
		Expense:   &e,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerClearedEvent creates an event for a cleared ledger
func NewLedgerClearedEvent(sessionID string, deleted int) *LedgerEvent {
	return &LedgerEvent{
		Type:         EventLedgerCleared,
		SessionID:    sessionID,
		DeletedCount: deleted,
		Timestamp:    time.Now().UTC(),
	}
}

// Validate checks that the event carries what its type requires
func (m *LedgerEvent) Validate() error {
	if m.SessionID == "" {
		return fmt.Errorf("event without session id")
	}
	switch m.Type {
	case EventExpenseRecorded:
		if m.Expense == nil {
			return fmt.Errorf("%s event without expense", m.Type)
		}
	case EventLedgerCleared:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates an event
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
