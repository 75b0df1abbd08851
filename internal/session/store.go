// Package session models the per-conversation state store the ledger reads
// from and writes to. A Store hands out one State per session id; a State is
// a plain key-value container of expense sequences.
package session

import (
	"context"
	"errors"

	"expenseledger/internal/core"

	"github.com/google/uuid"
)

var ErrEmptySessionID = errors.New("empty session id")

type (
	// State is the key-value view of one session.
	State interface {
		// Get returns the sequence stored under key. ok is false when the key
		// has never been set.
		Get(ctx context.Context, key string) (expenses []core.Expense, ok bool, err error)
		// Set replaces the sequence stored under key.
		Set(ctx context.Context, key string, expenses []core.Expense) error
	}

	// Store resolves session ids to their State.
	Store interface {
		// Session returns the State for id, creating it on first access.
		Session(ctx context.Context, id string) (State, error)
		// Delete drops all state held for id.
		Delete(ctx context.Context, id string) error
		// Count returns the number of live sessions.
		Count(ctx context.Context) (int, error)
	}
)

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
