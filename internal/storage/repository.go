package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expenseledger/internal/core"
	"expenseledger/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is a session.Store persisted in a SQLite file. Each state
// key of a session is one row holding the JSON-encoded expense sequence.
type SQLiteRepository struct {
	db *sql.DB
}

var _ session.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Session implements session.Store. The session row is created on first
// access and its last_seen_at refreshed on every later one.
func (r *SQLiteRepository) Session(ctx context.Context, id string) (session.State, error) {
	if id == "" {
		return nil, session.ErrEmptySessionID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id) VALUES (?)
		ON CONFLICT(id) DO UPDATE SET last_seen_at = CURRENT_TIMESTAMP`, id)
	if err != nil {
		return nil, fmt.Errorf("touch session %s: %w", id, err)
	}
	return &sqliteState{db: r.db, sessionID: id}, nil
}

// Delete implements session.Store. State rows cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.InfoContext(ctx, "Session deleted from SQLite", "session_id", id)
	}
	return nil
}

// Count implements session.Store.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

type sqliteState struct {
	db        *sql.DB
	sessionID string
}

func (s *sqliteState) Get(ctx context.Context, key string) ([]core.Expense, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value_json FROM session_state WHERE session_id = ? AND state_key = ?`,
		s.sessionID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get state %s/%s: %w", s.sessionID, key, err)
	}

	var expenses []core.Expense
	if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
		return nil, false, fmt.Errorf("decode state %s/%s: %w", s.sessionID, key, err)
	}
	return expenses, true, nil
}

func (s *sqliteState) Set(ctx context.Context, key string, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	raw, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("encode state %s/%s: %w", s.sessionID, key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_state (session_id, state_key, value_json, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, state_key) DO UPDATE SET
			value_json = excluded.value_json,
			updated_at = CURRENT_TIMESTAMP`,
		s.sessionID, key, string(raw))
	if err != nil {
		return fmt.Errorf("set state %s/%s: %w", s.sessionID, key, err)
	}

	slog.DebugContext(ctx, "Session state saved to SQLite",
		"session_id", s.sessionID,
		"key", key,
		"records", len(expenses))
	return nil
}
