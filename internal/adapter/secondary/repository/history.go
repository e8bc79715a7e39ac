package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HistoryEntry is one recorded undo state.
type HistoryEntry struct {
	ID               int64
	LongDescription  string
	ShortDescription string
	CreatedAt        time.Time
}

// PushEntry implements domain.HistoryLog.
func (s *Store) PushEntry(ctx context.Context, longDescription, shortDescription string) error {
	err := s.exec(ctx,
		"INSERT INTO history (long_description, short_description, created_at) VALUES (?, ?, ?)",
		longDescription, shortDescription, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("push history entry: %w", err)
	}
	return nil
}

// History returns the newest entries first. A limit <= 0 returns everything.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	ctx = ensureContext(ctx)
	query := "SELECT id, long_description, short_description, created_at FROM history ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e       HistoryEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.LongDescription, &e.ShortDescription, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// State keys.
const (
	StateLastProcessor = "last_processor"
)

// GetState reads an application state value.
func (s *Store) GetState(ctx context.Context, key string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, true, nil
}

// SetState writes an application state value.
func (s *Store) SetState(ctx context.Context, key, value string) error {
	err := s.exec(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}
