package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// historySequence numbers rows across request_events and progress_snapshots.
// The ent builder has no atomic counter, so this is plain SQL.
type historySequence struct {
	mu sync.Mutex
	db *sql.DB
}

// openHistorySequence creates the counter row if needed. A missing row is
// seeded past the highest sequence already stored, so numbers never repeat.
func openHistorySequence(ctx context.Context, db *sql.DB) (*historySequence, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS history_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_seq INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create history sequence: %w", err)
	}

	var start int64
	if err := db.QueryRowContext(ctx, `SELECT 1 + MAX(
		(SELECT COALESCE(MAX(sequence), 0) FROM request_events),
		(SELECT COALESCE(MAX(sequence), 0) FROM progress_snapshots))`).Scan(&start); err != nil {
		return nil, fmt.Errorf("find last sequence: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO history_sequence (id, next_seq) VALUES (1, ?)`, start); err != nil {
		return nil, fmt.Errorf("seed history sequence: %w", err)
	}
	return &historySequence{db: db}, nil
}

// Next returns the next number and advances the counter.
func (h *historySequence) Next(ctx context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var n int64
	if err := h.db.QueryRowContext(ctx,
		`UPDATE history_sequence SET next_seq = next_seq + 1 WHERE id = 1 RETURNING next_seq - 1`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
