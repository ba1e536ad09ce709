package store

import (
	"context"
	"fmt"

	"github.com/roach88/pairsort/internal/sorter"
)

// CreateSession inserts a new session with its item list. The session
// starts with empty sorter state. Returns the assigned seq.
func (s *Store) CreateSession(ctx context.Context, id, name string, items []sorter.Item) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("create session: next seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, seq, name)
		VALUES (?, ?, ?)
	`, id, seq, name); err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (session_id, position, id, label, attrs)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("create session: prepare items: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		attrs, err := marshalAttrs(it.Attrs)
		if err != nil {
			return 0, fmt.Errorf("create session: item %q: %w", it.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, it.ID, it.Label, attrs); err != nil {
			return 0, fmt.Errorf("create session: item %q: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create session: commit: %w", err)
	}
	return seq, nil
}

// SaveState persists a sorter snapshot. The decision cache is replaced
// wholesale, and a stored ranking is dropped unless the snapshot is
// completed.
func (s *Store) SaveState(ctx context.Context, id string, state sorter.Session) error {
	order, err := marshalIDs(state.Order)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	removed, err := marshalIDs(state.Removed)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	history, err := marshalHistory(state.History)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save state: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET
			comparison_count = ?,
			total_battles = ?,
			sorted_no = ?,
			started = ?,
			completed = ?,
			shuffled_order = ?,
			removed = ?,
			history = ?,
			revision = revision + 1
		WHERE id = ?
	`,
		state.ComparisonCount,
		state.TotalBattles,
		state.SortedNo,
		boolToInt(state.Started),
		boolToInt(state.Completed),
		order,
		removed,
		history,
		id,
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("save state: %w", err)
	} else if n == 0 {
		return fmt.Errorf("save state %s: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM choices WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("save state: clear choices: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO choices (session_id, pair_key, winner)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id, pair_key) DO UPDATE SET winner = excluded.winner
	`)
	if err != nil {
		return fmt.Errorf("save state: prepare choices: %w", err)
	}
	defer stmt.Close()

	for key, winner := range state.Choices {
		if _, err := stmt.ExecContext(ctx, id, key, winner); err != nil {
			return fmt.Errorf("save state: choice %q: %w", key, err)
		}
	}

	if !state.Completed {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("save state: clear ranking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: commit: %w", err)
	}
	return nil
}

// SaveRanking stores the final order of a completed sort, best first.
func (s *Store) SaveRanking(ctx context.Context, id string, ranking []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save ranking: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := sessionExists(ctx, tx, id); err != nil {
		return fmt.Errorf("save ranking: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("save ranking: clear: %w", err)
	}
	for rank, itemID := range ranking {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rankings (session_id, rank, item_id)
			VALUES (?, ?, ?)
		`, id, rank+1, itemID); err != nil {
			return fmt.Errorf("save ranking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save ranking: commit: %w", err)
	}
	return nil
}

// DeleteSession removes a session and, through cascading foreign keys,
// its items, choices and ranking.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	return nil
}
