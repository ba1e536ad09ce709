package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pairsort/internal/sorter"
)

// Record is a stored session: its metadata, items, sorter state and, once
// completed, the final ranking.
type Record struct {
	ID       string
	Seq      int64
	Name     string
	Revision int64
	Items    []sorter.Item
	State    sorter.Session
	Ranking  []string
}

// Summary is one row of ListSessions.
type Summary struct {
	ID              string `json:"id"`
	Seq             int64  `json:"seq"`
	Name            string `json:"name"`
	Items           int    `json:"items"`
	ComparisonCount int    `json:"comparison_count"`
	SortedNo        int    `json:"sorted_no"`
	TotalBattles    int    `json:"total_battles"`
	Completed       bool   `json:"completed"`
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sessionExists(ctx context.Context, q queryRower, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	return nil
}

// LoadSession reads a complete session. Returns an error wrapping
// ErrNotFound if id does not exist.
func (s *Store) LoadSession(ctx context.Context, id string) (*Record, error) {
	rec := &Record{ID: id}
	var (
		started, completed      int
		order, removed, history string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, name, revision, comparison_count, total_battles, sorted_no,
		       started, completed, shuffled_order, removed, history
		FROM sessions
		WHERE id = ?
	`, id).Scan(
		&rec.Seq,
		&rec.Name,
		&rec.Revision,
		&rec.State.ComparisonCount,
		&rec.State.TotalBattles,
		&rec.State.SortedNo,
		&started,
		&completed,
		&order,
		&removed,
		&history,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	rec.State.Started = started != 0
	rec.State.Completed = completed != 0

	if rec.State.Order, err = unmarshalIDs(order); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec.State.Removed, err = unmarshalIDs(removed); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec.State.History, err = unmarshalHistory(history); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if rec.Items, err = s.readItems(ctx, id); err != nil {
		return nil, err
	}
	if rec.State.Choices, err = s.readChoices(ctx, id); err != nil {
		return nil, err
	}
	if rec.Ranking, err = s.readRanking(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// readItems returns the session's items in input order.
func (s *Store) readItems(ctx context.Context, id string) ([]sorter.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, attrs
		FROM items
		WHERE session_id = ?
		ORDER BY position ASC, id COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []sorter.Item{}
	for rows.Next() {
		var it sorter.Item
		var attrs string
		if err := rows.Scan(&it.ID, &it.Label, &attrs); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if it.Attrs, err = unmarshalAttrs(attrs); err != nil {
			return nil, fmt.Errorf("item %q: %w", it.ID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *Store) readChoices(ctx context.Context, id string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pair_key, winner
		FROM choices
		WHERE session_id = ?
		ORDER BY pair_key COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	choices := map[string]string{}
	for rows.Next() {
		var key, winner string
		if err := rows.Scan(&key, &winner); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices[key] = winner
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate choices: %w", err)
	}
	return choices, nil
}

func (s *Store) readRanking(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id
		FROM rankings
		WHERE session_id = ?
		ORDER BY rank ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()

	ranking := []string{}
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		ranking = append(ranking, itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking: %w", err)
	}
	return ranking, nil
}

// ListSessions returns every session ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListSessions(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.seq, s.name, s.comparison_count, s.sorted_no,
		       s.total_battles, s.completed,
		       (SELECT COUNT(*) FROM items i WHERE i.session_id = s.id)
		FROM sessions s
		ORDER BY s.seq ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var completed int
		if err := rows.Scan(
			&sum.ID,
			&sum.Seq,
			&sum.Name,
			&sum.ComparisonCount,
			&sum.SortedNo,
			&sum.TotalBattles,
			&completed,
			&sum.Items,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Completed = completed != 0
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
