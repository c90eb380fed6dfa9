package db

import (
	"cmp"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

const (
	timeLayout = time.RFC3339Nano
	nextIDKey  = "next_id"
)

// Save replaces the stored snapshot with s in a single transaction.
func (db *DB) Save(s manager.Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM history", "DELETE FROM items", "DELETE FROM meta"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
	}

	insert, err := tx.Prepare(`
		INSERT INTO items (id, kind, name, description, status, start_time, duration, epic_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer func() { _ = insert.Close() }()

	// Epics go first so subtask rows can reference them.
	items := slices.Clone(s.Items)
	slices.SortStableFunc(items, func(a, b model.Item) int {
		return cmp.Compare(kindOrder(a.Kind), kindOrder(b.Kind))
	})
	for _, item := range items {
		if _, err := insert.Exec(
			item.ID, item.Kind, item.Name, item.Description, item.Status,
			startTime(item), int64(item.Duration), epicID(item),
		); err != nil {
			return fmt.Errorf("failed to save item %d: %w", item.ID, err)
		}
	}

	for pos, id := range s.History {
		if _, err := tx.Exec(`INSERT INTO history (position, item_id) VALUES (?, ?)`, pos, id); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, nextIDKey, s.NextID); err != nil {
		return fmt.Errorf("failed to save next id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. An initialized but empty database yields
// an empty snapshot.
func (db *DB) Load() (manager.Snapshot, error) {
	var s manager.Snapshot

	items, err := db.loadItems()
	if err != nil {
		return s, err
	}
	s.Items = items

	history, err := db.loadHistory()
	if err != nil {
		return s, err
	}
	s.History = history

	err = db.QueryRow(`SELECT value FROM meta WHERE key = ?`, nextIDKey).Scan(&s.NextID)
	if err != nil && err != sql.ErrNoRows {
		return s, fmt.Errorf("failed to load next id: %w", err)
	}
	return s, nil
}

func (db *DB) loadHistory() ([]int64, error) {
	rows, err := db.Query(`SELECT item_id FROM history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return ids, nil
}

func (db *DB) loadItems() ([]model.Item, error) {
	rows, err := db.Query(`
		SELECT id, kind, name, description, status, start_time, duration, epic_id
		FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		var (
			item     model.Item
			start    sql.NullString
			duration int64
			epic     sql.NullInt64
		)
		if err := rows.Scan(
			&item.ID, &item.Kind, &item.Name, &item.Description, &item.Status,
			&start, &duration, &epic,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if start.Valid {
			t, err := time.Parse(timeLayout, start.String)
			if err != nil {
				return nil, fmt.Errorf("item %d has a bad start time %q: %w", item.ID, start.String, err)
			}
			item.StartTime = t
		}
		item.Duration = time.Duration(duration)
		if epic.Valid {
			item.EpicID = epic.Int64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return items, nil
}

func startTime(item model.Item) sql.NullString {
	// Epic windows are derived on restore.
	if item.Kind == model.KindEpic || !item.HasTime() {
		return sql.NullString{}
	}
	return sql.NullString{String: item.StartTime.Format(timeLayout), Valid: true}
}

func epicID(item model.Item) sql.NullInt64 {
	if item.Kind != model.KindSubtask {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: item.EpicID, Valid: true}
}

func kindOrder(k model.Kind) int {
	if k == model.KindEpic {
		return 0
	}
	return 1
}
