package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/junah201/coincheatkey-position-bot/internal/event"
)

// Journal is the append-only sqlite audit log: every accepted feed event and
// every outbound notification lands here for post-mortem. It is never read
// back to rebuild state; the ledger is reseeded from the exchange at startup.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database with WAL mode enabled.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS feed_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seq INTEGER NOT NULL,
			type INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed_events table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			delivery_id TEXT PRIMARY KEY,
			ts INTEGER NOT NULL,
			body TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications table: %w", err)
	}

	return &Journal{db: db}, nil
}

// SaveEvent appends one feed event.
func (j *Journal) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		"INSERT INTO feed_events (seq, type, ts, payload) VALUES (?, ?, ?, ?)",
		ev.GetSeq(), ev.GetType(), ev.GetTs(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// SaveNotification appends one outbound notification keyed by delivery id.
func (j *Journal) SaveNotification(ctx context.Context, id, text string, ts int64) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO notifications (delivery_id, ts, body) VALUES (?, ?, ?)",
		id, ts, text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// EventCount reports how many feed events are journaled.
func (j *Journal) EventCount(ctx context.Context) (int64, error) {
	var count int64
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feed_events").Scan(&count)
	return count, err
}

// RecentNotifications returns up to limit notification bodies, newest first.
func (j *Journal) RecentNotifications(ctx context.Context, limit int) ([]string, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT body FROM notifications ORDER BY ts DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, rows.Err()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
