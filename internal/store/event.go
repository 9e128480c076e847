package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// sequenceCounter hands out the global monotonic sequence shared by
// snapshots and events, so a user's history can be replayed in order
// across both tables.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo with raw SQL.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendActivity(ctx context.Context, data ActivityEventData) error {
	return r.append(ctx, data.UserID, KindActivity, data.RecordedAt, data)
}

func (r *eventRepo) AppendTick(ctx context.Context, data TickEventData) error {
	return r.append(ctx, data.UserID, KindTick, data.AppliedAt, data)
}

func (r *eventRepo) AppendTransition(ctx context.Context, data TransitionEventData) error {
	return r.append(ctx, data.UserID, KindTransition, data.At, data)
}

func (r *eventRepo) AppendOverride(ctx context.Context, data OverrideEventData) error {
	return r.append(ctx, data.UserID, KindOverride, data.At, data)
}

func (r *eventRepo) append(ctx context.Context, userID, kind string, at time.Time, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO progression_events (sequence, user_id, kind, timestamp, payload) VALUES (?, ?, ?, ?, ?)`,
		seqNum, userID, kind, formatTime(at), string(raw),
	)
	if err != nil {
		return fmt.Errorf("save %s event: %w", kind, err)
	}
	return nil
}

func (r *eventRepo) Query(ctx context.Context, userID string, opts QueryOpts) ([]Event, error) {
	var (
		where = []string{"user_id = ?", "sequence > ?"}
		args  = []any{userID, opts.After}
	)
	if opts.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, opts.Kind)
	}

	q := `SELECT sequence, user_id, kind, timestamp, payload FROM progression_events WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY sequence ASC`
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			ts      string
			payload string
		)
		if err := rows.Scan(&e.Sequence, &e.UserID, &e.Kind, &ts, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("event %d timestamp: %w", e.Sequence, err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
