package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// snapshotRepo implements SnapshotRepo with raw SQL.
type snapshotRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	if snap.Sequence == 0 {
		if snap.Sequence, err = r.seq.Next(ctx); err != nil {
			return err
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO progression_snapshots (user_id, sequence, timestamp, data) VALUES (?, ?, ?, ?)`,
		snap.UserID, snap.Sequence, formatTime(snap.Timestamp), string(raw),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID string) (*Snapshot, error) {
	var (
		snap Snapshot
		ts   string
		raw  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, sequence, timestamp, data FROM progression_snapshots
		 WHERE user_id = ? ORDER BY sequence DESC LIMIT 1`,
		userID,
	).Scan(&snap.ID, &snap.UserID, &snap.Sequence, &ts, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	if snap.Timestamp, err = parseTime(ts); err != nil {
		return nil, fmt.Errorf("snapshot timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, userID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM progression_snapshots
		 WHERE user_id = ? AND id NOT IN (
			SELECT id FROM progression_snapshots
			WHERE user_id = ? ORDER BY sequence DESC LIMIT ?
		 )`,
		userID, userID, keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Users(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM progression_snapshots ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
