package store

import (
	"fmt"
	"time"
)

// maxPayload caps the journaled payload size.
const maxPayload = 4096

// RecordDrop journals an event that was dropped by the dispatcher.
func (db *DB) RecordDrop(topic, reason string, payload []byte) error {
	if len(payload) > maxPayload {
		payload = payload[:maxPayload]
	}
	_, err := db.Exec(`
		INSERT INTO drops (identity, topic, reason, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		db.identity, topic, reason, payload, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert drop: %w", err)
	}
	return nil
}

// ListDrops returns the most recent drops, newest first.
func (db *DB) ListDrops(limit int) ([]Drop, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, identity, topic, reason, payload, created_at
		FROM drops
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var drops []Drop
	for rows.Next() {
		var d Drop
		if err := rows.Scan(&d.ID, &d.Identity, &d.Topic, &d.Reason, &d.Payload, &d.CreatedAt); err != nil {
			return nil, err
		}
		drops = append(drops, d)
	}
	return drops, rows.Err()
}

// DropCount returns the total number of journaled drops.
func (db *DB) DropCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM drops`).Scan(&count)
	return count, err
}

// PruneDrops deletes drops older than the given age and returns how many were removed.
func (db *DB) PruneDrops(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := db.Exec(`DELETE FROM drops WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune drops: %w", err)
	}
	return res.RowsAffected()
}
