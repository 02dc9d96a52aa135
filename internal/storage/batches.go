package storage

import (
	"context"
	"fmt"
	"time"
)

// IngestBatch records one import, from the CLI or POST /rounds
type IngestBatch struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Received   int       `json:"received"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	IngestedAt time.Time `json:"ingestedAt"`
}

// RecordBatch persists an ingest batch
func (db *DB) RecordBatch(ctx context.Context, b IngestBatch) error {
	if b.IngestedAt.IsZero() {
		b.IngestedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO ingest_batches (batch_id, source, received, inserted, updated, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.Source, b.Received, b.Inserted, b.Updated, b.IngestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record batch %s: %w", b.ID, err)
	}
	return nil
}

// RecentBatches returns up to limit batches, newest first
func (db *DB) RecentBatches(ctx context.Context, limit int) ([]IngestBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT batch_id, source, received, inserted, updated, ingested_at
		FROM ingest_batches
		ORDER BY ingested_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []IngestBatch
	for rows.Next() {
		var b IngestBatch
		var at string
		if err := rows.Scan(&b.ID, &b.Source, &b.Received, &b.Inserted, &b.Updated, &at); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			b.IngestedAt = t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
