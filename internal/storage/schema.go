package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const currentSchemaVersion = 1

// migrations[v] upgrades a database at version v to v+1.
var migrations = map[int]func(*sql.Tx) error{
	0: createInitialSchema,
}

// migrate applies pending migrations in order, one transaction each.
func (db *DB) migrate(ctx context.Context) error {
	version, err := db.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	for v := version; v < currentSchemaVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return fmt.Errorf("no migration from schema version %d", v)
		}
		if err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := step(tx); err != nil {
				return err
			}
			return setSchemaVersion(tx, v+1)
		}); err != nil {
			return fmt.Errorf("failed to migrate schema to version %d: %w", v+1, err)
		}
		db.logger.Info("Database schema migrated", "from_version", v, "to_version", v+1)
	}
	return nil
}

// schemaVersion returns 0 for a fresh database.
func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var name string
	err := db.conn.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createInitialSchema(tx *sql.Tx) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"schema_version", `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`},
		{"rounds", `
			CREATE TABLE IF NOT EXISTS rounds (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				round_number INTEGER NOT NULL,
				registered_at TEXT NOT NULL,
				start_point TEXT NOT NULL,
				line_count INTEGER NOT NULL,
				odd_even TEXT NOT NULL,
				ingested_at TEXT NOT NULL,
				UNIQUE(registered_at, round_number)
			)`},
		{"idx_rounds_recency", `
			CREATE INDEX IF NOT EXISTS idx_rounds_recency
			ON rounds(registered_at DESC, round_number DESC)`},
		{"ingest_batches", `
			CREATE TABLE IF NOT EXISTS ingest_batches (
				batch_id TEXT PRIMARY KEY,
				source TEXT NOT NULL,
				received INTEGER NOT NULL,
				inserted INTEGER NOT NULL,
				updated INTEGER NOT NULL,
				ingested_at TEXT NOT NULL
			)`},
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}
