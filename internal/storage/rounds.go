package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ladderscope/internal/pattern"
)

// DefaultFetchLimit is the recency window used when a caller passes no limit
const DefaultFetchLimit = 3000

// UpsertResult counts what a batch did to the store
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// RoundRepository reads and writes ladder rounds. It satisfies the
// predict.RoundSource interface.
type RoundRepository struct {
	db           *DB
	defaultLimit int
	now          func() time.Time
}

// NewRoundRepository creates a repository. A non-positive defaultLimit
// falls back to DefaultFetchLimit.
func NewRoundRepository(db *DB, defaultLimit int) *RoundRepository {
	if defaultLimit <= 0 {
		defaultLimit = DefaultFetchLimit
	}
	return &RoundRepository{db: db, defaultLimit: defaultLimit, now: time.Now}
}

// Upsert stores rounds in one transaction. A round already present under
// the same (registered_at, round_number) has its outcome replaced.
// Values are stored as given; callers validate them with pattern.Encode.
func (r *RoundRepository) Upsert(ctx context.Context, rounds []pattern.RawRound) (UpsertResult, error) {
	var res UpsertResult
	if len(rounds) == 0 {
		return res, nil
	}

	ingestedAt := r.now().UTC().Format(time.RFC3339)
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO rounds (round_number, registered_at, start_point, line_count, odd_even, ingested_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(registered_at, round_number) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer insert.Close()

		update, err := tx.PrepareContext(ctx, `
			UPDATE rounds SET start_point = ?, line_count = ?, odd_even = ?, ingested_at = ?
			WHERE registered_at = ? AND round_number = ?
		`)
		if err != nil {
			return err
		}
		defer update.Close()

		for _, rr := range rounds {
			side := strings.ToUpper(strings.TrimSpace(rr.Side))
			parity := strings.ToUpper(strings.TrimSpace(rr.Parity))

			result, err := insert.ExecContext(ctx, rr.RoundNumber, rr.RegisteredAt, side, rr.LineCount, parity, ingestedAt)
			if err != nil {
				return fmt.Errorf("insert round %d: %w", rr.RoundNumber, err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				res.Inserted++
				continue
			}

			if _, err := update.ExecContext(ctx, side, rr.LineCount, parity, ingestedAt, rr.RegisteredAt, rr.RoundNumber); err != nil {
				return fmt.Errorf("update round %d: %w", rr.RoundNumber, err)
			}
			res.Updated++
		}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

// FetchRounds returns up to limit rounds, newest first (registration date,
// then round number). limit <= 0 uses the repository default.
func (r *RoundRepository) FetchRounds(ctx context.Context, limit int) ([]pattern.RawRound, error) {
	if limit <= 0 {
		limit = r.defaultLimit
	}

	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT start_point, line_count, odd_even, round_number, registered_at
		FROM rounds
		ORDER BY registered_at DESC, round_number DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	out := make([]pattern.RawRound, 0, min(limit, 256))
	for rows.Next() {
		var rr pattern.RawRound
		if err := rows.Scan(&rr.Side, &rr.LineCount, &rr.Parity, &rr.RoundNumber, &rr.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return out, nil
}

// Count returns the number of stored rounds
func (r *RoundRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM rounds").Scan(&n); err != nil {
		return 0, fmt.Errorf("count rounds: %w", err)
	}
	return n, nil
}

// Latest returns the newest round, or nil when the store is empty
func (r *RoundRepository) Latest(ctx context.Context) (*pattern.RawRound, error) {
	var rr pattern.RawRound
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT start_point, line_count, odd_even, round_number, registered_at
		FROM rounds
		ORDER BY registered_at DESC, round_number DESC
		LIMIT 1
	`).Scan(&rr.Side, &rr.LineCount, &rr.Parity, &rr.RoundNumber, &rr.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest round: %w", err)
	}
	return &rr, nil
}

// DeleteBefore removes rounds registered strictly before registeredAt and
// returns how many were removed.
func (r *RoundRepository) DeleteBefore(ctx context.Context, registeredAt string) (int64, error) {
	var removed int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM rounds WHERE registered_at < ?", registeredAt)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune rounds: %w", err)
	}
	if removed > 0 {
		r.db.logger.Info("Pruned rounds", "before", registeredAt, "removed", removed)
	}
	return removed, nil
}
