// Package predict runs the block matcher over stored round history and
// shapes the results for the API and CLI.
package predict

import (
	"context"

	"ladderscope/internal/pattern"
)

// RoundSource supplies rounds newest first. limit <= 0 lets the source
// choose its default window.
type RoundSource interface {
	FetchRounds(ctx context.Context, limit int) ([]pattern.RawRound, error)
}

// Counter is implemented by sources that know their total size.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// LatestFinder is implemented by sources that can look up their newest
// round without a full fetch. It returns nil for an empty source.
type LatestFinder interface {
	Latest(ctx context.Context) (*pattern.RawRound, error)
}

// StaticSource serves a fixed, newest-first slice of rounds.
type StaticSource struct {
	rounds []pattern.RawRound
}

// NewStaticSource copies rounds into a source.
func NewStaticSource(rounds []pattern.RawRound) *StaticSource {
	owned := make([]pattern.RawRound, len(rounds))
	copy(owned, rounds)
	return &StaticSource{rounds: owned}
}

// FetchRounds returns up to limit rounds; limit <= 0 returns all of them.
func (s *StaticSource) FetchRounds(ctx context.Context, limit int) ([]pattern.RawRound, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(s.rounds)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]pattern.RawRound, n)
	copy(out, s.rounds[:n])
	return out, nil
}

// Count returns the number of rounds held.
func (s *StaticSource) Count(context.Context) (int, error) {
	return len(s.rounds), nil
}
