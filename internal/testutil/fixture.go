// Package testutil provides round fixtures and golden-file helpers for
// tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ladderscope/internal/pattern"
)

const (
	// FirstRound is the round number Rounds gives the newest round
	FirstRound int64 = 100
	// FixtureDate is the registration date Rounds gives every round
	FixtureDate = "2026-06-01"
)

// Rounds builds newest-first raw rounds from symbols in any notation
// ("L3E R3O ..."), numbered down from FirstRound on FixtureDate.
func Rounds(t testing.TB, symbols string) []pattern.RawRound {
	t.Helper()
	return RoundsAt(t, symbols, FirstRound, FixtureDate)
}

// RoundsAt is Rounds with an explicit newest round number and date.
func RoundsAt(t testing.TB, symbols string, first int64, registeredAt string) []pattern.RawRound {
	t.Helper()

	fields := strings.Fields(symbols)
	out := make([]pattern.RawRound, len(fields))
	for i, f := range fields {
		s, err := pattern.ParseSymbol(f)
		if err != nil {
			t.Fatalf("fixture symbol %d: %v", i, err)
		}
		out[i] = Raw(s, first-int64(i), registeredAt)
	}
	return out
}

// Raw converts a symbol back to the field values the round feed uses.
func Raw(s pattern.Symbol, round int64, registeredAt string) pattern.RawRound {
	side := "LEFT"
	if s.Side == pattern.Right {
		side = "RIGHT"
	}
	parity := "ODD"
	if s.Parity == pattern.Even {
		parity = "EVEN"
	}
	return pattern.RawRound{
		Side:         side,
		LineCount:    int(s.Count),
		Parity:       parity,
		RoundNumber:  round,
		RegisteredAt: registeredAt,
	}
}

// WriteBatch writes rounds to dir/name as a JSON array and returns the path.
func WriteBatch(t testing.TB, dir, name string, rounds []pattern.RawRound) string {
	t.Helper()

	data, err := json.Marshal(rounds)
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	return path
}
