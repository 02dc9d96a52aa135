package pattern

import (
	"fmt"
	"strings"
)

// Direction selects which neighbor of a match a caller consumes.
type Direction uint8

const (
	// Above is the symbol right before the matched span in the sequence,
	// i.e. the round that followed the pattern in time.
	Above Direction = iota
	// Below is the symbol right after the matched span in the sequence,
	// i.e. the round that preceded the pattern in time.
	Below
)

func (d Direction) String() string {
	if d == Below {
		return "below"
	}
	return "above"
}

// MarshalText renders the direction name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// ParseDirection accepts "above" and "below".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "above", "top":
		return Above, nil
	case "below", "bottom":
		return Below, nil
	default:
		return Above, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Match is one historical occurrence of a block.
type Match struct {
	// Position is the 0-based start index in the sequence.
	Position int
	Block    Block
	Above    Symbol
	Below    Symbol
}

// DisplayPosition is the 1-based position.
func (m Match) DisplayPosition() int { return m.Position + 1 }

// Neighbor returns the neighbor on side d, possibly None.
func (m Match) Neighbor(d Direction) Symbol {
	if d == Below {
		return m.Below
	}
	return m.Above
}

// MatchBlock finds every start index i in [0, len(seq)-len(block)] where
// seq[i:i+k] equals block. Results are ordered by recency (smallest
// position first) and carry both neighbors. An empty block or a sequence
// shorter than the block yields an empty slice.
func MatchBlock(block Block, seq Sequence) []Match {
	k, n := len(block), seq.Len()
	matches := make([]Match, 0)
	if k == 0 || n < k {
		return matches
	}

	owned := make(Block, k)
	copy(owned, block)

	// last start index is inclusive
	for i := 0; i <= n-k; i++ {
		if !equalAt(seq.Symbols, i, owned) {
			continue
		}
		above, below := Neighbors(seq, i, k)
		matches = append(matches, Match{Position: i, Block: owned, Above: above, Below: below})
	}
	return matches
}

func equalAt(symbols []Symbol, start int, block Block) bool {
	for j, s := range block {
		if symbols[start+j] != s {
			return false
		}
	}
	return true
}

// Neighbors returns the symbols just outside a span of length k starting
// at position. Out-of-range sides are None.
func Neighbors(seq Sequence, position, k int) (above, below Symbol) {
	n := seq.Len()
	if i := position - 1; i >= 0 && i < n {
		above = seq.Symbols[i]
	}
	if i := position + k; i >= 0 && i < n {
		below = seq.Symbols[i]
	}
	return above, below
}

// NeighborValues extracts the d-side neighbor of each match, keeping None
// entries so the result stays aligned with matches.
func NeighborValues(matches []Match, d Direction) []Symbol {
	out := make([]Symbol, len(matches))
	for i, m := range matches {
		out[i] = m.Neighbor(d)
	}
	return out
}
