package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinBlockSize is the smallest block BuildBlock accepts.
	MinBlockSize = 3
	// MaxBlockSize is the largest block BuildBlock accepts.
	MaxBlockSize = 6
)

// Block is a contiguous run of symbols, most recent first.
type Block []Symbol

// String joins the elements with ">".
func (b Block) String() string {
	return b.Join(Symbol.String)
}

// Join renders the block with a custom element notation.
func (b Block) Join(render func(Symbol) string) string {
	parts := make([]string, len(b))
	for i, s := range b {
		parts[i] = render(s)
	}
	return strings.Join(parts, ">")
}

// Equal reports element-wise equality.
func (b Block) Equal(other Block) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// BuildBlock takes the size most recent symbols of seq and applies t.
func BuildBlock(seq Sequence, size int, t Transform) (Block, error) {
	if size < MinBlockSize || size > MaxBlockSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrBlockSize, size, MinBlockSize, MaxBlockSize)
	}
	if seq.Len() < size {
		return nil, &InsufficientDataError{What: "rounds for block", Have: seq.Len(), Need: size}
	}
	recent := make(Block, size)
	copy(recent, seq.Symbols[:size])
	return t.Apply(recent)
}

// Mode is a block size paired with a transform, written as e.g.
// "3block_orig" or "5block_flip_odd_even".
type Mode struct {
	Size      int
	Transform Transform
}

func (m Mode) String() string {
	return strconv.Itoa(m.Size) + "block_" + m.Transform.String()
}

// MarshalText renders the mode string.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode parses "<k>block" optionally followed by "_<transform>".
func ParseMode(s string) (Mode, error) {
	head, tail, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "block")
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	size, err := strconv.Atoi(head)
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q: bad size", ErrUnknownMode, s)
	}
	if size < MinBlockSize || size > MaxBlockSize {
		return Mode{}, fmt.Errorf("%w: %q: %w", ErrUnknownMode, s, ErrBlockSize)
	}
	t, err := ParseTransform(strings.TrimPrefix(tail, "_"))
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q: %w", ErrUnknownMode, s, err)
	}
	return Mode{Size: size, Transform: t}, nil
}
