package pattern

import (
	"fmt"
	"strings"
)

// Transform is a symmetry relabeling applied field-wise to every block element.
type Transform uint8

const (
	// Identity leaves the block unchanged.
	Identity Transform = iota
	// FlipFull inverts side and parity.
	FlipFull
	// FlipStart inverts line count and parity.
	FlipStart
	// FlipOddEven inverts side and line count.
	FlipOddEven
)

// AllTransforms lists the transforms in canonical order.
func AllTransforms() []Transform {
	return []Transform{Identity, FlipFull, FlipStart, FlipOddEven}
}

// String returns the name used in mode strings.
func (t Transform) String() string {
	switch t {
	case Identity:
		return "orig"
	case FlipFull:
		return "flip_full"
	case FlipStart:
		return "flip_start"
	case FlipOddEven:
		return "flip_odd_even"
	default:
		return fmt.Sprintf("transform(%d)", uint8(t))
	}
}

// MarshalText renders the mode-string name.
func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTransform accepts the mode-string names and their short aliases.
func ParseTransform(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "orig", "identity":
		return Identity, nil
	case "flip_full", "full":
		return FlipFull, nil
	case "flip_start", "start":
		return FlipStart, nil
	case "flip_odd_even", "odd_even":
		return FlipOddEven, nil
	default:
		return Identity, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
}

// Apply returns a new block with t applied to every element. The input
// block is not modified.
func (t Transform) Apply(b Block) (Block, error) {
	if t > FlipOddEven {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransform, uint8(t))
	}
	out := make(Block, len(b))
	for i, s := range b {
		if err := t.check(i, s); err != nil {
			return nil, err
		}
		switch t {
		case Identity:
			out[i] = s
		case FlipFull:
			out[i] = Symbol{Side: s.Side.flip(), Count: s.Count, Parity: s.Parity.flip()}
		case FlipStart:
			out[i] = Symbol{Side: s.Side, Count: s.Count.flip(), Parity: s.Parity.flip()}
		case FlipOddEven:
			out[i] = Symbol{Side: s.Side.flip(), Count: s.Count.flip(), Parity: s.Parity}
		}
	}
	return out, nil
}

func (t Transform) check(i int, s Symbol) error {
	switch {
	case !s.Side.valid():
		return &TransformError{Transform: t, Index: i, Field: "side", Value: s.Side.String()}
	case !s.Count.valid():
		return &TransformError{Transform: t, Index: i, Field: "line_count", Value: s.Count.String()}
	case !s.Parity.valid():
		return &TransformError{Transform: t, Index: i, Field: "parity", Value: s.Parity.String()}
	}
	return nil
}
