package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indicates the input is too small for the requested computation.
	ErrInsufficientData = errors.New("pattern: insufficient data")
	// ErrBlockSize indicates a block size outside [MinBlockSize, MaxBlockSize].
	ErrBlockSize = errors.New("pattern: block size out of range")
	// ErrUnknownTransform indicates an unrecognized transform name or value.
	ErrUnknownTransform = errors.New("pattern: unknown transform")
	// ErrUnknownMode indicates a malformed mode string.
	ErrUnknownMode = errors.New("pattern: unknown mode")
	// ErrUnknownSymbol indicates a string that is not a symbol in any notation.
	ErrUnknownSymbol = errors.New("pattern: unknown symbol")
	// ErrUnknownDirection indicates an unrecognized neighbor direction.
	ErrUnknownDirection = errors.New("pattern: unknown direction")
	// ErrUnknownFlavor indicates an unrecognized summary flavor.
	ErrUnknownFlavor = errors.New("pattern: unknown flavor")
	// ErrInvalidPolicy indicates an exclusion policy that cannot be evaluated.
	ErrInvalidPolicy = errors.New("pattern: invalid exclusion policy")
)

// EncodingError reports a raw round field outside its closed enumeration.
// Index is the round's position in the input sequence, or -1 when a single
// round was encoded.
type EncodingError struct {
	Index int
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pattern: unrecognized %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("pattern: round %d: unrecognized %s %q", e.Index, e.Field, e.Value)
}

// TransformError reports a block element a flip cannot be applied to.
type TransformError struct {
	Transform Transform
	Index     int
	Field     string
	Value     string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("pattern: %s: element %d has %s %s outside the flippable domain",
		e.Transform, e.Index, e.Field, e.Value)
}

// InsufficientDataError carries how much data was available versus required.
// It matches ErrInsufficientData under errors.Is.
type InsufficientDataError struct {
	What string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("pattern: insufficient data: %s: have %d, need %d", e.What, e.Have, e.Need)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
