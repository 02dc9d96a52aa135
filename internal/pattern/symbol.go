package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Side is the ladder start point.
type Side uint8

const (
	// SideUnknown is the invalid zero value.
	SideUnknown Side = iota
	// Left start.
	Left
	// Right start.
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

func (s Side) valid() bool { return s == Left || s == Right }

func (s Side) flip() Side {
	if s == Left {
		return Right
	}
	return Left
}

// LineCount is the number of ladder rungs. Only 3 and 4 are observed.
type LineCount uint8

const (
	// ThreeLines is a three-rung ladder.
	ThreeLines LineCount = 3
	// FourLines is a four-rung ladder.
	FourLines LineCount = 4
)

func (c LineCount) String() string { return strconv.Itoa(int(c)) }

func (c LineCount) valid() bool { return c == ThreeLines || c == FourLines }

func (c LineCount) flip() LineCount {
	if c == ThreeLines {
		return FourLines
	}
	return ThreeLines
}

// Parity is the odd/even outcome of a round.
type Parity uint8

const (
	// ParityUnknown is the invalid zero value.
	ParityUnknown Parity = iota
	// Odd outcome.
	Odd
	// Even outcome.
	Even
)

func (p Parity) String() string {
	switch p {
	case Odd:
		return "ODD"
	case Even:
		return "EVEN"
	default:
		return "UNKNOWN"
	}
}

func (p Parity) valid() bool { return p == Odd || p == Even }

func (p Parity) flip() Parity {
	if p == Odd {
		return Even
	}
	return Odd
}

// Symbol is the encoded outcome of one round. The zero value is None.
type Symbol struct {
	Side   Side
	Count  LineCount
	Parity Parity
}

// None marks the absence of a symbol, e.g. a neighbor beyond the sequence bounds.
var None = Symbol{}

// NewSymbol builds a symbol from its three fields.
func NewSymbol(side Side, count LineCount, parity Parity) Symbol {
	return Symbol{Side: side, Count: count, Parity: parity}
}

// IsNone reports whether s is the None marker.
func (s Symbol) IsNone() bool { return s == None }

// Valid reports whether every field of s is inside its enumeration.
func (s Symbol) Valid() bool {
	return s.Side.valid() && s.Count.valid() && s.Parity.valid()
}

// String renders the symbol as SIDE-COUNT-PARITY, e.g. LEFT-3-ODD.
func (s Symbol) String() string {
	if s.IsNone() {
		return "NONE"
	}
	return s.Side.String() + "-" + s.Count.String() + "-" + s.Parity.String()
}

// Short renders the compact form, e.g. L3O.
func (s Symbol) Short() string {
	if s.IsNone() {
		return "-"
	}
	return s.Side.String()[:1] + s.Count.String() + s.Parity.String()[:1]
}

// Hangul renders the notation used by the round feed, e.g. 좌3홀.
func (s Symbol) Hangul() string {
	if s.IsNone() {
		return "없음"
	}
	side := "우"
	if s.Side == Left {
		side = "좌"
	}
	parity := "짝"
	if s.Parity == Odd {
		parity = "홀"
	}
	return side + s.Count.String() + parity
}

// ParseSymbol accepts the long (LEFT-3-ODD), short (L3O) and Hangul (좌3홀)
// notations, case-insensitively.
func ParseSymbol(str string) (Symbol, error) {
	in := strings.TrimSpace(str)
	if sym, ok := parseLong(in); ok {
		return sym, nil
	}
	runes := []rune(strings.ToUpper(in))
	if len(runes) != 3 {
		return None, fmt.Errorf("%w: %q", ErrUnknownSymbol, str)
	}

	var sym Symbol
	switch runes[0] {
	case 'L', '좌':
		sym.Side = Left
	case 'R', '우':
		sym.Side = Right
	}
	switch runes[1] {
	case '3':
		sym.Count = ThreeLines
	case '4':
		sym.Count = FourLines
	}
	switch runes[2] {
	case 'O', '홀':
		sym.Parity = Odd
	case 'E', '짝':
		sym.Parity = Even
	}
	if !sym.Valid() {
		return None, fmt.Errorf("%w: %q", ErrUnknownSymbol, str)
	}
	return sym, nil
}

func parseLong(in string) (Symbol, bool) {
	parts := strings.Split(in, "-")
	if len(parts) != 3 {
		return None, false
	}
	side, err := parseSide(parts[0])
	if err != nil {
		return None, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return None, false
	}
	count, err := parseLineCount(n)
	if err != nil {
		return None, false
	}
	parity, err := parseParity(parts[2])
	if err != nil {
		return None, false
	}
	return Symbol{Side: side, Count: count, Parity: parity}, true
}

// MustParseSymbol is ParseSymbol that panics on error. Intended for fixtures.
func MustParseSymbol(str string) Symbol {
	sym, err := ParseSymbol(str)
	if err != nil {
		panic(err)
	}
	return sym
}

// AllSymbols lists the eight symbols in a fixed order.
func AllSymbols() []Symbol {
	out := make([]Symbol, 0, 8)
	for _, side := range []Side{Left, Right} {
		for _, count := range []LineCount{ThreeLines, FourLines} {
			for _, parity := range []Parity{Odd, Even} {
				out = append(out, Symbol{Side: side, Count: count, Parity: parity})
			}
		}
	}
	return out
}

// MarshalText renders the long notation; None renders as NONE.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses any notation accepted by ParseSymbol, plus NONE.
func (s *Symbol) UnmarshalText(text []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(text)), "NONE") {
		*s = None
		return nil
	}
	sym, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = sym
	return nil
}
