package pattern

import (
	"strconv"
	"strings"
)

// RawRound is one round as delivered by the round store, before validation.
type RawRound struct {
	Side         string `json:"start_point" yaml:"start_point"`
	LineCount    int    `json:"line_count" yaml:"line_count"`
	Parity       string `json:"odd_even" yaml:"odd_even"`
	RoundNumber  int64  `json:"date_round" yaml:"date_round"`
	RegisteredAt string `json:"reg_date" yaml:"reg_date"`
}

// Sequence is the encoded history. Index 0 is the most recent round; the
// parallel Rounds and Registered slices echo each position's origin.
type Sequence struct {
	Symbols    []Symbol
	Rounds     []int64
	Registered []string
}

// Len returns the number of encoded rounds.
func (s Sequence) Len() int { return len(s.Symbols) }

// SequenceOf builds a sequence from bare symbols, without round metadata.
func SequenceOf(symbols ...Symbol) Sequence {
	return Sequence{
		Symbols:    symbols,
		Rounds:     make([]int64, len(symbols)),
		Registered: make([]string, len(symbols)),
	}
}

// Encode maps one raw round to its symbol. Each field is matched against
// its closed enumeration; anything else yields an *EncodingError.
func Encode(raw RawRound) (Symbol, error) {
	return encodeAt(raw, -1)
}

func encodeAt(raw RawRound, index int) (Symbol, error) {
	side, err := parseSide(raw.Side)
	if err != nil {
		return None, &EncodingError{Index: index, Field: "side", Value: raw.Side}
	}
	count, err := parseLineCount(raw.LineCount)
	if err != nil {
		return None, &EncodingError{Index: index, Field: "line_count", Value: strconv.Itoa(raw.LineCount)}
	}
	parity, err := parseParity(raw.Parity)
	if err != nil {
		return None, &EncodingError{Index: index, Field: "parity", Value: raw.Parity}
	}
	return Symbol{Side: side, Count: count, Parity: parity}, nil
}

// EncodeSequence encodes raws in order. The first invalid round aborts the
// whole sequence; the returned *EncodingError carries its index.
func EncodeSequence(raws []RawRound) (Sequence, error) {
	seq := Sequence{
		Symbols:    make([]Symbol, len(raws)),
		Rounds:     make([]int64, len(raws)),
		Registered: make([]string, len(raws)),
	}
	for i, raw := range raws {
		sym, err := encodeAt(raw, i)
		if err != nil {
			return Sequence{}, err
		}
		seq.Symbols[i] = sym
		seq.Rounds[i] = raw.RoundNumber
		seq.Registered[i] = raw.RegisteredAt
	}
	return seq, nil
}

func parseSide(v string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	default:
		return SideUnknown, ErrUnknownSymbol
	}
}

func parseLineCount(n int) (LineCount, error) {
	switch n {
	case 3:
		return ThreeLines, nil
	case 4:
		return FourLines, nil
	default:
		return 0, ErrUnknownSymbol
	}
}

func parseParity(v string) (Parity, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "ODD":
		return Odd, nil
	case "EVEN":
		return Even, nil
	default:
		return ParityUnknown, ErrUnknownSymbol
	}
}
