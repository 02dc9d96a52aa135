package predict

import (
	"fmt"
	"strings"

	"ladderscope/internal/pattern"
)

// Notation picks how symbols are rendered in responses
type Notation uint8

const (
	// NotationEnglish renders LEFT-3-ODD
	NotationEnglish Notation = iota
	// NotationShort renders L3O
	NotationShort
	// NotationHangul renders 좌3홀
	NotationHangul
)

func (n Notation) String() string {
	switch n {
	case NotationShort:
		return "short"
	case NotationHangul:
		return "ko"
	default:
		return "en"
	}
}

// MarshalText renders the notation name.
func (n Notation) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// ParseNotation accepts en, short and ko.
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english", "long":
		return NotationEnglish, nil
	case "short", "compact":
		return NotationShort, nil
	case "ko", "hangul", "kr":
		return NotationHangul, nil
	}
	return NotationEnglish, fmt.Errorf("unknown notation %q", s)
}

// Render formats one symbol.
func (n Notation) Render(s pattern.Symbol) string {
	switch n {
	case NotationShort:
		return s.Short()
	case NotationHangul:
		return s.Hangul()
	default:
		return s.String()
	}
}

// Block formats a block with ">" separators.
func (n Notation) Block(b pattern.Block) string {
	return b.Join(n.Render)
}
