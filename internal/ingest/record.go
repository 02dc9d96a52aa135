package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ladderscope/internal/pattern"
)

// record mirrors the round table columns. Upstream exports carry numbers
// as either JSON numbers or strings.
type record struct {
	StartPoint   string  `json:"start_point" yaml:"start_point"`
	LineCount    flexInt `json:"line_count" yaml:"line_count"`
	OddEven      string  `json:"odd_even" yaml:"odd_even"`
	DateRound    flexInt `json:"date_round" yaml:"date_round"`
	RegisteredAt string  `json:"reg_date" yaml:"reg_date"`
}

func (r record) raw() pattern.RawRound {
	return pattern.RawRound{
		Side:         r.StartPoint,
		LineCount:    int(r.LineCount),
		Parity:       r.OddEven,
		RoundNumber:  int64(r.DateRound),
		RegisteredAt: r.RegisteredAt,
	}
}

type flexInt int64

func (n *flexInt) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*n = flexInt(v)
	return nil
}

func (n *flexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.set(s)
	}
	return n.set(string(b))
}

func (n *flexInt) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	return n.set(node.Value)
}
