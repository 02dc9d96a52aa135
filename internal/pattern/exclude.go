package pattern

import (
	"fmt"
	"strings"
)

// DefaultThreshold is the share at or above which a group is concentrated.
const DefaultThreshold = 0.5

// Flavor selects how a predicted group is scored.
type Flavor uint8

const (
	// FlavorCount scores members by raw neighbor counts.
	FlavorCount Flavor = iota
	// FlavorPercent scores by counts and reports each member's percentage.
	FlavorPercent
	// FlavorBorda scores by summed topK-rank points across rankings.
	FlavorBorda
)

func (f Flavor) String() string {
	switch f {
	case FlavorPercent:
		return "percent"
	case FlavorBorda:
		return "borda"
	default:
		return "count"
	}
}

// MarshalText renders the flavor name.
func (f Flavor) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// ParseFlavor accepts "count", "percent" and "borda".
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "count":
		return FlavorCount, nil
	case "percent", "pct":
		return FlavorPercent, nil
	case "borda", "rank", "weighted":
		return FlavorBorda, nil
	default:
		return FlavorCount, fmt.Errorf("%w: %q", ErrUnknownFlavor, s)
	}
}

// ExclusionPolicy names a closed outcome universe and the dispersion
// threshold used when reporting on it.
type ExclusionPolicy struct {
	Name      string
	Canonical []Symbol
	Threshold float64
}

// Validate checks that the policy can be evaluated.
func (p ExclusionPolicy) Validate() error {
	if len(p.Canonical) < 2 {
		return fmt.Errorf("%w: %q needs at least 2 canonical symbols", ErrInvalidPolicy, p.Name)
	}
	seen := make(map[Symbol]bool, len(p.Canonical))
	for _, s := range p.Canonical {
		if !s.Valid() {
			return fmt.Errorf("%w: %q has invalid symbol %s", ErrInvalidPolicy, p.Name, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: %q lists %s twice", ErrInvalidPolicy, p.Name, s)
		}
		seen[s] = true
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: %q threshold %v not in (0, 1]", ErrInvalidPolicy, p.Name, p.Threshold)
	}
	return nil
}

func (p ExclusionPolicy) contains(s Symbol) bool {
	for _, c := range p.Canonical {
		if c == s {
			return true
		}
	}
	return false
}

// Ladder4Policy covers the four outcomes a physical ladder can produce.
func Ladder4Policy() ExclusionPolicy {
	return ExclusionPolicy{
		Name: "ladder4",
		Canonical: []Symbol{
			NewSymbol(Left, ThreeLines, Even),
			NewSymbol(Left, FourLines, Odd),
			NewSymbol(Right, ThreeLines, Odd),
			NewSymbol(Right, FourLines, Even),
		},
		Threshold: DefaultThreshold,
	}
}

// ThreeLinePolicy covers the four three-rung outcomes.
func ThreeLinePolicy() ExclusionPolicy {
	return ExclusionPolicy{
		Name: "three-line",
		Canonical: []Symbol{
			NewSymbol(Left, ThreeLines, Odd),
			NewSymbol(Left, ThreeLines, Even),
			NewSymbol(Right, ThreeLines, Odd),
			NewSymbol(Right, ThreeLines, Even),
		},
		Threshold: DefaultThreshold,
	}
}

// StrictPolicy is Ladder4Policy with the stricter 0.6 threshold.
func StrictPolicy() ExclusionPolicy {
	p := Ladder4Policy()
	p.Name = "strict"
	p.Threshold = 0.6
	return p
}

// DefaultPolicy is Ladder4Policy.
func DefaultPolicy() ExclusionPolicy { return Ladder4Policy() }

// BuiltinPolicies lists the built-in presets.
func BuiltinPolicies() []ExclusionPolicy {
	return []ExclusionPolicy{Ladder4Policy(), ThreeLinePolicy(), StrictPolicy()}
}

// Dispersion classifies how evenly the retained group is spread.
type Dispersion uint8

const (
	// Dispersed means no retained member reaches the threshold share.
	Dispersed Dispersion = iota
	// Concentrated means one retained member holds at least the threshold share.
	Concentrated
)

func (d Dispersion) String() string {
	if d == Concentrated {
		return "concentrated"
	}
	return "dispersed"
}

// MarshalText renders the classification name.
func (d Dispersion) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Member is one canonical outcome with its aggregated value. Percent is
// only set once the grouping has been annotated with AnnotatePercent.
type Member struct {
	Symbol  Symbol  `json:"symbol"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent,omitempty"`
	Rank    int     `json:"rank"`
}

// Grouping is the result of the exclusion heuristic.
type Grouping struct {
	Policy     string     `json:"policy"`
	Group      []Member   `json:"group"`
	Excluded   Member     `json:"excluded"`
	Total      int        `json:"total"`
	MaxShare   float64    `json:"maxShare"`
	Dispersion Dispersion `json:"dispersion"`
}

// ExcludeWeakest restricts t to the policy's canonical set, drops the
// member with the minimum value and reports the rest as the predicted
// group. Among tied minima the member earliest in t is dropped. When fewer
// canonical members than the set size have a positive value it returns an
// *InsufficientDataError instead of guessing. The group is ranked 1..n-1
// and the excluded member always takes rank n.
func ExcludeWeakest(t Tally, policy ExclusionPolicy) (*Grouping, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(policy.Canonical))
	seen := make(map[Symbol]bool, len(policy.Canonical))
	total := 0
	for _, r := range t {
		if r.Value <= 0 || seen[r.Symbol] || !policy.contains(r.Symbol) {
			continue
		}
		seen[r.Symbol] = true
		members = append(members, Member{Symbol: r.Symbol, Value: r.Value})
		total += r.Value
	}
	if len(members) < len(policy.Canonical) {
		return nil, &InsufficientDataError{
			What: "distinct canonical outcomes",
			Have: len(members),
			Need: len(policy.Canonical),
		}
	}

	weakest := 0
	for i := 1; i < len(members); i++ {
		if members[i].Value < members[weakest].Value {
			weakest = i
		}
	}

	g := &Grouping{Policy: policy.Name, Total: total, Group: make([]Member, 0, len(members)-1)}
	retained, top := 0, 0
	for i := range members {
		if i == weakest {
			g.Excluded = members[i]
			g.Excluded.Rank = len(members)
			continue
		}
		g.Group = append(g.Group, members[i])
		retained += members[i].Value
		if members[i].Value > top {
			top = members[i].Value
		}
	}

	// The excluded member always ranks last; the group ranks 1..n-1.
	kept := Tally(make([]Ranked, len(g.Group)))
	for i, m := range g.Group {
		kept[i] = Ranked{Symbol: m.Symbol, Value: m.Value}
	}
	for r, entry := range kept.Ranked(0) {
		for i := range g.Group {
			if g.Group[i].Symbol == entry.Symbol {
				g.Group[i].Rank = r + 1
			}
		}
	}

	if retained > 0 {
		g.MaxShare = float64(top) / float64(retained)
	}
	if g.MaxShare >= policy.Threshold {
		g.Dispersion = Concentrated
	}
	return g, nil
}

// AnnotatePercent fills each member's share of Total.
func (g *Grouping) AnnotatePercent() {
	for i := range g.Group {
		g.Group[i].Percent = percent(g.Group[i].Value, g.Total)
	}
	g.Excluded.Percent = percent(g.Excluded.Value, g.Total)
}

func percent(v, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(v) * 100 / float64(total)
}
