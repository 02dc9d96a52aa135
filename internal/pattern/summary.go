package pattern

// SideSummary describes the complete match set as seen from one side.
// Positions are 1-based; all fields are zero when there are no matches.
type SideSummary struct {
	Direction    Direction `json:"direction"`
	TotalMatches int       `json:"totalMatches"`
	MinPosition  int       `json:"minPosition"`
	MaxPosition  int       `json:"maxPosition"`
	// Predicted counts matches whose neighbor on this side exists.
	Predicted int `json:"predicted"`
}

// Summarize computes diagnostics over the full, untruncated match list.
func Summarize(matches []Match, d Direction) SideSummary {
	s := SideSummary{Direction: d, TotalMatches: len(matches)}
	for i, m := range matches {
		pos := m.DisplayPosition()
		if i == 0 || pos < s.MinPosition {
			s.MinPosition = pos
		}
		if pos > s.MaxPosition {
			s.MaxPosition = pos
		}
		if !m.Neighbor(d).IsNone() {
			s.Predicted++
		}
	}
	return s
}
