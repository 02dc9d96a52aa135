package predict

import "ladderscope/internal/pattern"

// NoneLabel fills the sentinel entry returned when a block never occurred
const NoneLabel = "NONE"

// Entry is one displayed match: the outcome that followed it, the block
// and its 1-based position. The sentinel entry has a nil Position.
type Entry struct {
	Value    string `json:"value"`
	Block    string `json:"block"`
	Position *int   `json:"position"`
}

// PredictionView is the rendered form of a Prediction
type PredictionView struct {
	Mode         string              `json:"mode"`
	Notation     Notation            `json:"notation"`
	NextRound    int64               `json:"nextRound"`
	Rounds       int                 `json:"rounds"`
	Block        string              `json:"block"`
	TotalMatches int                 `json:"totalMatches"`
	Predictions  []Entry             `json:"predictions"`
	Summary      map[string]SideView `json:"summary"`
}

// SideView is a side summary ready for display
type SideView struct {
	TotalMatches int `json:"totalMatches"`
	MinPosition  int `json:"minPosition"`
	MaxPosition  int `json:"maxPosition"`
	Predicted    int `json:"predicted"`
}

func sideView(s pattern.SideSummary) SideView {
	return SideView{
		TotalMatches: s.TotalMatches,
		MinPosition:  s.MinPosition,
		MaxPosition:  s.MaxPosition,
		Predicted:    s.Predicted,
	}
}

// View renders p in notation n. Each entry's value is the outcome that
// followed the match (its Above neighbor). With no matches the single
// sentinel entry {NONE, NONE, null} is returned.
func (p *Prediction) View(n Notation) PredictionView {
	v := PredictionView{
		Mode:         p.Mode.String(),
		Notation:     n,
		NextRound:    p.NextRound,
		Rounds:       p.Rounds,
		Block:        n.Block(p.Block),
		TotalMatches: len(p.Matches),
		Summary: map[string]SideView{
			pattern.Above.String(): sideView(p.Above),
			pattern.Below.String(): sideView(p.Below),
		},
	}

	shown := p.Displayed()
	if len(shown) == 0 {
		v.Predictions = []Entry{{Value: NoneLabel, Block: NoneLabel}}
		return v
	}

	v.Predictions = make([]Entry, len(shown))
	for i, m := range shown {
		pos := m.DisplayPosition()
		v.Predictions[i] = Entry{
			Value:    n.Render(m.Above),
			Block:    n.Block(m.Block),
			Position: &pos,
		}
	}
	return v
}
