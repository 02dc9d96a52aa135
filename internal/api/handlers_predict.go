package api

import (
	"context"
	"net/http"

	"ladderscope/internal/errors"
	"ladderscope/internal/predict"
	"ladderscope/internal/presets"
	"ladderscope/internal/storage"
)

// handlePredict serves GET /predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	params, err := ParsePredictParams(r)
	if err != nil {
		BadRequest(w, "invalid parameter", err)
		return
	}

	p, err := s.engine.Predict(r.Context(), predict.PredictRequest{Mode: params.Mode, Limit: params.Limit})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, p.View(params.Notation), http.StatusOK)
}

// handleRank serves GET /rank
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	params, err := ParseScanParams(r)
	if err != nil {
		BadRequest(w, "invalid parameter", err)
		return
	}

	res, err := s.engine.Rank(r.Context(), params.RankRequest())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, res, http.StatusOK)
}

// handleGroup serves GET /group. Too few canonical outcomes is reported
// in the body as "insufficient" with status 200.
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	params, err := ParseGroupParams(r)
	if err != nil {
		BadRequest(w, "invalid parameter", err)
		return
	}
	policy, err := s.presets.Get(params.Preset)
	if err != nil {
		BadRequest(w, "invalid parameter", err)
		return
	}

	res, err := s.engine.Group(r.Context(), predict.GroupRequest{
		RankRequest: params.RankRequest(),
		Flavor:      params.Flavor,
		Policy:      policy,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, res, http.StatusOK)
}

// handleStats serves GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	st, err := s.engine.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := RecentStats(r.Context(), st, s.batches)
	if err != nil {
		WriteLadderError(w, errors.NewLadderError(errors.StoreUnavailable, "cannot read import history", err,
			errors.GetSuggestedFixes(errors.StoreUnavailable)))
		return
	}

	WriteJSON(w, resp, http.StatusOK)
}

// recentBatchLimit is how many imports /stats and the stats command show.
const recentBatchLimit = 5

// StatsResponse is the /stats body: the history summary plus the most
// recent imports when the server has a store.
type StatsResponse struct {
	*predict.Stats
	RecentBatches []storage.IngestBatch `json:"recentBatches,omitempty"`
}

// RecentStats attaches the newest ingest batches to st. A nil lister
// leaves the history out.
func RecentStats(ctx context.Context, st *predict.Stats, batches BatchLister) (StatsResponse, error) {
	resp := StatsResponse{Stats: st}
	if batches == nil {
		return resp, nil
	}
	var err error
	resp.RecentBatches, err = batches.RecentBatches(ctx, recentBatchLimit)
	return resp, err
}

// PresetInfo is one exclusion preset as listed by /presets
type PresetInfo struct {
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	Threshold float64  `json:"threshold"`
	Default   bool     `json:"default"`
}

// PresetsResponse represents the /presets response
type PresetsResponse struct {
	Source  string       `json:"source,omitempty"`
	Default string       `json:"default"`
	Presets []PresetInfo `json:"presets"`
}

// handlePresets serves GET /presets
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	WriteJSON(w, ListPresets(s.presets), http.StatusOK)
}

// ListPresets describes every preset in reg, built-ins first
func ListPresets(reg *presets.Registry) PresetsResponse {
	resp := PresetsResponse{Source: reg.Source(), Default: reg.Default()}
	for _, p := range reg.List() {
		members := make([]string, len(p.Canonical))
		for i, sym := range p.Canonical {
			members[i] = sym.String()
		}
		resp.Presets = append(resp.Presets, PresetInfo{
			Name:      p.Name,
			Members:   members,
			Threshold: p.Threshold,
			Default:   p.Name == reg.Default(),
		})
	}
	return resp
}
