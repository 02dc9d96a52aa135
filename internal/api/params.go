package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
)

// PredictParams are the /predict query parameters
type PredictParams struct {
	Mode     string
	Limit    int
	Notation predict.Notation
}

// ParsePredictParams reads mode, limit and notation. limit=all shows
// every match; an absent limit uses the configured display limit.
func ParsePredictParams(r *http.Request) (*PredictParams, error) {
	query := r.URL.Query()

	params := &PredictParams{Mode: query.Get("mode")}
	if params.Mode != "" {
		if _, err := pattern.ParseMode(params.Mode); err != nil {
			return nil, err
		}
	}

	switch limit := strings.TrimSpace(query.Get("limit")); limit {
	case "":
	case "all":
		params.Limit = -1
	default:
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid limit parameter: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("limit must be non-negative")
		}
		params.Limit = n
	}

	notation, err := predict.ParseNotation(query.Get("notation"))
	if err != nil {
		return nil, err
	}
	params.Notation = notation
	return params, nil
}

// ScanParams are the query parameters shared by /rank and /group
type ScanParams struct {
	Sizes      []int
	Transforms []pattern.Transform
	Direction  pattern.Direction
	TopK       int
}

// ParseScanParams reads sizes, transforms, direction and topK. Empty
// lists fall back to the engine defaults.
func ParseScanParams(r *http.Request) (*ScanParams, error) {
	query := r.URL.Query()
	params := &ScanParams{}

	if sizes := splitList(query.Get("sizes")); len(sizes) > 0 {
		ints := make([]int, len(sizes))
		for i, s := range sizes {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid sizes parameter %q: %w", s, err)
			}
			ints[i] = n
		}
		parsed, err := predict.ParseSizes(ints)
		if err != nil {
			return nil, err
		}
		params.Sizes = parsed
	}

	if names := splitList(query.Get("transforms")); len(names) > 0 {
		ts, err := predict.ParseTransforms(names)
		if err != nil {
			return nil, err
		}
		params.Transforms = ts
	}

	dir, err := pattern.ParseDirection(query.Get("direction"))
	if err != nil {
		return nil, err
	}
	params.Direction = dir

	if v := query.Get("topK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid topK parameter: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("topK must be non-negative")
		}
		params.TopK = n
	}
	return params, nil
}

// RankRequest converts the parameters for the engine
func (p *ScanParams) RankRequest() predict.RankRequest {
	return predict.RankRequest{
		Sizes:      p.Sizes,
		Transforms: p.Transforms,
		Direction:  p.Direction,
		TopK:       p.TopK,
	}
}

// GroupParams adds flavor and preset to the scan parameters
type GroupParams struct {
	ScanParams
	Flavor pattern.Flavor
	Preset string
}

// ParseGroupParams reads the scan parameters plus flavor and preset
func ParseGroupParams(r *http.Request) (*GroupParams, error) {
	scan, err := ParseScanParams(r)
	if err != nil {
		return nil, err
	}
	flavor, err := pattern.ParseFlavor(r.URL.Query().Get("flavor"))
	if err != nil {
		return nil, err
	}
	return &GroupParams{
		ScanParams: *scan,
		Flavor:     flavor,
		Preset:     strings.TrimSpace(r.URL.Query().Get("preset")),
	}, nil
}

// splitList splits a comma-separated parameter, dropping blanks
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
