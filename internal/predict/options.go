package predict

import (
	"fmt"

	"ladderscope/internal/config"
	"ladderscope/internal/pattern"
)

// Options are the engine defaults applied to requests that leave a field
// unset.
type Options struct {
	FetchLimit   int
	DisplayLimit int
	TopK         int
	DefaultMode  pattern.Mode
	Sizes        []int
	Transforms   []pattern.Transform
}

// DefaultOptions mirrors config.DefaultConfig.
func DefaultOptions() Options {
	return Options{
		FetchLimit:   3000,
		DisplayLimit: 50,
		TopK:         3,
		DefaultMode:  pattern.Mode{Size: 3, Transform: pattern.Identity},
		Sizes:        []int{3, 4, 5, 6},
		Transforms:   pattern.AllTransforms(),
	}
}

// OptionsFromConfig converts the prediction and store sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()
	if cfg == nil {
		return opts, nil
	}

	opts.FetchLimit = cfg.Store.FetchLimit
	opts.DisplayLimit = cfg.Prediction.DisplayLimit
	opts.TopK = cfg.Prediction.TopK

	if cfg.Prediction.DefaultMode != "" {
		mode, err := pattern.ParseMode(cfg.Prediction.DefaultMode)
		if err != nil {
			return opts, fmt.Errorf("prediction.defaultMode: %w", err)
		}
		opts.DefaultMode = mode
	}
	if len(cfg.Prediction.Sizes) > 0 {
		sizes, err := ParseSizes(cfg.Prediction.Sizes)
		if err != nil {
			return opts, fmt.Errorf("prediction.sizes: %w", err)
		}
		opts.Sizes = sizes
	}
	if len(cfg.Prediction.Transforms) > 0 {
		ts, err := ParseTransforms(cfg.Prediction.Transforms)
		if err != nil {
			return opts, fmt.Errorf("prediction.transforms: %w", err)
		}
		opts.Transforms = ts
	}
	return opts, nil
}

// ParseSizes checks block sizes and drops duplicates, keeping order.
func ParseSizes(sizes []int) ([]int, error) {
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, k := range sizes {
		if k < pattern.MinBlockSize || k > pattern.MaxBlockSize {
			return nil, fmt.Errorf("%w: %d not in [%d, %d]", pattern.ErrBlockSize, k, pattern.MinBlockSize, pattern.MaxBlockSize)
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// ParseTransforms parses transform names; "all" expands to every
// transform. Duplicates are dropped, keeping order.
func ParseTransforms(names []string) ([]pattern.Transform, error) {
	seen := make(map[pattern.Transform]bool, len(names))
	var out []pattern.Transform
	add := func(t pattern.Transform) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, name := range names {
		if name == "all" {
			for _, t := range pattern.AllTransforms() {
				add(t)
			}
			continue
		}
		t, err := pattern.ParseTransform(name)
		if err != nil {
			return nil, err
		}
		add(t)
	}
	return out, nil
}
