package main

import (
	"github.com/spf13/cobra"

	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
)

// scanFlags are shared by rank and group.
type scanFlags struct {
	sizes      []int
	transforms []string
	direction  string
	topK       int
	file       string
	fileFormat string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&f.sizes, "sizes", nil, "Block sizes to scan (default: prediction.sizes)")
	cmd.Flags().StringSliceVar(&f.transforms, "transforms", nil, "Transforms to scan (default: prediction.transforms)")
	cmd.Flags().StringVar(&f.direction, "direction", "above", "Neighbor side to collect (above, below)")
	cmd.Flags().IntVar(&f.topK, "top", 0, "Entries to keep per ranking (default: prediction.topK)")
	addFileFlags(cmd, &f.file, &f.fileFormat)
}

func (f *scanFlags) request() (predict.RankRequest, error) {
	var req predict.RankRequest
	if len(f.sizes) > 0 {
		sizes, err := predict.ParseSizes(f.sizes)
		if err != nil {
			return req, err
		}
		req.Sizes = sizes
	}
	if len(f.transforms) > 0 {
		ts, err := predict.ParseTransforms(f.transforms)
		if err != nil {
			return req, err
		}
		req.Transforms = ts
	}
	dir, err := pattern.ParseDirection(f.direction)
	if err != nil {
		return req, err
	}
	req.Direction = dir
	req.TopK = f.topK
	return req, nil
}

var rankFlags scanFlags

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank neighbor outcomes across block sizes and transforms",
	Long: `Scan every (size, transform) pair, collect the outcome next to each match
and rank the outcomes per pair and combined.

Examples:
  ladderscope rank
  ladderscope rank --sizes 3,4 --transforms orig,flip_full
  ladderscope rank --direction below --top 5`,
	RunE: runRank,
}

func init() {
	rankFlags.register(rankCmd)
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	req, err := rankFlags.request()
	if err != nil {
		return err
	}

	h, err := getEngine(rankFlags.file, rankFlags.fileFormat)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := newContext()
	defer cancel()

	res, err := h.engine.Rank(ctx, req)
	if err != nil {
		return err
	}
	return printResponse(res)
}
