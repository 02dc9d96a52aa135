package main

import (
	"github.com/spf13/cobra"

	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
)

var (
	groupFlags  scanFlags
	groupFlavor string
	groupPreset string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Predict a group of outcomes by excluding the weakest",
	Long: `Score the preset's canonical outcomes across every scanned pair, drop the
weakest and report the rest as the predicted group.

Flavors:
  count    - sum the neighbor counts
  percent  - sum the counts and report each member's share
  borda    - award top-k points per pair (k for first place, 1 for last)

Examples:
  ladderscope group
  ladderscope group --flavor borda --top 4
  ladderscope group --preset three-line`,
	RunE: runGroup,
}

func init() {
	groupFlags.register(groupCmd)
	groupCmd.Flags().StringVar(&groupFlavor, "flavor", "count", "Scoring flavor (count, percent, borda)")
	groupCmd.Flags().StringVar(&groupPreset, "preset", "", "Exclusion preset (default: prediction.defaultPreset)")
	rootCmd.AddCommand(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
	req, err := groupFlags.request()
	if err != nil {
		return err
	}
	flavor, err := pattern.ParseFlavor(groupFlavor)
	if err != nil {
		return err
	}

	h, err := getEngine(groupFlags.file, groupFlags.fileFormat)
	if err != nil {
		return err
	}
	defer h.Close()

	policy, err := h.presets.Get(groupPreset)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	res, err := h.engine.Group(ctx, predict.GroupRequest{RankRequest: req, Flavor: flavor, Policy: policy})
	if err != nil {
		return err
	}
	return printResponse(res)
}
