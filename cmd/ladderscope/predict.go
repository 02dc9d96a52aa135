package main

import (
	"github.com/spf13/cobra"

	"ladderscope/internal/ingest"
	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
)

var (
	predictMode       string
	predictLimit      int
	predictNotation   string
	predictFile       string
	predictFileFormat string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the next round from the newest block",
	Long: `Build the block from the newest k rounds, find every earlier place it
occurred and list the outcome that followed each match.

Modes are <k>block with an optional transform suffix: orig, flip_full,
flip_start or flip_odd_even.

Examples:
  ladderscope predict
  ladderscope predict --mode 4block_flip_start --limit 10
  ladderscope predict --notation hangul
  ladderscope predict --file rounds.json --format json`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictMode, "mode", "", "Block mode (default: prediction.defaultMode)")
	predictCmd.Flags().IntVar(&predictLimit, "limit", 0, "Matches to display; -1 shows all (default: prediction.displayLimit)")
	predictCmd.Flags().StringVar(&predictNotation, "notation", "", "Symbol notation (long, short, hangul)")
	addFileFlags(predictCmd, &predictFile, &predictFileFormat)
	rootCmd.AddCommand(predictCmd)
}

// addFileFlags registers --file and --file-format, which read rounds from
// a batch file instead of the store.
func addFileFlags(cmd *cobra.Command, file, format *string) {
	cmd.Flags().StringVar(file, "file", "", "Read rounds from a batch file instead of the store")
	cmd.Flags().StringVar(format, "file-format", "auto", "Batch file format (auto, json, jsonl, yaml)")
}

// readRoundsFile decodes a batch file and orders it newest first.
func readRoundsFile(path, format string) ([]pattern.RawRound, error) {
	f, err := ingest.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	rounds, err := ingest.ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	ingest.NewestFirst(rounds)
	return rounds, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	notation, err := predict.ParseNotation(predictNotation)
	if err != nil {
		return err
	}

	h, err := getEngine(predictFile, predictFileFormat)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := newContext()
	defer cancel()

	p, err := h.engine.Predict(ctx, predict.PredictRequest{Mode: predictMode, Limit: predictLimit})
	if err != nil {
		return err
	}
	return printResponse(p.View(notation))
}
