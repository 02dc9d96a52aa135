package main

import (
	"github.com/spf13/cobra"

	"ladderscope/internal/api"
)

var (
	statsFile       string
	statsFileFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the stored round history",
	Long: `Show how many rounds are stored, the newest round and how often each
outcome occurs in the fetch window. With a store, the most recent imports
are listed too.

Examples:
  ladderscope stats
  ladderscope stats --format json`,
	RunE: runStats,
}

func init() {
	addFileFlags(statsCmd, &statsFile, &statsFileFormat)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	h, err := getEngine(statsFile, statsFileFormat)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := newContext()
	defer cancel()

	st, err := h.engine.Stats(ctx)
	if err != nil {
		return err
	}

	var batches api.BatchLister
	if h.db != nil {
		batches = h.db
	}
	resp, err := api.RecentStats(ctx, st, batches)
	if err != nil {
		return err
	}
	return printResponse(resp)
}
