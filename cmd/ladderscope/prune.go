package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ladderscope/internal/errors"
)

var (
	pruneBefore string
	pruneDays   int
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete rounds registered before a date",
	Long: `Delete stored rounds registered strictly before a cutoff date.

The cutoff is --before, or today minus --days, or today minus
store.retentionDays from config.

Examples:
  ladderscope prune --before 2026-01-01
  ladderscope prune --days 90`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Cutoff date (YYYY-MM-DD)")
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Keep this many days of rounds (default: store.retentionDays)")
	rootCmd.AddCommand(pruneCmd)
}

// PruneResult reports a prune run
type PruneResult struct {
	Before  string `json:"before"`
	Removed int64  `json:"removed"`
}

// retentionCutoff returns the registration date before which rounds are
// dropped when keeping days of history.
func retentionCutoff(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(time.DateOnly)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLogs()

	cutoff := pruneBefore
	if cutoff != "" {
		if _, err := time.Parse(time.DateOnly, cutoff); err != nil {
			return errors.NewLadderError(errors.InvalidParameter, "--before must be YYYY-MM-DD", err, nil)
		}
	} else {
		days := pruneDays
		if days == 0 {
			days = cfg.Store.RetentionDays
		}
		if days <= 0 {
			return errors.NewLadderError(errors.InvalidParameter,
				"no cutoff: pass --before or --days, or set store.retentionDays", nil, nil)
		}
		cutoff = retentionCutoff(time.Now(), days)
	}

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	removed, err := repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	return printResponse(PruneResult{Before: cutoff, Removed: removed})
}

func formatPruneHuman(r PruneResult) string {
	return fmt.Sprintf("Removed %d rounds registered before %s\n", r.Removed, r.Before)
}
