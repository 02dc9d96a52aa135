package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ladderscope/internal/config"
	"ladderscope/internal/slogutil"
	"ladderscope/internal/version"
)

var (
	dataDirFlag string
	verboseFlag int
	quietFlag   bool
	formatFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "ladderscope",
	Short: "ladderscope - ladder round pattern matcher",
	Long: `ladderscope stores ladder game rounds and predicts the next outcome by
matching the newest k-round block against the history.

Rounds are kept in a SQLite database under the data directory and served
over an HTTP API (ladderscope serve) or queried directly from the CLI.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("ladderscope version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", config.DefaultDataDir, "Directory holding config.json, presets.toml and the round database")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Silence logging")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json)")
}

// cliLevel returns the level requested on the command line, or nil to
// defer to logging.level in config.
func cliLevel() *slog.Level {
	if verboseFlag == 0 && !quietFlag {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	return &level
}
