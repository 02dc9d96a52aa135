package main

import (
	"github.com/spf13/cobra"

	"ladderscope/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(version.Current())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
