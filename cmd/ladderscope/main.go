package main

import (
	"fmt"
	"os"

	"ladderscope/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err and any suggested fixes to stderr.
func reportError(err error) {
	le := errors.FromCore(err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, fix := range le.SuggestedFixes {
		if fix.Command != "" {
			fmt.Fprintf(os.Stderr, "  try: %s  (%s)\n", fix.Command, fix.Description)
		}
	}
}
