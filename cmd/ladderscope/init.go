package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ladderscope/internal/config"
	"ladderscope/internal/errors"
	"ladderscope/internal/presets"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ladderscope data directory",
	Long: `Creates the data directory with a default config.json and a presets.toml
holding the built-in exclusion presets.

Running init again is a no-op unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config and presets file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(dataDirFlag, config.FileName)
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success so scripts can call init unconditionally.
		fmt.Println("ladderscope already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'ladderscope init --force' to reinitialize.")
		return nil
	}

	cfg := config.DefaultConfig()
	// Left empty so the directory can be moved; LoadConfig fills it from --data-dir.
	cfg.DataDir = ""
	if err := cfg.Save(dataDirFlag); err != nil {
		return errors.NewLadderError(errors.InternalError, "Failed to write config file", err, nil)
	}

	presetsPath := filepath.Join(dataDirFlag, cfg.Prediction.PresetsFile)
	if err := presets.WriteTemplate(presetsPath, true); err != nil {
		return errors.NewLadderError(errors.InternalError, "Failed to write presets file", err, nil)
	}

	fmt.Printf("Initialized ladderscope in %s\n", dataDirFlag)
	fmt.Printf("  config:  %s\n", configPath)
	fmt.Printf("  presets: %s\n", presetsPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  ladderscope import --file <rounds.json>")
	fmt.Println("  ladderscope token          # enable POST /rounds")
	fmt.Println("  ladderscope serve")
	return nil
}
