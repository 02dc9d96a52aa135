package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ladderscope/internal/api"
	"ladderscope/internal/presets"
)

var presetsForce bool

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage exclusion presets",
	Long: `List the exclusion presets used by group predictions, or write a
presets.toml template to customize them.

Examples:
  ladderscope presets list
  ladderscope presets init --force`,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exclusion presets",
	RunE:  runPresetsList,
}

var presetsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a presets.toml template",
	RunE:  runPresetsInit,
}

func init() {
	presetsInitCmd.Flags().BoolVarP(&presetsForce, "force", "f", false, "Overwrite an existing presets file")
	presetsCmd.AddCommand(presetsListCmd, presetsInitCmd)
	rootCmd.AddCommand(presetsCmd)
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLogs()

	reg, err := loadPresets(cfg)
	if err != nil {
		return err
	}
	return printResponse(api.ListPresets(reg))
}

func runPresetsInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLogs()

	path := cfg.PresetsPath()
	if err := presets.WriteTemplate(path, presetsForce); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
