package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"ladderscope/internal/errors"
	"ladderscope/internal/ingest"
)

var (
	importFile   string
	importFormat string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a round batch into the store",
	Long: `Read a batch of rounds (JSON array, JSON lines or YAML, optionally
gzip-compressed) and upsert it into the round store. Rounds already stored
under the same round number and registration date are replaced.

Use --file - to read from stdin.

Examples:
  ladderscope import --file rounds.json
  ladderscope import --file rounds.jsonl.gz
  curl -s https://feed.example/rounds | ladderscope import --file - --file-format json`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Batch file to import (- for stdin)")
	importCmd.Flags().StringVar(&importFormat, "file-format", "auto", "Batch format (auto, json, jsonl, yaml)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := ingest.ParseFormat(importFormat)
	if err != nil {
		return errors.NewLadderError(errors.InvalidParameter, "bad --file-format", err, nil)
	}
	if format == ingest.FormatAuto && importFile != "-" {
		format = ingest.FormatForPath(importFile)
	}

	var r io.Reader = os.Stdin
	source := "stdin"
	if importFile != "-" {
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
		source = importFile
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLogs()

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	importer := ingest.NewImporter(repo, db, logFactory.IngestLogger())
	res, err := importer.Import(ctx, source, r, format)
	if err != nil {
		return err
	}
	return printResponse(res)
}
