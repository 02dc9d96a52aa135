package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ladderscope/internal/metrics"
	"ladderscope/internal/pattern"
	"ladderscope/internal/storage"
)

// RoundWriter persists validated rounds
type RoundWriter interface {
	Upsert(ctx context.Context, rounds []pattern.RawRound) (storage.UpsertResult, error)
}

// BatchRecorder keeps the import history
type BatchRecorder interface {
	RecordBatch(ctx context.Context, b storage.IngestBatch) error
}

// Result describes one completed import
type Result struct {
	BatchID  string `json:"batchId"`
	Source   string `json:"source"`
	Received int    `json:"received"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
}

// Importer validates batches and writes them to the store
type Importer struct {
	rounds  RoundWriter
	batches BatchRecorder
	logger  *slog.Logger
}

// NewImporter creates an importer. batches may be nil to skip the history.
func NewImporter(rounds RoundWriter, batches BatchRecorder, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{rounds: rounds, batches: batches, logger: logger}
}

// Validate checks every round against the symbol encoding. The first bad
// round fails the batch with a *pattern.EncodingError naming its index.
func Validate(rounds []pattern.RawRound) error {
	_, err := pattern.EncodeSequence(rounds)
	return err
}

// Import decodes r, validates the whole batch and upserts it. Nothing is
// written unless every record is valid.
func (im *Importer) Import(ctx context.Context, source string, r io.Reader, format Format) (*Result, error) {
	rounds, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return im.Store(ctx, source, rounds)
}

// Store validates and upserts an already decoded batch.
func (im *Importer) Store(ctx context.Context, source string, rounds []pattern.RawRound) (*Result, error) {
	if len(rounds) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := Validate(rounds); err != nil {
		im.logger.Warn("Rejected round batch", "source", source, "rounds", len(rounds), "error", err.Error())
		return nil, err
	}

	res, err := im.rounds.Upsert(ctx, rounds)
	if err != nil {
		return nil, fmt.Errorf("store batch: %w", err)
	}

	out := &Result{
		BatchID:  uuid.NewString(),
		Source:   source,
		Received: len(rounds),
		Inserted: res.Inserted,
		Updated:  res.Updated,
	}
	metrics.Ingested(metricSource(source), res.Inserted, res.Updated)

	if im.batches != nil {
		err := im.batches.RecordBatch(ctx, storage.IngestBatch{
			ID:         out.BatchID,
			Source:     source,
			Received:   out.Received,
			Inserted:   out.Inserted,
			Updated:    out.Updated,
			IngestedAt: time.Now(),
		})
		if err != nil {
			// The rounds are already committed.
			im.logger.Warn("Failed to record ingest batch", "batch_id", out.BatchID, "error", err.Error())
		}
	}

	im.logger.Info("Imported round batch",
		"batch_id", out.BatchID,
		"source", source,
		"received", out.Received,
		"inserted", out.Inserted,
		"updated", out.Updated,
	)
	return out, nil
}

// metricSource keeps the label set small: "http" or "cli".
func metricSource(source string) string {
	if source == SourceHTTP {
		return SourceHTTP
	}
	return "cli"
}

// SourceHTTP tags batches posted to the API
const SourceHTTP = "http"
