package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ladderscope/internal/pattern"
)

func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	tmpDir := t.TempDir()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(tmpDir, logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db, tmpDir
}

func round(n int64, reg, side string, lines int, parity string) pattern.RawRound {
	return pattern.RawRound{Side: side, LineCount: lines, Parity: parity, RoundNumber: n, RegisteredAt: reg}
}

func TestDatabaseInitialization(t *testing.T) {
	db, tmpDir := setupTestDB(t)

	dbPath := filepath.Join(tmpDir, FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("Database file was not created at %s", dbPath)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	version, err := db.schemaVersion(context.Background())
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", currentSchemaVersion, version)
	}
}

func TestReopenKeepsData(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	db, err := Open(tmpDir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	repo := NewRoundRepository(db, 0)
	if _, err := repo.Upsert(ctx, []pattern.RawRound{round(1, "2026-01-01", "LEFT", 3, "ODD")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	db.Close()

	db2, err := Open(tmpDir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	n, err := NewRoundRepository(db2, 0).Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count after reopen = %d, %v; want 1", n, err)
	}
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(Memory, nil)
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	defer db.Close()

	if db.Path() != Memory {
		t.Errorf("Path() = %q", db.Path())
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
	if _, err := NewRoundRepository(db, 0).Count(context.Background()); err != nil {
		t.Errorf("schema missing in memory db: %v", err)
	}
}

func TestRoundRepository_UpsertAndFetch(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 0)
	ctx := context.Background()

	res, err := repo.Upsert(ctx, []pattern.RawRound{
		round(1, "2026-01-01", "LEFT", 3, "ODD"),
		round(2, "2026-01-01", "right", 4, "even"),
		round(1, "2026-01-02", "LEFT", 4, "EVEN"),
		round(3, "2026-01-01", "RIGHT", 3, "EVEN"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if res.Inserted != 4 || res.Updated != 0 {
		t.Errorf("Upsert result = %+v, want 4 inserted", res)
	}

	got, err := repo.FetchRounds(ctx, 0)
	if err != nil {
		t.Fatalf("FetchRounds: %v", err)
	}

	want := []struct {
		reg string
		n   int64
	}{
		{"2026-01-02", 1},
		{"2026-01-01", 3},
		{"2026-01-01", 2},
		{"2026-01-01", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("FetchRounds returned %d rounds, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].RegisteredAt != w.reg || got[i].RoundNumber != w.n {
			t.Errorf("rounds[%d] = %s/#%d, want %s/#%d", i, got[i].RegisteredAt, got[i].RoundNumber, w.reg, w.n)
		}
	}
	if got[2].Side != "RIGHT" || got[2].Parity != "EVEN" {
		t.Errorf("stored values should be normalized, got %+v", got[2])
	}

	limited, err := repo.FetchRounds(ctx, 2)
	if err != nil {
		t.Fatalf("FetchRounds(2): %v", err)
	}
	if len(limited) != 2 || limited[0].RoundNumber != 1 || limited[1].RoundNumber != 3 {
		t.Errorf("FetchRounds(2) = %+v", limited)
	}

	seq, err := pattern.EncodeSequence(got)
	if err != nil {
		t.Fatalf("stored rounds should encode: %v", err)
	}
	if seq.Len() != 4 {
		t.Errorf("encoded %d symbols, want 4", seq.Len())
	}
}

func TestRoundRepository_UpsertReplaces(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 0)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, []pattern.RawRound{round(7, "2026-02-01", "LEFT", 3, "ODD")}); err != nil {
		t.Fatal(err)
	}
	res, err := repo.Upsert(ctx, []pattern.RawRound{
		round(7, "2026-02-01", "RIGHT", 4, "EVEN"),
		round(8, "2026-02-01", "LEFT", 4, "ODD"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if res.Inserted != 1 || res.Updated != 1 {
		t.Errorf("Upsert result = %+v, want 1 inserted 1 updated", res)
	}

	n, _ := repo.Count(ctx)
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	rounds, _ := repo.FetchRounds(ctx, 10)
	for _, rr := range rounds {
		if rr.RoundNumber == 7 && (rr.Side != "RIGHT" || rr.LineCount != 4) {
			t.Errorf("round 7 not replaced: %+v", rr)
		}
	}
}

func TestRoundRepository_UpsertEmpty(t *testing.T) {
	db, _ := setupTestDB(t)
	res, err := NewRoundRepository(db, 0).Upsert(context.Background(), nil)
	if err != nil || res != (UpsertResult{}) {
		t.Errorf("Upsert(nil) = %+v, %v", res, err)
	}
}

func TestRoundRepository_DefaultLimit(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 3)
	ctx := context.Background()

	var batch []pattern.RawRound
	for i := int64(1); i <= 5; i++ {
		batch = append(batch, round(i, "2026-03-01", "LEFT", 3, "ODD"))
	}
	if _, err := repo.Upsert(ctx, batch); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FetchRounds(ctx, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].RoundNumber != 5 {
		t.Errorf("FetchRounds(-1) = %d rounds starting at #%d, want 3 from #5", len(got), got[0].RoundNumber)
	}
}

func TestRoundRepository_Latest(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 0)
	ctx := context.Background()

	latest, err := repo.Latest(ctx)
	if err != nil || latest != nil {
		t.Fatalf("Latest on empty store = %+v, %v", latest, err)
	}

	_, _ = repo.Upsert(ctx, []pattern.RawRound{
		round(288, "2026-04-01", "LEFT", 3, "ODD"),
		round(1, "2026-04-02", "RIGHT", 3, "EVEN"),
	})
	latest, err = repo.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.RoundNumber != 1 || latest.RegisteredAt != "2026-04-02" {
		t.Errorf("Latest = %+v, want round 1 of 2026-04-02", latest)
	}
}

func TestRoundRepository_DeleteBefore(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 0)
	ctx := context.Background()

	_, _ = repo.Upsert(ctx, []pattern.RawRound{
		round(1, "2026-01-01", "LEFT", 3, "ODD"),
		round(2, "2026-01-01", "LEFT", 3, "ODD"),
		round(1, "2026-01-02", "LEFT", 3, "ODD"),
	})

	removed, err := repo.DeleteBefore(ctx, "2026-01-02")
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestRoundRepository_ContextCancelled(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewRoundRepository(db, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.FetchRounds(ctx, 10); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()
	repo := NewRoundRepository(db, 0)

	_, err := repo.Upsert(ctx, []pattern.RawRound{
		round(1, "2026-01-01", "LEFT", 3, "ODD"),
		{Side: "LEFT", LineCount: 3, Parity: "ODD", RoundNumber: 2, RegisteredAt: "2026-01-01"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := repo.Upsert(cancelled, []pattern.RawRound{round(3, "2026-01-01", "LEFT", 3, "ODD")}); err == nil {
		t.Error("expected error for cancelled context")
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2 (failed batch must not be applied)", n)
	}
}

func TestBatches(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	batches := []IngestBatch{
		{ID: "a", Source: "cli:rounds.json", Received: 10, Inserted: 10, IngestedAt: base},
		{ID: "b", Source: "http", Received: 3, Inserted: 1, Updated: 2, IngestedAt: base.Add(time.Minute)},
	}
	for _, b := range batches {
		if err := db.RecordBatch(ctx, b); err != nil {
			t.Fatalf("RecordBatch(%s): %v", b.ID, err)
		}
	}

	got, err := db.RecentBatches(ctx, 0)
	if err != nil {
		t.Fatalf("RecentBatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentBatches returned %d, want 2", len(got))
	}
	if got[0].ID != "b" || got[0].Updated != 2 || !got[0].IngestedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("newest batch = %+v", got[0])
	}

	if err := db.RecordBatch(ctx, batches[0]); err == nil {
		t.Error("duplicate batch id should fail")
	}
}
