package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/core/config"
	"fintrack/core/ingest"
	"fintrack/core/persistence/persistencetest"
	"fintrack/core/tracker"
)

func TestNewSink(t *testing.T) {
	cfg := &config.Config{UnprocessedDir: "in", ProcessedDir: "out", MoveProcessedFiles: true}
	sink := ingest.NewSink(ingest.SinkDependencies{Config: cfg})

	if sink == nil {
		t.Fatal("NewSink returned nil")
	}
	if sink.UnprocessedDir != "in" || sink.ProcessedDir != "out" || !sink.MoveProcessedFiles {
		t.Errorf("NewSink did not copy the configuration: %+v", sink)
	}
}

func TestSink_Ingest_UnprocessedDirNotFound(t *testing.T) {
	cfg := &config.Config{
		UnprocessedDir: "/non/existent/dir",
	}
	sink := ingest.NewSink(ingest.SinkDependencies{Config: cfg})

	_, err := sink.Ingest(context.Background())
	if err == nil {
		t.Fatal("Ingest did not return an error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "stat check for directory") {
		t.Errorf("Expected 'stat check for directory' error, got: %v", err)
	}
}

func TestSink_Ingest_IntoTracker(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	content := `date,description,amount,type,category,installments
2025-06-05,Salário,5000,income,,
2025-06-10,Mercado,600.50,expense,Feira,
2025-06-12,Notebook,400,expense,Compras,2
bad-date,Nothing,1,expense,Outros,`
	if err := os.WriteFile(filepath.Join(dir, "june.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	tr, err := tracker.New(ctx, tracker.Options{
		Cache: persistencetest.NewCache(),
		Now:   func() time.Time { return time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}
	defer tr.Close()

	sink := ingest.NewSink(ingest.SinkDependencies{
		Config:   &config.Config{UnprocessedDir: dir, ProcessedDir: filepath.Join(dir, "done")},
		Recorder: tr,
	})
	stats, err := sink.Ingest(ctx)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if stats.TransactionsAdded != 4 || stats.RowsSkipped != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	state := tr.State()
	if len(state.AllTransactions) != 4 {
		t.Fatalf("Expected 4 stored transactions, got %d", len(state.AllTransactions))
	}
	if got := state.Summary.Balance.String(); got != "3999.5" {
		t.Errorf("Expected June balance 3999.5, got %s", got)
	}
	registered := false
	for _, entry := range state.Categories {
		registered = registered || entry.Name == "Feira"
	}
	if !registered {
		t.Error("Expected the imported category to be registered")
	}
}
