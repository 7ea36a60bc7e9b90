package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/core/model"
)

// ---- Mocks ----

type mockRecorder struct {
	drafts []model.TransactionDraft
	err    error
	// failAfter, when positive, makes every call after that many stored drafts fail with err.
	failAfter int
}

func (m *mockRecorder) AddTransaction(ctx context.Context, draft model.TransactionDraft) ([]model.Transaction, error) {
	if m.err != nil && len(m.drafts) >= m.failAfter {
		return nil, m.err
	}
	m.drafts = append(m.drafts, draft)
	n := 1
	if draft.IsInstallment {
		n = draft.InstallmentsCount
	}
	return make([]model.Transaction, n), nil
}

type mockParser struct {
	drafts   []model.TransactionDraft
	rowsRead int64
	err      error
	paths    []string
}

func (m *mockParser) Parse(ctx context.Context, filePath string) ([]model.TransactionDraft, int64, error) {
	m.paths = append(m.paths, filePath)
	return m.drafts, m.rowsRead, m.err
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("date,description,amount,type\n"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// ---- Tests ----

func TestIngestCSVFiles_SkipsNonCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "january.csv")
	writeFile(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	parser := &mockParser{
		drafts:   []model.TransactionDraft{{Description: "a"}, {Description: "b", IsInstallment: true, InstallmentsCount: 3}},
		rowsRead: 3,
	}
	recorder := &mockRecorder{}

	stats, err := IngestCSVFiles(context.Background(), recorder, parser, dir, "", false)
	if err != nil {
		t.Fatalf("IngestCSVFiles failed: %v", err)
	}

	if stats.TotalFiles != 3 || stats.ProcessedFiles != 1 || stats.FailedFiles != 2 {
		t.Errorf("Unexpected file counts %+v", stats)
	}
	if stats.Failures["notes.txt"] != errNotCSV.Error() {
		t.Errorf("Expected notes.txt to be rejected, got %v", stats.Failures)
	}
	if len(parser.paths) != 1 || parser.paths[0] != filepath.Join(dir, "january.csv") {
		t.Errorf("Expected only january.csv parsed, got %v", parser.paths)
	}
	if stats.RowsRead != 3 || stats.RowsSkipped != 1 || stats.TransactionsAdded != 4 {
		t.Errorf("Unexpected row counts %+v", stats)
	}
}

func TestIngestCSVFiles_RejectedDraftsAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv")

	parser := &mockParser{drafts: []model.TransactionDraft{{}}, rowsRead: 1}
	recorder := &mockRecorder{err: model.ValidationError("amount", "must be greater than zero")}

	stats, err := IngestCSVFiles(context.Background(), recorder, parser, dir, "", false)
	if err != nil {
		t.Fatalf("IngestCSVFiles failed: %v", err)
	}
	if stats.ProcessedFiles != 1 || stats.RowsSkipped != 1 || stats.TransactionsAdded != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestIngestCSVFiles_StoreFailureFailsFile(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")
	writeFile(t, dir, "a.csv")

	parser := &mockParser{drafts: []model.TransactionDraft{{}}, rowsRead: 1}
	recorder := &mockRecorder{err: errors.New("remote sync failed")}

	stats, err := IngestCSVFiles(context.Background(), recorder, parser, dir, processed, true)
	if err != nil {
		t.Fatalf("IngestCSVFiles failed: %v", err)
	}
	if stats.FailedFiles != 1 || stats.ProcessedFiles != 0 {
		t.Errorf("Expected the file to fail, got %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.csv")); err != nil {
		t.Errorf("A failed file must stay in place: %v", err)
	}
}

func TestIngestCSVFiles_PartialFileIsReported(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")
	writeFile(t, dir, "a.csv")

	parser := &mockParser{
		drafts: []model.TransactionDraft{
			{Description: "rent"},
			{Description: "tv", IsInstallment: true, InstallmentsCount: 3},
			{Description: "lost"},
		},
		rowsRead: 3,
	}
	recorder := &mockRecorder{err: errors.New("remote sync failed"), failAfter: 2}

	stats, err := IngestCSVFiles(context.Background(), recorder, parser, dir, processed, true)
	if err != nil {
		t.Fatalf("IngestCSVFiles failed: %v", err)
	}
	if stats.FailedFiles != 1 || stats.TransactionsAdded != 4 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if got := stats.PartialFiles["a.csv"]; got != 4 {
		t.Errorf("Expected a.csv reported with 4 transactions added, got %d", got)
	}
	if !strings.Contains(stats.Failures["a.csv"], "after 4 added") {
		t.Errorf("Expected the failure to name the rows already added, got %q", stats.Failures["a.csv"])
	}
	if _, err := os.Stat(filepath.Join(dir, "a.csv")); err != nil {
		t.Errorf("A partially imported file must stay in place: %v", err)
	}
}

func TestIngestCSVFiles_MovesProcessedFiles(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")
	writeFile(t, dir, "a.CSV")

	stats, err := IngestCSVFiles(context.Background(), &mockRecorder{}, &mockParser{}, dir, processed, true)
	if err != nil {
		t.Fatalf("IngestCSVFiles failed: %v", err)
	}
	if stats.ProcessedFiles != 1 {
		t.Errorf("Expected 1 processed file, got %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(processed, "a.CSV")); err != nil {
		t.Errorf("Expected the file in the processed directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.CSV")); !os.IsNotExist(err) {
		t.Errorf("Expected the file to leave the unprocessed directory, got %v", err)
	}
}

func TestIngestCSVFiles_MissingDirectory(t *testing.T) {
	_, err := IngestCSVFiles(context.Background(), &mockRecorder{}, &mockParser{}, "/non/existent/dir", "", false)
	if err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}
