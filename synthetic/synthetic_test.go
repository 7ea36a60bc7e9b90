package synthetic

import (
	"context"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"fintrack/core/config"
	csvparser "fintrack/core/csv"
	"fintrack/core/model"
)

type countingRecorder struct {
	drafts []model.TransactionDraft
}

func (c *countingRecorder) AddTransaction(ctx context.Context, draft model.TransactionDraft) ([]model.Transaction, error) {
	c.drafts = append(c.drafts, draft)
	return []model.Transaction{{}}, nil
}

func TestGenerateDrafts_AreValid(t *testing.T) {
	end := time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)
	drafts := GenerateDrafts(200, end, rand.New(rand.NewSource(7)))

	if len(drafts) != 200 {
		t.Fatalf("Expected 200 drafts, got %d", len(drafts))
	}
	earliest := end.AddDate(0, 0, -90)
	for i, draft := range drafts {
		if err := draft.Validate(); err != nil {
			t.Errorf("Draft %d is invalid: %v", i, err)
		}
		if draft.Date.After(end) || draft.Date.Before(earliest.Truncate(24*time.Hour)) {
			t.Errorf("Draft %d dated %s outside the window", i, draft.Date)
		}
	}
}

func TestGenerateSyntheticData_ParsesBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "synthetic")
	if err := GenerateSyntheticData(25, dir); err != nil {
		t.Fatalf("GenerateSyntheticData failed: %v", err)
	}

	drafts, rowsRead, err := csvparser.ParseCSV(context.Background(), filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if rowsRead != 25 || len(drafts) != 25 {
		t.Errorf("Expected 25 rows parsed back, got %d read and %d drafts", rowsRead, len(drafts))
	}
}

func TestRunGenerateSyntheticData_Record(t *testing.T) {
	recorder := &countingRecorder{}
	released := false
	open := func(ctx context.Context) (Recorder, func(), error) {
		return recorder, func() { released = true }, nil
	}

	err := RunGenerateSyntheticData(context.Background(), slog.Default(),
		[]string{"-record", "-rows", "12"}, &config.Config{SyntheticDataRows: 5}, open)
	if err != nil {
		t.Fatalf("RunGenerateSyntheticData failed: %v", err)
	}
	if len(recorder.drafts) != 12 {
		t.Errorf("Expected 12 recorded drafts, got %d", len(recorder.drafts))
	}
	if !released {
		t.Error("Expected the recorder to be released")
	}
}

func TestRunGenerateSyntheticData_File(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{SyntheticDataRows: 3, SyntheticDataDir: dir}

	if err := RunGenerateSyntheticData(context.Background(), slog.Default(), nil, cfg, nil); err != nil {
		t.Fatalf("RunGenerateSyntheticData failed: %v", err)
	}
	drafts, _, err := csvparser.ParseCSV(context.Background(), filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(drafts) != 3 {
		t.Errorf("Expected 3 drafts, got %d", len(drafts))
	}
}
