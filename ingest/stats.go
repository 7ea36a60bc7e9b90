package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Stats holds statistics about the file processing.
type Stats struct {
	TotalFiles        int
	ProcessedFiles    int
	FailedFiles       int
	RowsRead          int64
	RowsSkipped       int64
	TransactionsAdded int
	Failures          map[string]string
	// PartialFiles maps a failed file to the transactions it added before failing.
	// Importing such a file again duplicates them.
	PartialFiles      map[string]int
}

// NewStats creates and initializes a new Stats object.
func NewStats() *Stats {
	return &Stats{
		Failures:     make(map[string]string),
		PartialFiles: make(map[string]int),
	}
}

// AddFailure records a failed file and its reason.
func (s *Stats) AddFailure(file, reason string) {
	s.FailedFiles++
	s.Failures[file] = reason
}

// AddPartial records a failed file that had already added transactions.
func (s *Stats) AddPartial(file string, added int) {
	s.PartialFiles[file] = added
}

// IncrementProcessed increments the count of successfully processed files.
func (s *Stats) IncrementProcessed() {
	s.ProcessedFiles++
}

// Log prints the final statistics to the provided logger.
func (s *Stats) Log(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "--- Import Stats ---")
	logger.InfoContext(ctx, fmt.Sprintf("Total files found: %d", s.TotalFiles))
	logger.InfoContext(ctx, fmt.Sprintf("Files processed: %d", s.ProcessedFiles))
	logger.InfoContext(ctx, fmt.Sprintf("Files failed/skipped: %d", s.FailedFiles))
	logger.InfoContext(ctx, fmt.Sprintf("Rows read: %d (skipped %d)", s.RowsRead, s.RowsSkipped))
	logger.InfoContext(ctx, fmt.Sprintf("Transactions added: %d", s.TransactionsAdded))
	if s.FailedFiles > 0 {
		logger.InfoContext(ctx, "Failed files:")
		files := make([]string, 0, len(s.Failures))
		for file := range s.Failures {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			logger.InfoContext(ctx, fmt.Sprintf("- %s: %s", file, s.Failures[file]))
		}
	}
	if len(s.PartialFiles) > 0 {
		logger.WarnContext(ctx, "Partially imported files; importing them again duplicates these transactions:")
		files := make([]string, 0, len(s.PartialFiles))
		for file := range s.PartialFiles {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			logger.WarnContext(ctx, fmt.Sprintf("- %s: %d transactions added", file, s.PartialFiles[file]))
		}
	}
	logger.InfoContext(ctx, "--------------------")
}
