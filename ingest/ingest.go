// Package ingest imports transaction CSV files into the tracker.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fintrack/core/appcontext"
	csvparser "fintrack/core/csv"
	"fintrack/core/model"
)

var errNotCSV = errors.New("not a valid CSV file")

// Recorder stores transaction drafts. *tracker.Tracker satisfies it.
type Recorder interface {
	AddTransaction(ctx context.Context, draft model.TransactionDraft) ([]model.Transaction, error)
}

// IngestCSVFiles imports every CSV file in unprocessedDir through recorder. A file that
// fails to parse or store is recorded in the stats and the remaining files still run.
func IngestCSVFiles(
	ctx context.Context,
	recorder Recorder,
	parser csvparser.Parser,
	unprocessedDir string,
	processedDir string,
	moveProcessedFiles bool,
) (*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Reading transactions from sink", "sink", unprocessedDir)

	files, err := os.ReadDir(unprocessedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	stats := NewStats()
	stats.TotalFiles = len(files)

	for _, file := range files {
		// Validate that's it's a real CSV file.
		if !validateFile(file) {
			stats.AddFailure(file.Name(), errNotCSV.Error())
			logger.WarnContext(ctx, "file was not processed", "fileName", file.Name(), "reason", errNotCSV)
			continue
		}

		if err := processFile(ctx, recorder, parser, file, unprocessedDir, processedDir, moveProcessedFiles, stats); err != nil {
			stats.AddFailure(file.Name(), err.Error())
			logger.ErrorContext(ctx, "failed to process file", "file", file.Name(), "error", err)
			continue
		}
		stats.IncrementProcessed()
	}

	return stats, nil
}

// Return true only if the entry pointed to by FILE is valid.
func validateFile(file os.DirEntry) bool {
	if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".csv") {
		return false
	}
	return true
}

func processFile(
	ctx context.Context,
	recorder Recorder,
	parser csvparser.Parser,
	file os.DirEntry,
	unprocessedDir string,
	processedDir string,
	moveProcessedFiles bool,
	stats *Stats,
) error {
	ctx = appcontext.WithAttrs(ctx, "file", file.Name())
	logger := appcontext.LoggerFromContext(ctx)

	filePath := filepath.Join(unprocessedDir, filepath.Base(file.Name()))
	drafts, rowsRead, err := parser.Parse(ctx, filePath)
	if err != nil {
		return err
	}
	stats.RowsRead += rowsRead
	stats.RowsSkipped += rowsRead - int64(len(drafts))

	added := 0
	for i, draft := range drafts {
		records, addErr := recorder.AddTransaction(ctx, draft)
		if errors.Is(addErr, model.ErrValidation) {
			stats.RowsSkipped++
			logger.WarnContext(ctx, "Skipping rejected transaction", "file", file.Name(), "row", i+1, "error", addErr)
			continue
		}
		if addErr != nil {
			if added > 0 {
				stats.AddPartial(file.Name(), added)
				logger.ErrorContext(ctx, "File partially imported, not moving it",
					"file", file.Name(), "transactionsAdded", added, "failedRow", i+1)
			}
			return fmt.Errorf("failed to add transaction %d of %s after %d added: %w", i+1, file.Name(), added, addErr)
		}
		added += len(records)
		stats.TransactionsAdded += len(records)
	}

	if moveProcessedFiles {
		if err := moveFile(filePath, processedDir); err != nil {
			return fmt.Errorf("failed to move file: %w", err)
		}
	}

	return nil
}

func moveFile(filePath, processedDir string) error {
	var err error
	if _, err = os.Stat(processedDir); os.IsNotExist(err) {
		if err = os.MkdirAll(processedDir, 0o750); err != nil {
			return fmt.Errorf("failed to create processed directory '%s': %w", processedDir, err)
		}
	}

	fileName := filepath.Base(filePath)
	newPath := filepath.Join(processedDir, fileName)

	if err = os.Rename(filePath, newPath); err != nil {
		return fmt.Errorf("failed to move file from '%s' to '%s': %w", filePath, newPath, err)
	}

	return nil
}
