package ingest

import (
	"context"
	"fmt"
	"os"

	"fintrack/core/appcontext"
	"fintrack/core/config"
	csvparser "fintrack/core/csv"
)

// SinkDependencies holds all the dependencies for the Sink.
type SinkDependencies struct {
	Config   *config.Config
	Recorder Recorder
	Parser   csvparser.Parser
}

// Sink orchestrates the import of the configured unprocessed directory.
type Sink struct {
	deps               SinkDependencies
	UnprocessedDir     string
	ProcessedDir       string
	MoveProcessedFiles bool
}

// NewSink creates a new Sink instance.
func NewSink(deps SinkDependencies) *Sink {
	if deps.Parser == nil {
		deps.Parser = csvparser.NewTransactionParser()
	}
	return &Sink{
		deps:               deps,
		UnprocessedDir:     deps.Config.UnprocessedDir,
		ProcessedDir:       deps.Config.ProcessedDir,
		MoveProcessedFiles: deps.Config.MoveProcessedFiles,
	}
}

// Ingest handles the main import process.
func (s *Sink) Ingest(ctx context.Context) (*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Starting import process")

	// Directory existence check
	if _, err := os.Stat(s.UnprocessedDir); err != nil {
		logger.ErrorContext(
			ctx,
			"The directory does not exist. Please create it and place your CSV files inside.",
			"dir", s.UnprocessedDir,
			"error", err,
		)
		return nil, fmt.Errorf("stat check for directory %s: %w", s.UnprocessedDir, err)
	}

	stats, err := IngestCSVFiles(
		ctx,
		s.deps.Recorder,
		s.deps.Parser,
		s.UnprocessedDir,
		s.ProcessedDir,
		s.MoveProcessedFiles,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Error importing CSV files", "error", err)
		return nil, fmt.Errorf("import of CSV files failed: %w", err)
	}

	logger.InfoContext(ctx, "Import process completed successfully.")
	stats.Log(ctx, logger)

	return stats, nil
}
