package synthetic

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"fintrack/core/config"
)

// OpenRecorder opens the store synthetic rows are recorded into. The returned func
// releases it.
type OpenRecorder func(ctx context.Context) (Recorder, func(), error)

// RunGenerateSyntheticData generates synthetic data for testing.
func RunGenerateSyntheticData(
	ctx context.Context,
	logger *slog.Logger,
	args []string,
	cfg *config.Config,
	open OpenRecorder,
) error {
	genFlagSet := flag.NewFlagSet("generate-synthetic-data", flag.ContinueOnError)
	rows := genFlagSet.Int("rows", cfg.SyntheticDataRows, "Number of rows to generate")
	dir := genFlagSet.String("dir", cfg.SyntheticDataDir, "Directory to write synthetic data to")
	record := genFlagSet.Bool("record", false, "Add the synthetic transactions to the tracker instead of writing a file")
	if err := genFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if *record {
		if open == nil {
			return fmt.Errorf("no tracker available to record synthetic data")
		}
		recorder, release, err := open(ctx)
		if err != nil {
			return fmt.Errorf("failed to open tracker: %w", err)
		}
		defer release()

		added, err := GenerateAndRecordSyntheticData(ctx, recorder, *rows)
		if err != nil {
			return fmt.Errorf("failed to generate and record synthetic data: %w", err)
		}
		logger.InfoContext(ctx, "Synthetic data generated and recorded successfully", "transactions", added)
		return nil
	}

	logger.InfoContext(ctx, "Generating synthetic data", "rows", *rows, "dir", *dir)
	if err := GenerateSyntheticData(*rows, *dir); err != nil {
		return fmt.Errorf("failed to generate synthetic data: %w", err)
	}
	logger.InfoContext(ctx, "Synthetic data generated successfully")
	return nil
}
