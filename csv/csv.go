// Package csv reads and writes transaction files.
//
// Files have a header row naming the columns date, description, amount, type, category
// and installments, in any order and any case. Only installments is optional.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"fintrack/core/appcontext"
	"fintrack/core/model"
)

const (
	colDate         = "date"
	colDescription  = "description"
	colAmount       = "amount"
	colType         = "type"
	colCategory     = "category"
	colInstallments = "installments"
)

// Header is the column order written by WriteTransactions.
var Header = []string{colDate, colDescription, colAmount, colType, colCategory, colInstallments}

var requiredColumns = []string{colDate, colDescription, colAmount, colType}

// dateLayouts are tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

var errMissingColumn = errors.New("required column is missing")
var errProcessCsv = errors.New("error while parsing CSV file")

// MissingColumnError reports a required column absent from the header.
func MissingColumnError(column string) error {
	return fmt.Errorf("%w, %s", errMissingColumn, column)
}

// ProcessCsvError reports a file that could not be read as CSV.
func ProcessCsvError(filename string, err error) error {
	return fmt.Errorf("%s, %w: %w", filename, errProcessCsv, err)
}

// ParseCSV reads the transaction drafts in filePath. Rows that cannot become a valid draft
// are skipped with a warning. It returns the drafts and the number of rows read.
//
//nolint:gocognit,funlen
func ParseCSV(ctx context.Context, filePath string) ([]model.TransactionDraft, int64, error) {
	// Retrieve the logger from the context at the start of the function.
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Parsing transactions from csv", "filePath", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Read header and create column index map
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil // Handle empty file gracefully
		}
		return nil, 0, ProcessCsvError(filePath, err)
	}
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, 0, fmt.Errorf("%s: %w", filePath, MissingColumnError(col))
		}
	}

	var drafts []model.TransactionDraft
	var rowsRead int64

	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, rowsRead, ProcessCsvError(filePath, readErr)
		}
		rowsRead++

		draft, rowErr := parseRow(record, colIndex)
		if rowErr != nil {
			logger.WarnContext(ctx, "Skipping invalid record", "file", filePath, "line", line, "error", rowErr)
			continue
		}
		drafts = append(drafts, draft)
	}

	return drafts, rowsRead, nil
}

func parseRow(record []string, colIndex map[string]int) (model.TransactionDraft, error) {
	get := func(col string) string {
		index, ok := colIndex[col]
		if !ok {
			return ""
		}
		return strings.TrimSpace(safeGet(record, index))
	}

	date, err := parseDate(get(colDate))
	if err != nil {
		return model.TransactionDraft{}, err
	}

	amount, err := model.ParseAmount(get(colAmount))
	if err != nil {
		return model.TransactionDraft{}, err
	}

	draft := model.TransactionDraft{
		Date:        date,
		Description: get(colDescription),
		Amount:      amount,
		Type:        model.TransactionType(strings.ToLower(get(colType))),
		Category:    get(colCategory),
	}

	if raw := get(colInstallments); raw != "" {
		count, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return model.TransactionDraft{}, model.ValidationError("installments", fmt.Sprintf("%q is not a number", raw))
		}
		draft.IsInstallment = count > 1
		draft.InstallmentsCount = count
	}

	if err := draft.Validate(); err != nil {
		return model.TransactionDraft{}, err
	}
	return draft, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, model.ValidationError("date", "is required")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, model.ValidationError("date", fmt.Sprintf("%q is not a known date format", raw))
}

// WriteTransactions writes transactions under Header. Each record is one row; rows
// written here read back as single transactions.
func WriteTransactions(w io.Writer, transactions []model.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range transactions {
		row := []string{
			t.Date.UTC().Format(time.RFC3339),
			t.Description,
			t.Amount.String(),
			string(t.Type),
			t.Category,
			"",
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", t.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// safeGet retrieves slice[index] safely.
func safeGet(slice []string, index int) string {
	if index < len(slice) {
		return slice[index]
	}

	return ""
}
