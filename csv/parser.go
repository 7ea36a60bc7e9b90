package csv

import (
	"context"

	"fintrack/core/model"
)

// Parser defines the interface for parsing CSV data.
type Parser interface {
	Parse(ctx context.Context, filePath string) ([]model.TransactionDraft, int64, error)
}

// TransactionParser is the Parser for transaction files.
type TransactionParser struct{}

// NewTransactionParser returns a TransactionParser.
func NewTransactionParser() *TransactionParser {
	return &TransactionParser{}
}

// Parse implements Parser with ParseCSV.
func (p *TransactionParser) Parse(ctx context.Context, filePath string) ([]model.TransactionDraft, int64, error) {
	return ParseCSV(ctx, filePath)
}
