// Package synthetic produces random transaction files for exercising the importer.
package synthetic

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fintrack/core/category"
	csvparser "fintrack/core/csv"
	"fintrack/core/model"

	"github.com/shopspring/decimal"
)

// FileName is the file GenerateSyntheticData writes inside its directory.
const FileName = "synthetic-transactions.csv"

// Recorder stores transaction drafts.
type Recorder interface {
	AddTransaction(ctx context.Context, draft model.TransactionDraft) ([]model.Transaction, error)
}

var expenseDescriptions = map[string][]string{
	"Alimentação": {"Mercado", "Padaria", "Restaurante"},
	"Transporte":  {"Combustível", "Uber", "Metrô"},
	"Moradia":     {"Aluguel", "Condomínio", "Energia"},
	"Lazer":       {"Cinema", "Show", "Viagem"},
	"Saúde":       {"Farmácia", "Consulta"},
	"Compras":     {"Roupas", "Eletrônicos"},
	"Outros":      {"Presente", "Doação"},
}

// GenerateDrafts returns rows random drafts dated within the 90 days before end. About a
// fifth are income, a tenth investments and the rest expenses over the default categories;
// some large expenses are split into installments.
func GenerateDrafts(rows int, end time.Time, rng *rand.Rand) []model.TransactionDraft {
	categories := category.Defaults()
	drafts := make([]model.TransactionDraft, 0, rows)

	for i := 0; i < rows; i++ {
		date := end.UTC().Truncate(24*time.Hour).AddDate(0, 0, -rng.Intn(90))
		roll := rng.Intn(10)

		var draft model.TransactionDraft
		switch {
		case roll < 2:
			draft = model.TransactionDraft{
				Date:        date,
				Description: fmt.Sprintf("Salário %d", i),
				Amount:      randomAmount(rng, 2000, 8000),
				Type:        model.Income,
			}
		case roll < 3:
			draft = model.TransactionDraft{
				Date:        date,
				Description: fmt.Sprintf("Aporte %d", i),
				Amount:      randomAmount(rng, 100, 1500),
				Type:        model.InvestmentType,
			}
		default:
			name := categories[rng.Intn(len(categories))]
			options := expenseDescriptions[name]
			draft = model.TransactionDraft{
				Date:        date,
				Description: options[rng.Intn(len(options))],
				Amount:      randomAmount(rng, 5, 900),
				Type:        model.Expense,
				Category:    name,
			}
			if draft.Amount.GreaterThan(decimal.NewFromInt(600)) && rng.Intn(2) == 0 {
				draft.IsInstallment = true
				draft.InstallmentsCount = 2 + rng.Intn(11)
			}
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// randomAmount returns a value with cents in [lower, upper).
func randomAmount(rng *rand.Rand, lower, upper int64) decimal.Decimal {
	cents := lower*100 + rng.Int63n((upper-lower)*100)
	return decimal.New(cents, -2)
}

// GenerateSyntheticData creates a CSV file with synthetic data.
func GenerateSyntheticData(rows int, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	filePath := filepath.Join(dir, FileName)
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvparser.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, draft := range GenerateDrafts(rows, time.Now(), rng) {
		installments := ""
		if draft.IsInstallment {
			installments = strconv.Itoa(draft.InstallmentsCount)
		}
		row := []string{
			draft.Date.Format("2006-01-02"),
			draft.Description,
			draft.Amount.StringFixed(2),
			string(draft.Type),
			draft.Category,
			installments,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush '%s': %w", filePath, err)
	}
	return nil
}

// GenerateAndRecordSyntheticData adds rows random drafts straight through recorder and
// returns the number of transactions stored.
func GenerateAndRecordSyntheticData(ctx context.Context, recorder Recorder, rows int) (int, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	added := 0
	for i, draft := range GenerateDrafts(rows, time.Now(), rng) {
		records, err := recorder.AddTransaction(ctx, draft)
		if err != nil {
			return added, fmt.Errorf("failed to add synthetic transaction %d: %w", i, err)
		}
		added += len(records)
	}
	return added, nil
}
