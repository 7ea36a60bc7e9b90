package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. Amounts are always positive.
type TransactionType string

const (
	Income         TransactionType = "income"
	Expense        TransactionType = "expense"
	InvestmentType TransactionType = "investment"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, InvestmentType:
		return true
	default:
		return false
	}
}

// Transaction is a single dated money movement.
type Transaction struct {
	ID          string          `json:"id" bson:"_id"`
	Date        time.Time       `json:"date" bson:"date"`
	Description string          `json:"description" bson:"description"`
	Amount      decimal.Decimal `json:"amount" bson:"amount"`
	Type        TransactionType `json:"type" bson:"type"`
	Category    string          `json:"category,omitempty" bson:"category,omitempty"`
}

// EntityID implements Entity.
func (t Transaction) EntityID() string { return t.ID }

// Validate checks the stored invariants of a transaction.
func (t Transaction) Validate() error {
	if err := requireText("description", t.Description); err != nil {
		return err
	}
	if err := requirePositive("amount", t.Amount); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ValidationError("type", fmt.Sprintf("%q is not income, expense or investment", t.Type))
	}
	if t.Type == Expense {
		return requireText("category", t.Category)
	}
	return nil
}

// TransactionDraft is what a caller submits to create one or more transactions.
// Amount is the per-installment amount when IsInstallment is set.
type TransactionDraft struct {
	Date              time.Time
	Description       string
	Amount            decimal.Decimal
	Type              TransactionType
	Category          string
	IsInstallment     bool
	InstallmentsCount int
}

// Validate rejects drafts that would produce invalid transactions. An installment draft
// with a count below 2 is a single entry, so the count itself is never rejected.
func (d TransactionDraft) Validate() error {
	return Transaction{
		Description: d.Description,
		Amount:      d.Amount,
		Type:        d.Type,
		Category:    d.Category,
	}.Validate()
}

// Expand builds the records for d. An installment draft with N > 1 becomes N records dated
// month by month from the base date, each described as "<description> (i/N)".
// The base date is d.Date, or now when the draft carries none.
func (d TransactionDraft) Expand(now time.Time, newID func() string) []Transaction {
	base := d.Date
	if base.IsZero() {
		base = now
	}
	base = base.UTC()
	description := strings.TrimSpace(d.Description)
	category := strings.TrimSpace(d.Category)

	if !d.IsInstallment || d.InstallmentsCount <= 1 {
		return []Transaction{{
			ID:          newID(),
			Date:        base,
			Description: description,
			Amount:      d.Amount,
			Type:        d.Type,
			Category:    category,
		}}
	}

	transactions := make([]Transaction, 0, d.InstallmentsCount)
	for i := 0; i < d.InstallmentsCount; i++ {
		transactions = append(transactions, Transaction{
			ID:          newID(),
			Date:        AddMonths(base, i),
			Description: fmt.Sprintf("%s (%d/%d)", description, i+1, d.InstallmentsCount),
			Amount:      d.Amount,
			Type:        d.Type,
			Category:    category,
		})
	}
	return transactions
}

// AddMonths moves t by n calendar months, keeping the time of day. The day is clamped to
// the last day of the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

// TransactionPatch replaces the fields that are set. The id is never patched.
type TransactionPatch struct {
	Date        *time.Time
	Description *string
	Amount      *decimal.Decimal
	Type        *TransactionType
	Category    *string
}

// Apply returns t with the patch applied.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	return t
}
