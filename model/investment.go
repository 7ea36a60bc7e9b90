package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Investment is a holding with its current value and the value it was created with.
type Investment struct {
	ID            string          `json:"id" bson:"_id"`
	Name          string          `json:"name" bson:"name"`
	Type          string          `json:"type" bson:"type"`
	Amount        decimal.Decimal `json:"amount" bson:"amount"`
	InitialAmount decimal.Decimal `json:"initialAmount" bson:"initialAmount"`
}

// EntityID implements Entity.
func (i Investment) EntityID() string { return i.ID }

// Yield is the current value minus the initial value.
func (i Investment) Yield() decimal.Decimal {
	return i.Amount.Sub(i.InitialAmount)
}

// Validate checks the stored invariants of an investment.
func (i Investment) Validate() error {
	if err := requireText("name", i.Name); err != nil {
		return err
	}
	if err := requireNonNegative("amount", i.Amount); err != nil {
		return err
	}
	return requireNonNegative("initialAmount", i.InitialAmount)
}

// InvestmentDraft is what a caller submits to create an investment.
// A nil InitialAmount means the holding starts at its current value.
type InvestmentDraft struct {
	Name          string
	Type          string
	Amount        decimal.Decimal
	InitialAmount *decimal.Decimal
}

// Investment builds the record for d under id.
func (d InvestmentDraft) Investment(id string) Investment {
	initial := d.Amount
	if d.InitialAmount != nil {
		initial = *d.InitialAmount
	}
	return Investment{
		ID:            id,
		Name:          strings.TrimSpace(d.Name),
		Type:          strings.TrimSpace(d.Type),
		Amount:        d.Amount,
		InitialAmount: initial,
	}
}

// InvestmentPatch replaces the fields that are set.
type InvestmentPatch struct {
	Name          *string
	Type          *string
	Amount        *decimal.Decimal
	InitialAmount *decimal.Decimal
}

// Apply returns i with the patch applied.
func (p InvestmentPatch) Apply(i Investment) Investment {
	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		i.Type = strings.TrimSpace(*p.Type)
	}
	if p.Amount != nil {
		i.Amount = *p.Amount
	}
	if p.InitialAmount != nil {
		i.InitialAmount = *p.InitialAmount
	}
	return i
}
