package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Goal is a savings target. Progress is entered by hand and is not linked to transactions.
type Goal struct {
	ID            string          `json:"id" bson:"_id"`
	Name          string          `json:"name" bson:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount" bson:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount" bson:"currentAmount"`
	Deadline      *time.Time      `json:"deadline,omitempty" bson:"deadline,omitempty"`
}

// EntityID implements Entity.
func (g Goal) EntityID() string { return g.ID }

// Validate checks the stored invariants of a goal.
func (g Goal) Validate() error {
	if err := requireText("name", g.Name); err != nil {
		return err
	}
	if err := requirePositive("targetAmount", g.TargetAmount); err != nil {
		return err
	}
	return requireNonNegative("currentAmount", g.CurrentAmount)
}

// Remaining is how much is still missing to reach the target, never below zero.
func (g Goal) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Progress is the completed percentage, capped at 100.
func (g Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	progress := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
	if progress.GreaterThan(hundred) {
		return hundred
	}
	return progress
}

// GoalDraft is what a caller submits to create a goal. CurrentAmount defaults to zero.
type GoalDraft struct {
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
}

// Goal builds the record for d under id.
func (d GoalDraft) Goal(id string) Goal {
	return Goal{
		ID:            id,
		Name:          strings.TrimSpace(d.Name),
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		Deadline:      d.Deadline,
	}
}

// GoalPatch replaces the fields that are set.
type GoalPatch struct {
	Name          *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
}

// Apply returns g with the patch applied.
func (p GoalPatch) Apply(g Goal) Goal {
	if p.Name != nil {
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		deadline := *p.Deadline
		g.Deadline = &deadline
	}
	if p.ClearDeadline {
		g.Deadline = nil
	}
	return g
}
