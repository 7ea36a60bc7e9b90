package tracker

import (
	"context"

	"fintrack/core/appcontext"
	"fintrack/core/model"
)

// AddTransaction validates draft and stores the records it expands to: one, or one per
// installment. Expense categories are registered on the way.
func (t *Tracker) AddTransaction(ctx context.Context, draft model.TransactionDraft) ([]model.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	records := draft.Expand(t.now(), t.newID)
	if err := t.transactions.Insert(ctx, records...); err != nil {
		return nil, err
	}
	t.registerCategory(records[0])
	t.persistState(ctx)

	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "Added transaction",
		"user", t.UserID(), "type", draft.Type, "records", len(records))
	return records, nil
}

// EditTransaction applies patch to the transaction with id. Unknown ids are ignored.
func (t *Tracker) EditTransaction(ctx context.Context, id string, patch model.TransactionPatch) error {
	existing, ok := t.transactions.Find(id)
	if !ok {
		return nil
	}

	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := t.transactions.Replace(ctx, updated); err != nil {
		return err
	}
	t.registerCategory(updated)
	t.persistState(ctx)
	return nil
}

// RemoveTransaction deletes the transaction with id. Unknown ids are ignored.
func (t *Tracker) RemoveTransaction(ctx context.Context, id string) error {
	if err := t.transactions.Remove(ctx, id); err != nil {
		return err
	}
	t.persistState(ctx)
	return nil
}

// AddGoal validates draft and stores the new goal.
func (t *Tracker) AddGoal(ctx context.Context, draft model.GoalDraft) (model.Goal, error) {
	goal := draft.Goal(t.newID())
	if err := goal.Validate(); err != nil {
		return model.Goal{}, err
	}
	if err := t.goals.Insert(ctx, goal); err != nil {
		return model.Goal{}, err
	}
	t.persistState(ctx)
	return goal, nil
}

// EditGoal applies patch to the goal with id. Unknown ids are ignored.
func (t *Tracker) EditGoal(ctx context.Context, id string, patch model.GoalPatch) error {
	existing, ok := t.goals.Find(id)
	if !ok {
		return nil
	}

	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := t.goals.Replace(ctx, updated); err != nil {
		return err
	}
	t.persistState(ctx)
	return nil
}

// RemoveGoal deletes the goal with id. Unknown ids are ignored.
func (t *Tracker) RemoveGoal(ctx context.Context, id string) error {
	if err := t.goals.Remove(ctx, id); err != nil {
		return err
	}
	t.persistState(ctx)
	return nil
}

// AddInvestment validates draft and stores the new holding.
func (t *Tracker) AddInvestment(ctx context.Context, draft model.InvestmentDraft) (model.Investment, error) {
	investment := draft.Investment(t.newID())
	if err := investment.Validate(); err != nil {
		return model.Investment{}, err
	}
	if err := t.investments.Insert(ctx, investment); err != nil {
		return model.Investment{}, err
	}
	t.persistState(ctx)
	return investment, nil
}

// EditInvestment applies patch to the holding with id. Unknown ids are ignored.
func (t *Tracker) EditInvestment(ctx context.Context, id string, patch model.InvestmentPatch) error {
	existing, ok := t.investments.Find(id)
	if !ok {
		return nil
	}

	updated := patch.Apply(existing)
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := t.investments.Replace(ctx, updated); err != nil {
		return err
	}
	t.persistState(ctx)
	return nil
}

// RemoveInvestment deletes the holding with id. Unknown ids are ignored.
func (t *Tracker) RemoveInvestment(ctx context.Context, id string) error {
	if err := t.investments.Remove(ctx, id); err != nil {
		return err
	}
	t.persistState(ctx)
	return nil
}
