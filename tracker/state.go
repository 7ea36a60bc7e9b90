package tracker

import (
	"sort"

	"fintrack/core/aggregate"
	"fintrack/core/category"
	"fintrack/core/model"
	"fintrack/core/persistence"
)

// State is the read-only snapshot handed to the presentation layer.
type State struct {
	UserID            string                    `json:"userId"`
	Mode              persistence.Mode          `json:"mode"`
	Month             string                    `json:"month"`
	Summary           aggregate.Summary         `json:"summary"`
	CategoryBreakdown []aggregate.CategoryTotal `json:"categoryBreakdown"`
	BalanceHistory    []aggregate.BalancePoint  `json:"balanceHistory"`
	Alert             aggregate.AlertLevel      `json:"alert"`
	// Transactions holds the selected month only.
	Transactions    []model.Transaction `json:"transactions"`
	AllTransactions []model.Transaction `json:"allTransactions"`
	Goals           []model.Goal        `json:"goals"`
	Investments     []model.Investment  `json:"investments"`
	Portfolio       aggregate.Portfolio `json:"portfolio"`
	Categories      []category.Entry    `json:"categories"`
}

// AdvisorContext is the snapshot handed to the external advisor.
type AdvisorContext struct {
	UserName          string                    `json:"userName"`
	Summary           aggregate.Summary         `json:"summary"`
	CategoryBreakdown []aggregate.CategoryTotal `json:"categoryBreakdown"`
	Goals             []model.Goal              `json:"goals"`
}

// State derives the current view from the collections and the selected month.
func (t *Tracker) State() State {
	all := t.transactions.Items()
	sortNewestFirst(all)
	investments := t.investments.Items()

	t.mu.RLock()
	month := t.month
	userID := t.userID
	categories := t.categories.Entries()
	t.mu.RUnlock()

	view := aggregate.Compute(all, month)
	sortNewestFirst(view.Transactions)

	return State{
		UserID:            userID,
		Mode:              t.Mode(),
		Month:             month,
		Summary:           view.Summary,
		CategoryBreakdown: view.Categories,
		BalanceHistory:    view.History,
		Alert:             view.Alert,
		Transactions:      view.Transactions,
		AllTransactions:   all,
		Goals:             t.goals.Items(),
		Investments:       investments,
		Portfolio:         aggregate.SummarizePortfolio(investments),
		Categories:        categories,
	}
}

// AdvisorContext returns the selected month's summary and breakdown with the goals.
func (t *Tracker) AdvisorContext(userName string) AdvisorContext {
	view := aggregate.Compute(t.transactions.Items(), t.SelectedMonth())
	return AdvisorContext{
		UserName:          userName,
		Summary:           view.Summary,
		CategoryBreakdown: view.Categories,
		Goals:             t.goals.Items(),
	}
}

func sortNewestFirst(transactions []model.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].ID < transactions[j].ID
	})
}
