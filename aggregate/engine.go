// Package aggregate derives the monthly views of the transaction collection.
// Every function here is pure: the same transactions and month always give the same result.
package aggregate

import (
	"sort"

	"fintrack/core/category"
	"fintrack/core/model"

	"github.com/shopspring/decimal"
)

// Summary holds the monthly totals. Balance is income minus expenses minus investments.
type Summary struct {
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Investments decimal.Decimal `json:"investments"`
	Balance     decimal.Decimal `json:"balance"`
}

// CategoryTotal is one entry of the expense breakdown.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// BalancePoint is the running balance right after one transaction of the month.
type BalancePoint struct {
	Label   string          `json:"date"`
	Date    string          `json:"-"`
	Balance decimal.Decimal `json:"balance"`
}

// View is everything derived for one month.
type View struct {
	Month        string              `json:"month"`
	Transactions []model.Transaction `json:"transactions"`
	Summary      Summary             `json:"summary"`
	Categories   []CategoryTotal     `json:"categories"`
	History      []BalancePoint      `json:"balanceHistory"`
	Alert        AlertLevel          `json:"alert"`
}

// Compute filters transactions to month ("YYYY-MM") and derives every view from the result.
func Compute(transactions []model.Transaction, month string) View {
	filtered := FilterMonth(transactions, month)
	summary := Summarize(filtered)
	return View{
		Month:        month,
		Transactions: filtered,
		Summary:      summary,
		Categories:   Breakdown(filtered),
		History:      History(filtered),
		Alert:        Alert(summary),
	}
}

// FilterMonth keeps the transactions whose UTC ISO date starts with month.
func FilterMonth(transactions []model.Transaction, month string) []model.Transaction {
	filtered := make([]model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if MonthKey(t.Date) == month {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Summarize accumulates the totals in a single pass. Unknown types are ignored.
func Summarize(transactions []model.Transaction) Summary {
	summary := Summary{
		Income:      decimal.Zero,
		Expenses:    decimal.Zero,
		Investments: decimal.Zero,
		Balance:     decimal.Zero,
	}
	for _, t := range transactions {
		switch t.Type {
		case model.Income:
			summary.Income = summary.Income.Add(t.Amount)
			summary.Balance = summary.Balance.Add(t.Amount)
		case model.Expense:
			summary.Expenses = summary.Expenses.Add(t.Amount)
			summary.Balance = summary.Balance.Sub(t.Amount)
		case model.InvestmentType:
			summary.Investments = summary.Investments.Add(t.Amount)
			summary.Balance = summary.Balance.Sub(t.Amount)
		}
	}
	return summary
}

// Breakdown sums expenses per category, largest first. Equal values are ordered by name.
func Breakdown(transactions []model.Transaction) []CategoryTotal {
	totals := map[string]decimal.Decimal{}
	for _, t := range transactions {
		if t.Type != model.Expense {
			continue
		}
		current, ok := totals[t.Category]
		if !ok {
			current = decimal.Zero
		}
		totals[t.Category] = current.Add(t.Amount)
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for name, value := range totals {
		breakdown = append(breakdown, CategoryTotal{Name: name, Value: value, Color: category.ColorFor(name)})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if cmp := breakdown[i].Value.Cmp(breakdown[j].Value); cmp != 0 {
			return cmp > 0
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

// History replays the transactions in date order from a zero balance. Income adds, every
// other type subtracts. The trace covers only the given transactions; it is not net worth.
func History(transactions []model.Transaction) []BalancePoint {
	sorted := append([]model.Transaction(nil), transactions...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	history := make([]BalancePoint, 0, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		if t.Type == model.Income {
			balance = balance.Add(t.Amount)
		} else {
			balance = balance.Sub(t.Amount)
		}
		date := t.Date.UTC()
		history = append(history, BalancePoint{
			Label:   date.Format("02"),
			Date:    date.Format("2006-01-02"),
			Balance: balance,
		})
	}
	return history
}
