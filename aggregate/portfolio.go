package aggregate

import (
	"fintrack/core/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Portfolio totals the investment holdings.
type Portfolio struct {
	Total        decimal.Decimal `json:"total"`
	Invested     decimal.Decimal `json:"invested"`
	Yield        decimal.Decimal `json:"yield"`
	YieldPercent decimal.Decimal `json:"yieldPercent"`
}

// SummarizePortfolio sums current and initial values. YieldPercent is zero when nothing was invested.
func SummarizePortfolio(investments []model.Investment) Portfolio {
	p := Portfolio{Total: decimal.Zero, Invested: decimal.Zero, YieldPercent: decimal.Zero}
	for _, inv := range investments {
		p.Total = p.Total.Add(inv.Amount)
		p.Invested = p.Invested.Add(inv.InitialAmount)
	}
	p.Yield = p.Total.Sub(p.Invested)
	if p.Invested.IsPositive() {
		p.YieldPercent = p.Yield.Div(p.Invested).Mul(hundred)
	}
	return p
}
