package aggregate_test

import (
	"testing"

	"fintrack/core/aggregate"
	"fintrack/core/model"

	"github.com/shopspring/decimal"
)

func TestSummarizePortfolio(t *testing.T) {
	investments := []model.Investment{
		{ID: "a", Name: "CDB", Amount: decimal.NewFromInt(1100), InitialAmount: decimal.NewFromInt(1000)},
		{ID: "b", Name: "FII", Amount: decimal.NewFromInt(900), InitialAmount: decimal.NewFromInt(1000)},
		{ID: "c", Name: "Tesouro", Amount: decimal.NewFromInt(1200), InitialAmount: decimal.NewFromInt(1000)},
	}

	p := aggregate.SummarizePortfolio(investments)
	if !p.Total.Equal(decimal.NewFromInt(3200)) || !p.Invested.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Unexpected totals %+v", p)
	}
	if !p.Yield.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected yield 200, got %s", p.Yield)
	}
	if got := p.YieldPercent.Round(2); !got.Equal(decimal.RequireFromString("6.67")) {
		t.Errorf("Expected yield percent 6.67, got %s", got)
	}

	empty := aggregate.SummarizePortfolio(nil)
	if !empty.YieldPercent.IsZero() || !empty.Total.IsZero() {
		t.Errorf("Expected zero portfolio, got %+v", empty)
	}
}

func TestAlert(t *testing.T) {
	tests := []struct {
		name    string
		income  int64
		balance int64
		want    aggregate.AlertLevel
	}{
		{"no income", 0, -100, aggregate.AlertNone},
		{"negative", 1000, -1, aggregate.AlertCritical},
		{"under ten percent", 1000, 99, aggregate.AlertCritical},
		{"under twenty percent", 1000, 150, aggregate.AlertWarning},
		{"healthy", 1000, 200, aggregate.AlertNone},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := aggregate.Summary{Income: decimal.NewFromInt(test.income), Balance: decimal.NewFromInt(test.balance)}
			if got := aggregate.Alert(s); got != test.want {
				t.Errorf("Alert got %s, want %s", got, test.want)
			}
		})
	}
}
