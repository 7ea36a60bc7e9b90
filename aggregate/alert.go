package aggregate

import "github.com/shopspring/decimal"

// AlertLevel grades how much of the month's income is left.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

var (
	criticalShare = decimal.NewFromInt(10)
	warningShare  = decimal.NewFromInt(20)
)

// Alert is critical when the balance is negative or under 10% of income, and a warning under 20%.
// Without income there is nothing to grade.
func Alert(s Summary) AlertLevel {
	if s.Income.IsZero() {
		return AlertNone
	}
	share := s.Balance.Div(s.Income).Mul(hundred)
	switch {
	case s.Balance.IsNegative() || share.LessThan(criticalShare):
		return AlertCritical
	case share.LessThan(warningShare):
		return AlertWarning
	default:
		return AlertNone
	}
}
