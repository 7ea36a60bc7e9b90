package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrValidation is returned when a draft or patch is rejected before reaching the store.
var ErrValidation = errors.New("validation failed")

// ValidationError reports which field was rejected and why.
func ValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// ParseAmount turns user input into a decimal amount. Both "1234.5" and "1234,5" are accepted.
// Malformed input is a validation error instead of a silent non-number.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ValidationError("amount", "is required")
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ValidationError("amount", fmt.Sprintf("%q is not a number", raw))
	}
	return amount, nil
}

func requirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ValidationError(field, "must be greater than zero")
	}
	return nil
}

func requireNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ValidationError(field, "must not be negative")
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError(field, "is required")
	}
	return nil
}
