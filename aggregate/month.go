package aggregate

import (
	"fmt"
	"time"

	"fintrack/core/model"
)

const monthLayout = "2006-01"

// MonthKey formats t as the "YYYY-MM" key of its UTC month.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// ParseMonth validates a "YYYY-MM" key and returns the first instant of that month in UTC.
func ParseMonth(month string) (time.Time, error) {
	if len(month) != len(monthLayout) {
		return time.Time{}, model.ValidationError("month", fmt.Sprintf("%q is not YYYY-MM", month))
	}
	parsed, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, model.ValidationError("month", fmt.Sprintf("%q is not YYYY-MM", month))
	}
	return parsed, nil
}

// ShiftMonth moves a month key by offset months, rolling over years.
func ShiftMonth(month string, offset int) (string, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return MonthKey(start.AddDate(0, offset, 0)), nil
}
