// utils/period.go - Calendar period helpers for voucher aggregation
package utils

import (
	"fmt"
	"time"
)

// ValidPeriod checks a (month, year) pair before it reaches a query.
func ValidPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("year must be between 2000 and 2100, got %d", year)
	}
	return nil
}

// PeriodBounds returns the half-open [start, end) range covering a calendar
// month, for selecting the trips that aggregate into its voucher.
func PeriodBounds(month, year int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// PeriodLabel formats a period for messages, e.g. "2026-01".
func PeriodLabel(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
