package services

import (
	"math"

	"travel-voucher-api/models"
)

// VoucherTotals is the deterministic aggregate of a voucher's linked trips.
type VoucherTotals struct {
	Miles  float64
	Amount float64
}

// ComputeVoucherTotals derives totals from the given trips and mileage rate:
// rate × total miles plus the sum of incidental expenses, rounded to cents.
// Pure and idempotent; identical inputs always yield identical totals.
func ComputeVoucherTotals(trips []models.Trip, mileageRate float64) VoucherTotals {
	var miles, expenses float64
	for _, trip := range trips {
		miles += trip.MilesCalculated
		expenses += trip.ExpenseTotal()
	}
	return VoucherTotals{
		Miles:  roundCents(miles),
		Amount: roundCents(mileageRate*miles + expenses),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
