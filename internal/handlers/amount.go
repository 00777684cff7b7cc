package handlers

import (
	"errors"

	"github.com/shopspring/decimal"
)

var errInvalidAmount = errors.New("invalid amount")

// parseAmount validates a submitted monetary amount and rounds it to two
// decimal places. Amounts must be non-negative.
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errInvalidAmount
	}
	if d.IsNegative() {
		return 0, errInvalidAmount
	}
	return d.Round(2).InexactFloat64(), nil
}

// parsePositiveAmount is parseAmount with a strictly-positive requirement,
// used where a zero amount makes no sense (payments, contributions).
func parsePositiveAmount(s string) (float64, error) {
	amount, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}
