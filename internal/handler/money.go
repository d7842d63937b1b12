package handler

import (
	"github.com/shopspring/decimal"

	"savings-accounts/internal/errors"
)

// Balances are stored in minor units (cents); the API speaks major units as
// decimal strings. minorUnitExponent is the shift between the two.
const minorUnitExponent = 2

// parseAmount converts a decimal major-unit string like "12.34" to minor
// units. Anything with sub-cent precision is rejected rather than rounded.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error())
	}

	minor := d.Shift(minorUnitExponent)
	if !minor.IsInteger() {
		return 0, errors.NewAppError(errors.InvalidAmount, "amount has more than two decimal places")
	}
	if !minor.BigInt().IsInt64() {
		return 0, errors.NewAppError(errors.InvalidAmount, "amount out of range")
	}

	return minor.IntPart(), nil
}

// formatAmount renders minor units back as a two-decimal major-unit string.
func formatAmount(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-minorUnitExponent).StringFixed(minorUnitExponent)
}
