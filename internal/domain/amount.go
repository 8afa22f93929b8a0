/**
 * @description
 * This file defines the Amount value object used for all monetary values in the
 * donation-service. Amounts are held as an int64 count of minor currency units
 * (paise) so that financial arithmetic never touches floating point.
 *
 * @notes
 * - The upper bound mirrors the largest integer the hosted checkout client can
 *   represent exactly (2^53 - 1), divided by the sub-unit multiplier. Orders are
 *   created with the same number the browser widget will display.
 * - Construction failures are reported as a sentinel error, never a panic, so the
 *   range check composes with the rest of the request schema.
 */

package domain

import "errors"

const (
	// AmountSubUnits is the number of decimal places carried by the currency (paise).
	AmountSubUnits = 2

	// AmountCurrency is fixed for this deployment.
	AmountCurrency = "INR"

	maxSafeInteger = int64(1)<<53 - 1
)

const (
	// MinSafeAmount is the smallest raw minor-unit value accepted.
	MinSafeAmount int64 = 0

	// MaxSafeAmount is the largest raw minor-unit value accepted.
	MaxSafeAmount int64 = maxSafeInteger / 100
)

// ErrAmountOutOfRange is returned by NewAmount when the raw value falls outside
// [MinSafeAmount, MaxSafeAmount].
var ErrAmountOutOfRange = errors.New("amount out of safe range")

// Amount is an immutable monetary value in minor currency units.
type Amount struct {
	value int64
}

// NewAmount validates a raw minor-unit value and wraps it in an Amount.
// The raw value must already include sub-units (e.g., 50000 = 500.00 INR).
func NewAmount(value int64) (Amount, error) {
	if value < MinSafeAmount || value > MaxSafeAmount {
		return Amount{}, ErrAmountOutOfRange
	}
	return Amount{value: value}, nil
}

// Value returns the stored minor-unit integer.
func (a Amount) Value() int64 {
	return a.value
}

// MajorUnits converts the stored value to major units for display.
func (a Amount) MajorUnits() float64 {
	return float64(a.value) / float64(amountMultiplier())
}

// Currency returns the fixed currency code.
func (a Amount) Currency() string {
	return AmountCurrency
}

func amountMultiplier() int64 {
	m := int64(1)
	for i := 0; i < AmountSubUnits; i++ {
		m *= 10
	}
	return m
}
