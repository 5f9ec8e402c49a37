// Package calculator holds the pure settlement computations: resolving
// the order-wide discount and adjustment, apportioning the final total
// across participants, and aggregating outstanding debts. Nothing in this
// package touches storage; the service layer feeds it snapshots.
package calculator

import (
	"fmt"
	"math"

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/money"
)

// ValidateDiscount checks that value is within the legal range for its
// type: percent in (0, 1], amount a non-negative whole number of minor
// units, none exactly zero. Out-of-range values are ErrInvalidDiscount
// and are rejected at configuration time, never silently clamped.
func ValidateDiscount(dt models.DiscountType, value float64) error {
	switch dt {
	case models.DiscountNone:
		if value != 0 {
			return fmt.Errorf("%w: type none requires value 0, got %v", models.ErrInvalidDiscount, value)
		}
	case models.DiscountPercent:
		if !(value > 0 && value <= 1) {
			return fmt.Errorf("%w: percent value %v must be in (0, 1]", models.ErrInvalidDiscount, value)
		}
	case models.DiscountAmount:
		if value < 0 || value != math.Trunc(value) {
			return fmt.Errorf("%w: amount value %v must be a non-negative whole number of minor units", models.ErrInvalidDiscount, value)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", models.ErrInvalidDiscount, dt)
	}
	return nil
}

// Resolve applies the discount and the flat adjustment to an order
// subtotal and returns the final order total:
//
//	none:    subtotal + adjustment
//	percent: roundHalfUp(subtotal * value) + adjustment
//	amount:  max(0, subtotal - value) + adjustment
//
// The result can be negative when the adjustment is a large negative
// value. The signed total is preserved for auditing; presentation layers
// clamp to zero, the engine does not.
func Resolve(dt models.DiscountType, value float64, adjustment, subtotal int64) (int64, error) {
	if err := ValidateDiscount(dt, value); err != nil {
		return 0, err
	}
	if subtotal < 0 {
		return 0, fmt.Errorf("%w: subtotal %d must not be negative", models.ErrInvalidAmount, subtotal)
	}

	switch dt {
	case models.DiscountPercent:
		discounted, err := money.MultiplyByFraction(subtotal, value)
		if err != nil {
			return 0, err
		}
		return discounted + adjustment, nil
	case models.DiscountAmount:
		discounted := subtotal - int64(value)
		if discounted < 0 {
			discounted = 0
		}
		return discounted + adjustment, nil
	default: // models.DiscountNone
		return subtotal + adjustment, nil
	}
}
