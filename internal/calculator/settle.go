package calculator

import (
	"fmt"
	"sort"

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/money"
)

// Settlement is the computed outcome of settling one order.
type Settlement struct {
	// Subtotal is the sum of all raw participant subtotals.
	Subtotal int64

	// FinalTotal is the order total after discount and adjustment. It
	// keeps its sign for auditing even when negative; the dues always
	// sum to max(0, FinalTotal).
	FinalTotal int64

	// Dues maps each participant to the amount they owe.
	Dues map[string]int64
}

// ComputeDues turns per-participant raw subtotals plus the order's
// discount and adjustment into per-participant dues.
//
// The discounted-and-adjusted total is apportioned across participants
// proportionally to their raw subtotal using the largest-remainder
// method, so the dues sum to max(0, finalTotal) exactly and every due is
// non-negative. Distributing the final total directly is equivalent to
// distributing the discount delta and then reconciling negative dues,
// and it removes the reconciliation step entirely.
//
// An order with no items charges nobody: when the subtotal is zero every
// due is zero regardless of the adjustment.
//
// The computation is deterministic and idempotent: participants are
// processed in sorted user-ID order, so identical inputs yield identical
// dues bit-for-bit.
func ComputeDues(subtotals map[string]int64, dt models.DiscountType, value float64, adjustment int64) (*Settlement, error) {
	users := make([]string, 0, len(subtotals))
	for u := range subtotals {
		users = append(users, u)
	}
	sort.Strings(users)

	var subtotal int64
	for _, u := range users {
		if subtotals[u] < 0 {
			return nil, fmt.Errorf("%w: subtotal %d for %s must not be negative", models.ErrInvalidAmount, subtotals[u], u)
		}
		subtotal += subtotals[u]
	}

	finalTotal, err := Resolve(dt, value, adjustment, subtotal)
	if err != nil {
		return nil, err
	}

	dues := make(map[string]int64, len(users))
	if subtotal == 0 {
		// No items means no charge, even when an adjustment is set.
		for _, u := range users {
			dues[u] = 0
		}
		return &Settlement{Subtotal: 0, FinalTotal: finalTotal, Dues: dues}, nil
	}

	target := finalTotal
	if target < 0 {
		target = 0
	}

	shares := make([]int64, len(users))
	for i, u := range users {
		shares[i] = subtotals[u]
	}

	amounts, err := money.DistributeRemainder(target, shares)
	if err != nil {
		return nil, fmt.Errorf("distributing %d across %d participants: %w", target, len(users), err)
	}
	for i, u := range users {
		dues[u] = amounts[i]
	}

	return &Settlement{Subtotal: subtotal, FinalTotal: finalTotal, Dues: dues}, nil
}
