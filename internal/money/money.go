// Package money implements the fixed-point currency arithmetic used by
// every settlement computation. Amounts are integer minor units; the
// rounding policy for fractional results is round-half-up and is part of
// the engine's observable contract.
package money

import (
	"fmt"
	"sort"

	"github.com/govalues/decimal"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// MultiplyByFraction returns amount scaled by fraction, rounded half-up
// to a whole minor unit: exactly half a unit always rounds up. The
// product is computed exactly via decimal arithmetic, so float noise in
// the fraction cannot shift the result across the half-unit boundary.
//
// amount must be >= 0 and fraction must be a finite value >= 0;
// violations return ErrInvalidAmount.
func MultiplyByFraction(amount int64, fraction float64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: amount %d must not be negative", models.ErrInvalidAmount, amount)
	}

	f, err := decimal.NewFromFloat64(fraction)
	if err != nil {
		return 0, fmt.Errorf("%w: fraction %v: %v", models.ErrInvalidAmount, fraction, err)
	}
	if f.IsNeg() {
		return 0, fmt.Errorf("%w: fraction %v must not be negative", models.ErrInvalidAmount, fraction)
	}

	a, err := decimal.New(amount, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %d: %v", models.ErrInvalidAmount, amount, err)
	}

	prod, err := a.Mul(f)
	if err != nil {
		return 0, fmt.Errorf("multiplying %d by %v: %w", amount, fraction, err)
	}

	// Round half up: floor(x + 0.5). Safe because the product is never
	// negative here.
	half := decimal.MustNew(5, 1)
	shifted, err := prod.Add(half)
	if err != nil {
		return 0, fmt.Errorf("rounding product of %d and %v: %w", amount, fraction, err)
	}

	whole, _, ok := shifted.Floor(0).Int64(0)
	if !ok {
		return 0, fmt.Errorf("%w: product of %d and %v overflows", models.ErrInvalidAmount, amount, fraction)
	}
	return whole, nil
}

// DistributeRemainder divides total across shares proportionally to each
// share's weight, guaranteeing the results sum to total exactly. Whole
// units are assigned by flooring each proportional share; the leftover
// units go to the largest-remainder shares first (ties to the lower
// index). This largest-remainder apportionment is the documented contract
// for how rounding error is spread across participants.
//
// total and every share must be >= 0. A zero weight sum is only valid
// when total is zero. Violations return ErrInvalidAmount.
func DistributeRemainder(total int64, shares []int64) ([]int64, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: total %d must not be negative", models.ErrInvalidAmount, total)
	}

	var weightSum int64
	for i, s := range shares {
		if s < 0 {
			return nil, fmt.Errorf("%w: share %d at index %d must not be negative", models.ErrInvalidAmount, s, i)
		}
		weightSum += s
	}

	out := make([]int64, len(shares))
	if weightSum == 0 {
		if total == 0 {
			return out, nil
		}
		return nil, fmt.Errorf("%w: cannot distribute %d across zero-weight shares", models.ErrInvalidAmount, total)
	}

	type leftover struct {
		idx int
		rem int64
	}
	rems := make([]leftover, len(shares))

	var assigned int64
	for i, s := range shares {
		out[i] = total * s / weightSum
		rems[i] = leftover{idx: i, rem: total * s % weightSum}
		assigned += out[i]
	}

	sort.Slice(rems, func(a, b int) bool {
		if rems[a].rem != rems[b].rem {
			return rems[a].rem > rems[b].rem
		}
		return rems[a].idx < rems[b].idx
	})

	// Fewer leftover units than shares with a nonzero remainder, so this
	// never runs past the slice.
	for i := 0; assigned < total; i++ {
		out[rems[i].idx]++
		assigned++
	}

	return out, nil
}
