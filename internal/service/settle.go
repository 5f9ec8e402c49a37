// Package service implements the ledger's business operations on top of
// the storage layer: order lifecycle, line item mutations, settlement and
// payment tracking. Every mutating operation runs inside a per-order
// transaction scope so dues are always computed from a consistent
// snapshot of the order's items.
package service

import (
	"fmt"

	"github.com/tabkeeper/tabkeeper/internal/calculator"
	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// settleOrder recomputes the scoped order's dues from its current line
// items and persists them, preserving the payment fields of surviving
// participants. Calling it twice with no intervening mutation writes
// identical dues.
func settleOrder(tx storage.OrderTx) (*calculator.Settlement, error) {
	order := tx.Order()

	subtotals, err := tx.SubtotalsByUser()
	if err != nil {
		return nil, fmt.Errorf("reading subtotals for order %d: %w", order.ID, err)
	}

	settlement, err := calculator.ComputeDues(subtotals, order.DiscountType, order.DiscountValue, order.Adjustment)
	if err != nil {
		return nil, fmt.Errorf("settling order %d: %w", order.ID, err)
	}

	if err := tx.ReplaceDues(settlement.Dues); err != nil {
		return nil, fmt.Errorf("persisting dues for order %d: %w", order.ID, err)
	}

	settlementsTotal.Inc()
	return settlement, nil
}

// requireOpen gates mutations on the order still being open.
func requireOpen(order *models.Order) error {
	if order.Status != models.StatusOpen {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.Status, models.ErrOrderNotOpen)
	}
	return nil
}

// requireCreator gates creator-only operations.
func requireCreator(order *models.Order, actorID string) error {
	if order.CreatorID != actorID {
		return fmt.Errorf("order %d belongs to %s: %w", order.ID, order.CreatorID, models.ErrForbidden)
	}
	return nil
}
