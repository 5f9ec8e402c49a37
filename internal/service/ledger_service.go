package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabkeeper/tabkeeper/internal/calculator"
	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// LedgerService owns the line item ledger: adding and removing items
// while the order is open, subtotal queries, and settlement previews.
// Every item mutation re-settles the order so total_due stays fresh.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// AddItem records a line item charged to userID and recomputes dues.
// actorID is stored as created_by (it differs from userID when someone
// orders on another's behalf) and defaults to userID when empty.
func (s *LedgerService) AddItem(ctx context.Context, orderID int64, userID, name string, unitPrice, qty int64, note, actorID string) (*models.LineItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", models.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", models.ErrInvalidInput)
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("%w: unit_price %d must be >= 0", models.ErrInvalidInput, unitPrice)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: qty %d must be > 0", models.ErrInvalidInput, qty)
	}
	if actorID == "" {
		actorID = userID
	}

	item := &models.LineItem{
		UserID:    userID,
		Name:      name,
		UnitPrice: unitPrice,
		Qty:       qty,
		Note:      note,
		CreatedBy: actorID,
	}
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if err := tx.InsertItem(item); err != nil {
			return err
		}
		_, err := settleOrder(tx)
		return err
	})
	if err != nil {
		slog.Warn("AddItem rejected", "order_id", orderID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Item added",
		"order_id", orderID,
		"item_id", item.ID,
		"user_id", userID,
		"name", name,
		"unit_price", unitPrice,
		"qty", qty,
		"created_by", actorID,
	)
	return item, nil
}

// RemoveItem deletes a line item and recomputes dues. The item's owner,
// whoever recorded it, and the order creator may remove it.
func (s *LedgerService) RemoveItem(ctx context.Context, itemID int64, actorID string) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	err = s.store.WithOrderTx(ctx, item.OrderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if actorID != item.UserID && actorID != item.CreatedBy && actorID != tx.Order().CreatorID {
			return fmt.Errorf("item %d is not yours to remove: %w", itemID, models.ErrForbidden)
		}
		if err := tx.DeleteItem(itemID); err != nil {
			return err
		}
		_, err := settleOrder(tx)
		return err
	})
	if err != nil {
		slog.Warn("RemoveItem rejected", "item_id", itemID, "actor_id", actorID, "error", err)
		return err
	}

	slog.Info("Item removed", "order_id", item.OrderID, "item_id", itemID, "actor_id", actorID)
	return nil
}

// SubtotalByParticipant sums unit_price*qty per user. The result does
// not depend on insertion order; an order with no items yields an empty
// map.
func (s *LedgerService) SubtotalByParticipant(ctx context.Context, orderID int64) (map[string]int64, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.SubtotalsByUser(ctx, orderID)
}

// OrderSubtotal sums all participant subtotals.
func (s *LedgerService) OrderSubtotal(ctx context.Context, orderID int64) (int64, error) {
	subtotals, err := s.SubtotalByParticipant(ctx, orderID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, subtotal := range subtotals {
		total += subtotal
	}
	return total, nil
}

// Settle recomputes and persists every participant's due. It may be
// called at any time while the order is open to preview dues; the lock
// transition runs it implicitly as its final recomputation.
func (s *LedgerService) Settle(ctx context.Context, orderID int64) (*calculator.Settlement, error) {
	var settlement *calculator.Settlement
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		var err error
		settlement, err = settleOrder(tx)
		return err
	})
	if err != nil {
		slog.Warn("Settle rejected", "order_id", orderID, "error", err)
		return nil, err
	}

	slog.Debug("Order settled",
		"order_id", orderID,
		"subtotal", settlement.Subtotal,
		"final_total", settlement.FinalTotal,
		"participants", len(settlement.Dues),
	)
	return settlement, nil
}
