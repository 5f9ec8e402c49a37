package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabkeeper/tabkeeper/internal/calculator"
	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// OrderService owns the order lifecycle: creation, discount and
// adjustment configuration, the open -> locked and open -> cancelled
// transitions, and the assembled bill view.
type OrderService struct {
	store storage.Store
}

// NewOrderService creates an OrderService with the given storage backend.
func NewOrderService(store storage.Store) *OrderService {
	return &OrderService{store: store}
}

// CreateOrder opens a new order with status open. payerID defaults to
// the creator when empty.
func (s *OrderService) CreateOrder(ctx context.Context, vendor, note, creatorID, payerID string) (*models.Order, error) {
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", models.ErrInvalidInput)
	}
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator_id is required", models.ErrInvalidInput)
	}

	order := &models.Order{
		Vendor:    vendor,
		Note:      note,
		CreatorID: creatorID,
		PayerID:   payerID,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		slog.Error("CreateOrder failed", "vendor", vendor, "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.Info("Order opened", "order_id", order.ID, "vendor", vendor, "creator_id", creatorID, "payer_id", order.PayerID)
	return order, nil
}

// SetDiscount configures the order-wide discount and recomputes dues.
// Only the creator may change it, and only while the order is open.
// Out-of-range values (percent outside (0,1], negative or fractional
// amounts) are rejected with ErrInvalidDiscount before anything is
// written.
func (s *OrderService) SetDiscount(ctx context.Context, orderID int64, dt models.DiscountType, value float64, actorID string) (*calculator.Settlement, error) {
	if err := calculator.ValidateDiscount(dt, value); err != nil {
		return nil, err
	}

	var settlement *calculator.Settlement
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if err := requireCreator(tx.Order(), actorID); err != nil {
			return err
		}
		if err := tx.SetDiscount(dt, value); err != nil {
			return err
		}
		var err error
		settlement, err = settleOrder(tx)
		return err
	})
	if err != nil {
		slog.Warn("SetDiscount rejected", "order_id", orderID, "type", dt, "value", value, "actor_id", actorID, "error", err)
		return nil, err
	}

	slog.Info("Discount updated", "order_id", orderID, "type", dt, "value", value, "final_total", settlement.FinalTotal)
	return settlement, nil
}

// SetAdjustment sets the flat signed correction applied after the
// discount and recomputes dues. Creator-only, open orders only.
func (s *OrderService) SetAdjustment(ctx context.Context, orderID, adjustment int64, actorID string) (*calculator.Settlement, error) {
	var settlement *calculator.Settlement
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if err := requireCreator(tx.Order(), actorID); err != nil {
			return err
		}
		if err := tx.SetAdjustment(adjustment); err != nil {
			return err
		}
		var err error
		settlement, err = settleOrder(tx)
		return err
	})
	if err != nil {
		slog.Warn("SetAdjustment rejected", "order_id", orderID, "adjustment", adjustment, "actor_id", actorID, "error", err)
		return nil, err
	}

	slog.Info("Adjustment updated", "order_id", orderID, "adjustment", adjustment, "final_total", settlement.FinalTotal)
	return settlement, nil
}

// Lock freezes the order for payment collection: it settles the order
// one final time and sets status locked. Only legal from open, and only
// for the creator. Locked is terminal; there is no reopen.
func (s *OrderService) Lock(ctx context.Context, orderID int64, actorID string) (*calculator.Settlement, error) {
	var settlement *calculator.Settlement
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if err := requireCreator(tx.Order(), actorID); err != nil {
			return err
		}
		var err error
		settlement, err = settleOrder(tx)
		if err != nil {
			return err
		}
		return tx.SetStatus(models.StatusLocked)
	})
	if err != nil {
		slog.Warn("Lock rejected", "order_id", orderID, "actor_id", actorID, "error", err)
		return nil, err
	}

	slog.Info("Order locked", "order_id", orderID, "final_total", settlement.FinalTotal, "participants", len(settlement.Dues))
	return settlement, nil
}

// Cancel voids the order. Only legal from open, and only for the
// creator. Dues on a cancelled order are void: they drop out of debt
// reports but the rows are kept for audit. Cancelled is terminal.
func (s *OrderService) Cancel(ctx context.Context, orderID int64, actorID string) error {
	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		if err := requireOpen(tx.Order()); err != nil {
			return err
		}
		if err := requireCreator(tx.Order(), actorID); err != nil {
			return err
		}
		return tx.SetStatus(models.StatusCancelled)
	})
	if err != nil {
		slog.Warn("Cancel rejected", "order_id", orderID, "actor_id", actorID, "error", err)
		return err
	}

	slog.Info("Order cancelled", "order_id", orderID, "actor_id", actorID)
	return nil
}

// GetBill assembles the full view of one order: metadata plus every
// participant's items, raw subtotal, due and payment state.
func (s *OrderService) GetBill(ctx context.Context, orderID int64) (*models.Bill, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, orderID)
	if err != nil {
		return nil, err
	}

	itemsByUser := make(map[string][]models.LineItem)
	subtotals := make(map[string]int64)
	for _, item := range items {
		itemsByUser[item.UserID] = append(itemsByUser[item.UserID], item)
		subtotals[item.UserID] += item.Subtotal()
	}

	bill := &models.Bill{Order: *order}
	for _, p := range participants {
		bill.Participants = append(bill.Participants, models.BillParticipant{
			UserID:   p.UserID,
			Subtotal: subtotals[p.UserID],
			TotalDue: p.TotalDue,
			Paid:     p.Paid,
			PaidAt:   p.PaidAt,
			PaidTo:   p.PaidTo,
			Items:    itemsByUser[p.UserID],
		})
	}
	return bill, nil
}

// ListOrders returns the most recent non-cancelled orders for pickers.
func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]models.OrderSummary, error) {
	if limit <= 0 {
		limit = 25
	}
	return s.store.ListOrders(ctx, limit)
}

// SearchOrders filters recent non-cancelled orders by keyword against
// order ID and vendor, for autocomplete.
func (s *OrderService) SearchOrders(ctx context.Context, keyword string, limit int) ([]models.OrderSummary, error) {
	if limit <= 0 {
		limit = 25
	}
	return s.store.SearchOrders(ctx, keyword, limit)
}
