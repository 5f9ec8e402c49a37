package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// Ensure orderTx implements storage.OrderTx
var _ storage.OrderTx = (*orderTx)(nil)

// orderTx is the per-order transaction scope. All mutations of one order
// go through a single instance, so the items read and the dues written
// belong to the same snapshot.
type orderTx struct {
	ctx   context.Context
	tx    *sql.Tx
	order *models.Order
}

// Order returns the snapshot of the scoped order.
func (t *orderTx) Order() *models.Order {
	return t.order
}

// InsertItem inserts a line item and populates its ID.
func (t *orderTx) InsertItem(item *models.LineItem) error {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	item.OrderID = t.order.ID

	res, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO line_items (order_id, user_id, name, unit_price, qty, note, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.OrderID, item.UserID, item.Name, item.UnitPrice, item.Qty,
		item.Note, item.CreatedAt, item.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read item id: %w", err)
	}
	item.ID = id
	return nil
}

// DeleteItem removes a line item belonging to the scoped order.
func (t *orderTx) DeleteItem(itemID int64) error {
	res, err := t.tx.ExecContext(t.ctx,
		"DELETE FROM line_items WHERE item_id = ? AND order_id = ?",
		itemID, t.order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
	}
	return nil
}

// SubtotalsByUser sums unit_price*qty per user within the transaction.
func (t *orderTx) SubtotalsByUser() (map[string]int64, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT user_id, SUM(unit_price * qty) FROM line_items WHERE order_id = ? GROUP BY user_id",
		t.order.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtotals: %w", err)
	}
	defer rows.Close()
	return scanSubtotals(rows)
}

// ReplaceDues upserts a participant row per user with the given
// total_due, preserving payment fields on existing rows, and removes
// rows for users no longer carrying any items.
func (t *orderTx) ReplaceDues(dues map[string]int64) error {
	for userID, due := range dues {
		_, err := t.tx.ExecContext(t.ctx,
			`INSERT INTO participants (order_id, user_id, total_due, paid, paid_at, paid_to)
			 VALUES (?, ?, ?, 0, NULL, NULL)
			 ON CONFLICT(order_id, user_id)
			 DO UPDATE SET total_due = excluded.total_due`,
			t.order.ID, userID, due,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert due for %s: %w", userID, err)
		}
	}

	if len(dues) == 0 {
		_, err := t.tx.ExecContext(t.ctx,
			"DELETE FROM participants WHERE order_id = ?", t.order.ID)
		if err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		return nil
	}

	// Drop rows for users whose last item was removed.
	placeholders := make([]string, 0, len(dues))
	args := make([]any, 0, len(dues)+1)
	args = append(args, t.order.ID)
	for userID := range dues {
		placeholders = append(placeholders, "?")
		args = append(args, userID)
	}
	_, err := t.tx.ExecContext(t.ctx,
		fmt.Sprintf("DELETE FROM participants WHERE order_id = ? AND user_id NOT IN (%s)",
			strings.Join(placeholders, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to remove stale participants: %w", err)
	}
	return nil
}

// SetStatus updates the order's lifecycle status.
func (t *orderTx) SetStatus(status models.OrderStatus) error {
	_, err := t.tx.ExecContext(t.ctx,
		"UPDATE orders SET status = ? WHERE order_id = ?",
		string(status), t.order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	t.order.Status = status
	return nil
}

// SetDiscount updates the order's discount configuration.
func (t *orderTx) SetDiscount(dt models.DiscountType, value float64) error {
	_, err := t.tx.ExecContext(t.ctx,
		"UPDATE orders SET discount_type = ?, discount_value = ? WHERE order_id = ?",
		string(dt), value, t.order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}
	t.order.DiscountType = dt
	t.order.DiscountValue = value
	return nil
}

// SetAdjustment updates the order's flat adjustment.
func (t *orderTx) SetAdjustment(adjustment int64) error {
	_, err := t.tx.ExecContext(t.ctx,
		"UPDATE orders SET adjustment = ? WHERE order_id = ?",
		adjustment, t.order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update adjustment: %w", err)
	}
	t.order.Adjustment = adjustment
	return nil
}

// SetPaid updates one participant's payment fields.
func (t *orderTx) SetPaid(userID string, paid bool, paidAt int64, paidTo string) error {
	var paidVal int
	var paidAtVal, paidToVal any
	if paid {
		paidVal = 1
		paidAtVal = paidAt
		paidToVal = paidTo
	}

	res, err := t.tx.ExecContext(t.ctx,
		"UPDATE participants SET paid = ?, paid_at = ?, paid_to = ? WHERE order_id = ? AND user_id = ?",
		paidVal, paidAtVal, paidToVal, t.order.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read payment update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %s: %w", userID, models.ErrNotFound)
	}
	return nil
}
