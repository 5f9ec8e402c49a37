package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// CreateOrder persists a new order and populates its ID and CreatedAt.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.CreatedAt == 0 {
		order.CreatedAt = time.Now().Unix()
	}
	if order.PayerID == "" {
		order.PayerID = order.CreatorID
	}
	if order.DiscountType == "" {
		order.DiscountType = models.DiscountNone
	}
	if order.Status == "" {
		order.Status = models.StatusOpen
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (created_at, vendor, note, creator_id, payer_id, discount_type, discount_value, adjustment, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.CreatedAt, order.Vendor, order.Note, order.CreatorID, order.PayerID,
		string(order.DiscountType), order.DiscountValue, order.Adjustment, string(order.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read order id: %w", err)
	}
	order.ID = id
	return nil
}

// GetOrder retrieves an order by ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return scanOrder(s.db.QueryRowContext(ctx,
		"SELECT order_id, created_at, vendor, note, creator_id, payer_id, discount_type, discount_value, adjustment, status FROM orders WHERE order_id = ?",
		orderID,
	))
}

const summaryQuery = `
SELECT o.order_id, o.vendor, o.created_at, o.status, o.creator_id, o.payer_id,
       o.discount_type, o.discount_value,
       (SELECT COUNT(*) FROM participants p WHERE p.order_id = o.order_id),
       (SELECT COALESCE(SUM(p.total_due), 0) FROM participants p WHERE p.order_id = o.order_id)
FROM orders o`

func (s *SQLiteStore) querySummaries(ctx context.Context, query string, args ...any) ([]models.OrderSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var summaries []models.OrderSummary
	for rows.Next() {
		var o models.OrderSummary
		var dt, status string
		if err := rows.Scan(&o.ID, &o.Vendor, &o.CreatedAt, &status, &o.CreatorID,
			&o.PayerID, &dt, &o.DiscountValue, &o.Participants, &o.TotalDue); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		o.DiscountType = models.DiscountType(dt)
		o.Status = models.OrderStatus(status)
		summaries = append(summaries, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return summaries, nil
}

// ListOrders returns the most recent non-cancelled orders.
func (s *SQLiteStore) ListOrders(ctx context.Context, limit int) ([]models.OrderSummary, error) {
	return s.querySummaries(ctx,
		summaryQuery+` WHERE o.status != 'cancelled' ORDER BY o.order_id DESC LIMIT ?`,
		limit,
	)
}

// SearchOrders filters non-cancelled orders by keyword against the order
// ID and vendor.
func (s *SQLiteStore) SearchOrders(ctx context.Context, keyword string, limit int) ([]models.OrderSummary, error) {
	kw := "%" + keyword + "%"
	return s.querySummaries(ctx,
		summaryQuery+` WHERE o.status != 'cancelled'
		   AND (CAST(o.order_id AS TEXT) LIKE ? OR o.vendor LIKE ?)
		 ORDER BY o.order_id DESC LIMIT ?`,
		kw, kw, limit,
	)
}

// CreatedOrders returns the non-cancelled orders a user opened, most
// recent first.
func (s *SQLiteStore) CreatedOrders(ctx context.Context, userID string, limit int) ([]models.OrderSummary, error) {
	return s.querySummaries(ctx,
		summaryQuery+` WHERE o.creator_id = ? AND o.status != 'cancelled'
		 ORDER BY o.created_at DESC, o.order_id DESC LIMIT ?`,
		userID, limit,
	)
}
