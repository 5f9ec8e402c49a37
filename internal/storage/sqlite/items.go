package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// GetItem retrieves a line item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID int64) (*models.LineItem, error) {
	item := &models.LineItem{}
	err := s.db.QueryRowContext(ctx,
		`SELECT item_id, order_id, user_id, name, unit_price, qty, note, created_at, created_by
		 FROM line_items WHERE item_id = ?`,
		itemID,
	).Scan(&item.ID, &item.OrderID, &item.UserID, &item.Name, &item.UnitPrice,
		&item.Qty, &item.Note, &item.CreatedAt, &item.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns an order's line items ordered by user then item ID.
func (s *SQLiteStore) ListItems(ctx context.Context, orderID int64) ([]models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, order_id, user_id, name, unit_price, qty, note, created_at, created_by
		 FROM line_items WHERE order_id = ? ORDER BY user_id, item_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.UserID, &item.Name,
			&item.UnitPrice, &item.Qty, &item.Note, &item.CreatedAt, &item.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// SubtotalsByUser sums unit_price*qty per user for an order.
func (s *SQLiteStore) SubtotalsByUser(ctx context.Context, orderID int64) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, SUM(unit_price * qty) FROM line_items WHERE order_id = ? GROUP BY user_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtotals: %w", err)
	}
	defer rows.Close()
	return scanSubtotals(rows)
}

func scanSubtotals(rows *sql.Rows) (map[string]int64, error) {
	subtotals := make(map[string]int64)
	for rows.Next() {
		var userID string
		var subtotal int64
		if err := rows.Scan(&userID, &subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan subtotal: %w", err)
		}
		subtotals[userID] = subtotal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subtotals: %w", err)
	}
	return subtotals, nil
}
