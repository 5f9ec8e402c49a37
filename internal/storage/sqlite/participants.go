package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// ListParticipants returns an order's participant rows ordered by user ID.
func (s *SQLiteStore) ListParticipants(ctx context.Context, orderID int64) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, user_id, total_due, paid, paid_at, paid_to
		 FROM participants WHERE order_id = ? ORDER BY user_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	var paid int
	var paidAt sql.NullInt64
	var paidTo sql.NullString
	if err := row.Scan(&p.OrderID, &p.UserID, &p.TotalDue, &paid, &paidAt, &paidTo); err != nil {
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	p.Paid = paid != 0
	if paidAt.Valid {
		p.PaidAt = paidAt.Int64
	}
	if paidTo.Valid {
		p.PaidTo = paidTo.String
	}
	return p, nil
}

const dueQuery = `
SELECT o.order_id, o.vendor, o.created_at, o.payer_id, p.total_due, COALESCE(p.paid_at, 0)
FROM participants p
JOIN orders o ON o.order_id = p.order_id
WHERE p.user_id = ? AND o.status != 'cancelled'`

// UnpaidDues returns a user's unpaid dues on non-cancelled orders, most
// recent first.
func (s *SQLiteStore) UnpaidDues(ctx context.Context, userID string) ([]models.DebtEntry, error) {
	return s.queryDues(ctx,
		dueQuery+` AND p.paid = 0 ORDER BY o.created_at DESC, o.order_id DESC`,
		userID,
	)
}

// PaidRecent returns a user's most recently paid dues on non-cancelled
// orders.
func (s *SQLiteStore) PaidRecent(ctx context.Context, userID string, limit int) ([]models.DebtEntry, error) {
	return s.queryDues(ctx,
		dueQuery+` AND p.paid = 1 ORDER BY p.paid_at DESC, o.created_at DESC LIMIT ?`,
		userID, limit,
	)
}

func (s *SQLiteStore) queryDues(ctx context.Context, query string, args ...any) ([]models.DebtEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dues: %w", err)
	}
	defer rows.Close()

	var entries []models.DebtEntry
	for rows.Next() {
		var e models.DebtEntry
		if err := rows.Scan(&e.OrderID, &e.Vendor, &e.CreatedAt, &e.PayerID, &e.Amount, &e.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan due: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dues: %w", err)
	}
	return entries, nil
}
