// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// Store defines the interface for ledger storage operations. The
// abstraction allows swapping storage backends without changing the
// service layer.
//
// Reads outside a transaction observe the latest committed state. Every
// mutating operation must go through WithOrderTx so that reading the
// line items and writing the recomputed dues happen against a single
// consistent snapshot.
type Store interface {
	// CreateOrder persists a new order and populates its ID and
	// CreatedAt.
	CreateOrder(ctx context.Context, order *models.Order) error

	// GetOrder retrieves an order by ID. Returns ErrNotFound if absent.
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)

	// GetItem retrieves a line item by ID. Returns ErrNotFound if absent.
	GetItem(ctx context.Context, itemID int64) (*models.LineItem, error)

	// ListItems returns an order's line items ordered by user then item
	// ID, matching the bill layout.
	ListItems(ctx context.Context, orderID int64) ([]models.LineItem, error)

	// ListParticipants returns an order's participant rows ordered by
	// user ID.
	ListParticipants(ctx context.Context, orderID int64) ([]models.Participant, error)

	// SubtotalsByUser sums unit_price*qty per user for an order. Orders
	// with no items yield an empty map.
	SubtotalsByUser(ctx context.Context, orderID int64) (map[string]int64, error)

	// ListOrders returns the most recent non-cancelled orders.
	ListOrders(ctx context.Context, limit int) ([]models.OrderSummary, error)

	// SearchOrders filters non-cancelled orders by keyword against the
	// order ID and vendor.
	SearchOrders(ctx context.Context, keyword string, limit int) ([]models.OrderSummary, error)

	// UnpaidDues returns a user's unpaid dues on non-cancelled orders,
	// most recent first.
	UnpaidDues(ctx context.Context, userID string) ([]models.DebtEntry, error)

	// PaidRecent returns a user's most recently paid dues on
	// non-cancelled orders.
	PaidRecent(ctx context.Context, userID string, limit int) ([]models.DebtEntry, error)

	// CreatedOrders returns the non-cancelled orders a user opened, most
	// recent first.
	CreatedOrders(ctx context.Context, userID string, limit int) ([]models.OrderSummary, error)

	// WithOrderTx runs fn inside one transaction scoped to orderID. The
	// order row is loaded first and handed to fn as a snapshot; all
	// mutations on a given order serialize through this scope. Returns
	// ErrNotFound if the order does not exist. The transaction commits
	// iff fn returns nil.
	WithOrderTx(ctx context.Context, orderID int64, fn func(tx OrderTx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// OrderTx is the mutation surface available inside a per-order
// transaction. The Order snapshot is the row as of transaction start;
// lifecycle gates are checked against it.
type OrderTx interface {
	// Order returns the snapshot of the scoped order.
	Order() *models.Order

	// InsertItem inserts a line item and populates its ID.
	InsertItem(item *models.LineItem) error

	// DeleteItem removes a line item. Returns ErrNotFound if the item is
	// not part of the scoped order.
	DeleteItem(itemID int64) error

	// SubtotalsByUser sums unit_price*qty per user within the
	// transaction snapshot.
	SubtotalsByUser() (map[string]int64, error)

	// ReplaceDues upserts a participant row per user with the given
	// total_due, preserving paid/paid_at/paid_to on existing rows, and
	// deletes rows for users no longer present in the dues.
	ReplaceDues(dues map[string]int64) error

	// SetStatus updates the order's lifecycle status.
	SetStatus(status models.OrderStatus) error

	// SetDiscount updates the order's discount configuration.
	SetDiscount(dt models.DiscountType, value float64) error

	// SetAdjustment updates the order's flat adjustment.
	SetAdjustment(adjustment int64) error

	// SetPaid updates one participant's payment fields. Returns
	// ErrNotFound if no participant row exists for the user.
	SetPaid(userID string, paid bool, paidAt int64, paidTo string) error
}
