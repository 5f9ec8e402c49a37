// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It creates
// the parent directories and runs migrations automatically.
//
// WAL mode keeps readers off the writer's back. Transactions begin
// IMMEDIATE so a writer takes the write lock up front: a second writer
// on the same order blocks in BeginTx and is retried by busy_timeout
// instead of failing a deferred snapshot upgrade mid-transaction. The
// pragmas go through the DSN so every pooled connection gets them.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithOrderTx runs fn inside a single transaction scoped to one order.
// The order row is read first so fn works against a consistent snapshot;
// SQLite serializes writers, which gives the per-order serialization the
// engine requires (different orders still proceed in parallel under WAL).
func (s *SQLiteStore) WithOrderTx(ctx context.Context, orderID int64, fn func(tx storage.OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		"SELECT order_id, created_at, vendor, note, creator_id, payer_id, discount_type, discount_value, adjustment, status FROM orders WHERE order_id = ?",
		orderID,
	))
	if err != nil {
		return err
	}

	otx := &orderTx{ctx: ctx, tx: tx, order: order}
	if err := fn(otx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var dt, status string
	err := row.Scan(&order.ID, &order.CreatedAt, &order.Vendor, &order.Note,
		&order.CreatorID, &order.PayerID, &dt, &order.DiscountValue,
		&order.Adjustment, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	order.DiscountType = models.DiscountType(dt)
	order.Status = models.OrderStatus(status)
	return order, nil
}
