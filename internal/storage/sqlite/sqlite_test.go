package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tabkeeper-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestOrder(t *testing.T, store *SQLiteStore, vendor, creator string) *models.Order {
	t.Helper()
	order := &models.Order{Vendor: vendor, CreatorID: creator}
	if err := store.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return order
}

func addTestItem(t *testing.T, store *SQLiteStore, orderID int64, userID string, price, qty int64) *models.LineItem {
	t.Helper()
	item := &models.LineItem{UserID: userID, Name: "item", UnitPrice: price, Qty: qty, CreatedBy: userID}
	err := store.WithOrderTx(context.Background(), orderID, func(tx storage.OrderTx) error {
		return tx.InsertItem(item)
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	return item
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateOrder fills defaults", func(t *testing.T) {
		order := createTestOrder(t, store, "Pizza Palace", "alice")

		if order.ID == 0 {
			t.Error("Expected order ID to be assigned")
		}
		if order.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if order.PayerID != "alice" {
			t.Errorf("PayerID = %q, want creator default", order.PayerID)
		}
		if order.Status != models.StatusOpen {
			t.Errorf("Status = %q, want open", order.Status)
		}
		if order.DiscountType != models.DiscountNone {
			t.Errorf("DiscountType = %q, want none", order.DiscountType)
		}
	})

	t.Run("GetOrder round-trips fields", func(t *testing.T) {
		created := createTestOrder(t, store, "Noodle Bar", "bob")

		got, err := store.GetOrder(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if !reflect.DeepEqual(got, created) {
			t.Errorf("GetOrder = %+v, want %+v", got, created)
		}
	})

	t.Run("GetOrder missing is ErrNotFound", func(t *testing.T) {
		if _, err := store.GetOrder(ctx, 999999); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("WithOrderTx missing order is ErrNotFound", func(t *testing.T) {
		err := store.WithOrderTx(ctx, 999999, func(tx storage.OrderTx) error { return nil })
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("items and subtotals", func(t *testing.T) {
		order := createTestOrder(t, store, "Sushi Go", "alice")
		addTestItem(t, store, order.ID, "alice", 100, 2)
		addTestItem(t, store, order.ID, "bob", 50, 1)
		addTestItem(t, store, order.ID, "alice", 30, 1)

		subtotals, err := store.SubtotalsByUser(ctx, order.ID)
		if err != nil {
			t.Fatalf("SubtotalsByUser failed: %v", err)
		}
		want := map[string]int64{"alice": 230, "bob": 50}
		if !reflect.DeepEqual(subtotals, want) {
			t.Errorf("subtotals = %v, want %v", subtotals, want)
		}

		items, err := store.ListItems(ctx, order.ID)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("got %d items, want 3", len(items))
		}
		// Ordered by user then item ID.
		if items[0].UserID != "alice" || items[2].UserID != "bob" {
			t.Errorf("unexpected item ordering: %+v", items)
		}
	})

	t.Run("delete item scoped to order", func(t *testing.T) {
		order := createTestOrder(t, store, "Curry House", "alice")
		other := createTestOrder(t, store, "Curry House 2", "alice")
		item := addTestItem(t, store, order.ID, "alice", 100, 1)

		// Wrong order scope must not delete.
		err := store.WithOrderTx(ctx, other.ID, func(tx storage.OrderTx) error {
			return tx.DeleteItem(item.ID)
		})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("cross-order delete error = %v, want ErrNotFound", err)
		}

		err = store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.DeleteItem(item.ID)
		})
		if err != nil {
			t.Fatalf("DeleteItem failed: %v", err)
		}

		if _, err := store.GetItem(ctx, item.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("GetItem after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ReplaceDues preserves payment fields and drops stale rows", func(t *testing.T) {
		order := createTestOrder(t, store, "Taco Stand", "alice")

		err := store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.ReplaceDues(map[string]int64{"alice": 90, "bob": 45})
		})
		if err != nil {
			t.Fatalf("ReplaceDues failed: %v", err)
		}

		// Lock so payments are recordable, then pay bob.
		err = store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			if err := tx.SetStatus(models.StatusLocked); err != nil {
				return err
			}
			return tx.SetPaid("bob", true, 1700000000, "alice")
		})
		if err != nil {
			t.Fatalf("SetPaid failed: %v", err)
		}

		// Recompute with bob surviving and alice's due changed; carol
		// joins, and a hypothetical stale user would be removed.
		err = store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.ReplaceDues(map[string]int64{"alice": 80, "bob": 45, "carol": 10})
		})
		if err != nil {
			t.Fatalf("ReplaceDues failed: %v", err)
		}

		participants, err := store.ListParticipants(ctx, order.ID)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(participants) != 3 {
			t.Fatalf("got %d participants, want 3", len(participants))
		}
		byUser := make(map[string]models.Participant)
		for _, p := range participants {
			byUser[p.UserID] = p
		}
		if byUser["alice"].TotalDue != 80 || byUser["alice"].Paid {
			t.Errorf("alice = %+v, want due 80 unpaid", byUser["alice"])
		}
		bob := byUser["bob"]
		if !bob.Paid || bob.PaidAt != 1700000000 || bob.PaidTo != "alice" {
			t.Errorf("bob = %+v, payment fields should survive recomputation", bob)
		}

		err = store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.ReplaceDues(map[string]int64{"alice": 80})
		})
		if err != nil {
			t.Fatalf("ReplaceDues failed: %v", err)
		}
		participants, _ = store.ListParticipants(ctx, order.ID)
		if len(participants) != 1 || participants[0].UserID != "alice" {
			t.Errorf("stale participants should be dropped, got %+v", participants)
		}
	})

	t.Run("SetPaid without participant row is ErrNotFound", func(t *testing.T) {
		order := createTestOrder(t, store, "Banh Mi", "alice")
		err := store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.SetPaid("ghost", true, 1, "alice")
		})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestWithOrderTxSerializesConcurrentWriters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	order := createTestOrder(t, store, "Ramen Spot", "alice")

	entered := make(chan struct{})
	release := make(chan struct{})

	first := make(chan error, 1)
	go func() {
		first <- store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			close(entered)
			<-release
			return tx.SetAdjustment(1)
		})
	}()
	<-entered

	// The second writer starts while the first holds the write lock; it
	// must queue behind it, not surface a busy error.
	second := make(chan error, 1)
	go func() {
		second <- store.WithOrderTx(ctx, order.ID, func(tx storage.OrderTx) error {
			return tx.SetAdjustment(2)
		})
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	if err := <-first; err != nil {
		t.Fatalf("first writer failed: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second writer failed: %v", err)
	}

	got, err := store.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Adjustment != 2 {
		t.Errorf("adjustment = %d, want 2 (writers must apply in queue order)", got.Adjustment)
	}
}

func TestListAndSearchOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createTestOrder(t, store, "Pizza Palace", "alice")
	b := createTestOrder(t, store, "Noodle Bar", "bob")
	c := createTestOrder(t, store, "Pizza Roma", "alice")

	// Cancel one order; it must disappear from listings.
	err := store.WithOrderTx(ctx, b.ID, func(tx storage.OrderTx) error {
		return tx.SetStatus(models.StatusCancelled)
	})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	list, err := store.ListOrders(ctx, 10)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d orders, want 2 (cancelled excluded): %+v", len(list), list)
	}
	if list[0].ID != c.ID || list[1].ID != a.ID {
		t.Errorf("expected newest first, got %+v", list)
	}

	found, err := store.SearchOrders(ctx, "Pizza", 10)
	if err != nil {
		t.Fatalf("SearchOrders failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("search Pizza returned %d orders, want 2", len(found))
	}

	found, err = store.SearchOrders(ctx, "Noodle", 10)
	if err != nil {
		t.Fatalf("SearchOrders failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("cancelled orders must not be searchable, got %+v", found)
	}
}

func TestDebtQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	locked := createTestOrder(t, store, "Sushi Go", "alice")
	cancelled := createTestOrder(t, store, "Kebab King", "alice")

	for _, o := range []*models.Order{locked, cancelled} {
		err := store.WithOrderTx(ctx, o.ID, func(tx storage.OrderTx) error {
			return tx.ReplaceDues(map[string]int64{"bob": 120})
		})
		if err != nil {
			t.Fatalf("ReplaceDues failed: %v", err)
		}
	}
	err := store.WithOrderTx(ctx, locked.ID, func(tx storage.OrderTx) error {
		return tx.SetStatus(models.StatusLocked)
	})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	err = store.WithOrderTx(ctx, cancelled.ID, func(tx storage.OrderTx) error {
		return tx.SetStatus(models.StatusCancelled)
	})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	unpaid, err := store.UnpaidDues(ctx, "bob")
	if err != nil {
		t.Fatalf("UnpaidDues failed: %v", err)
	}
	if len(unpaid) != 1 || unpaid[0].OrderID != locked.ID || unpaid[0].Amount != 120 {
		t.Errorf("unpaid = %+v, want single 120 due on the locked order", unpaid)
	}

	err = store.WithOrderTx(ctx, locked.ID, func(tx storage.OrderTx) error {
		return tx.SetPaid("bob", true, 1700000000, "alice")
	})
	if err != nil {
		t.Fatalf("SetPaid failed: %v", err)
	}

	unpaid, _ = store.UnpaidDues(ctx, "bob")
	if len(unpaid) != 0 {
		t.Errorf("unpaid after payment = %+v, want empty", unpaid)
	}

	paid, err := store.PaidRecent(ctx, "bob", 5)
	if err != nil {
		t.Fatalf("PaidRecent failed: %v", err)
	}
	if len(paid) != 1 || paid[0].PaidAt != 1700000000 {
		t.Errorf("paid = %+v, want single entry with paid_at set", paid)
	}

	mine, err := store.CreatedOrders(ctx, "alice", 5)
	if err != nil {
		t.Fatalf("CreatedOrders failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != locked.ID {
		t.Errorf("created orders = %+v, want only the non-cancelled one", mine)
	}
	if mine[0].TotalDue != 120 || mine[0].Participants != 1 {
		t.Errorf("summary aggregates = %+v, want total 120 over 1 participant", mine[0])
	}
}
