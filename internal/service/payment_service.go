package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabkeeper/tabkeeper/internal/calculator"
	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/storage"
)

// PaymentService tracks who has paid whom once an order is locked.
// Payments are all-or-nothing per participant; partial payments are not
// supported.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a PaymentService with the given storage
// backend.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// MarkPaid records that userID paid their due. Payments are only
// meaningful once dues are frozen, so the order must be locked. paidTo
// defaults to the order's payer. The due itself is untouched.
func (s *PaymentService) MarkPaid(ctx context.Context, orderID int64, userID, paidTo, actorID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", models.ErrInvalidInput)
	}

	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		order := tx.Order()
		if order.Status != models.StatusLocked {
			return fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrOrderNotLocked)
		}
		if paidTo == "" {
			paidTo = order.PayerID
		}
		return tx.SetPaid(userID, true, time.Now().Unix(), paidTo)
	})
	if err != nil {
		slog.Warn("MarkPaid rejected", "order_id", orderID, "user_id", userID, "actor_id", actorID, "error", err)
		return err
	}

	paymentsTotal.Inc()
	slog.Info("Payment recorded", "order_id", orderID, "user_id", userID, "paid_to", paidTo, "actor_id", actorID)
	return nil
}

// MarkUnpaid reverses a mistaken MarkPaid. Legal any time the order is
// locked.
func (s *PaymentService) MarkUnpaid(ctx context.Context, orderID int64, userID, actorID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", models.ErrInvalidInput)
	}

	err := s.store.WithOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		order := tx.Order()
		if order.Status != models.StatusLocked {
			return fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrOrderNotLocked)
		}
		return tx.SetPaid(userID, false, 0, "")
	})
	if err != nil {
		slog.Warn("MarkUnpaid rejected", "order_id", orderID, "user_id", userID, "actor_id", actorID, "error", err)
		return err
	}

	slog.Info("Payment reversed", "order_id", orderID, "user_id", userID, "actor_id", actorID)
	return nil
}

// AllSettled reports whether every participant on the order has paid.
func (s *PaymentService) AllSettled(ctx context.Context, orderID int64) (bool, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return false, err
	}
	participants, err := s.store.ListParticipants(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, p := range participants {
		if !p.Paid {
			return false, nil
		}
	}
	return true, nil
}

// UserDebt reports a user's outstanding dues across all non-cancelled
// orders, with one aggregated edge per creditor owed.
func (s *PaymentService) UserDebt(ctx context.Context, userID string) (*models.DebtReport, error) {
	entries, err := s.store.UnpaidDues(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, owes := calculator.OutstandingBalances(entries)
	return &models.DebtReport{
		UserID:    userID,
		TotalDebt: total,
		Details:   entries,
		Owes:      owes,
	}, nil
}

// UserOverview is the personal dashboard: unpaid dues, recently paid
// dues and orders the user opened.
func (s *PaymentService) UserOverview(ctx context.Context, userID string, limit int) (*models.Overview, error) {
	if limit <= 0 {
		limit = 10
	}

	unpaid, err := s.store.UnpaidDues(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(unpaid) > limit {
		unpaid = unpaid[:limit]
	}

	paid, err := s.store.PaidRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	mine, err := s.store.CreatedOrders(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return &models.Overview{
		UserID:     userID,
		Unpaid:     unpaid,
		PaidRecent: paid,
		MyOrders:   mine,
	}, nil
}
