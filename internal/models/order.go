package models

// OrderStatus is the lifecycle state of an order.
//
// Status only moves forward: open -> locked or open -> cancelled. Both
// locked and cancelled are terminal; there is no reopen. A correction to
// a locked order requires creating a new order.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusLocked    OrderStatus = "locked"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusLocked, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the order can never change again.
func (s OrderStatus) Terminal() bool {
	return s == StatusLocked || s == StatusCancelled
}

// DiscountType selects how Order.DiscountValue is interpreted.
type DiscountType string

const (
	// DiscountNone applies no discount; the value must be 0.
	DiscountNone DiscountType = "none"

	// DiscountPercent multiplies the subtotal by the value, which must be
	// in (0, 1]. 0.9 means 10% off.
	DiscountPercent DiscountType = "percent"

	// DiscountAmount subtracts the value, a non-negative whole number of
	// minor units, from the subtotal (floored at zero).
	DiscountAmount DiscountType = "amount"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountNone, DiscountPercent, DiscountAmount:
		return true
	}
	return false
}

// Order is one shared purchase event.
type Order struct {
	// ID is the unique order identifier, assigned by the store.
	ID int64 `json:"order_id"`

	// CreatedAt is the Unix timestamp when the order was opened.
	CreatedAt int64 `json:"created_at"`

	// Vendor is the label of the shop the group is ordering from.
	Vendor string `json:"vendor"`

	// Note is free-text attached by the creator.
	Note string `json:"note,omitempty"`

	// CreatorID is the user who opened the order. Only the creator may
	// lock, cancel or change the discount and adjustment.
	CreatorID string `json:"creator_id"`

	// PayerID is who fronts the money; defaults to the creator.
	PayerID string `json:"payer_id"`

	// DiscountType and DiscountValue describe the order-wide discount.
	// The value's semantics depend on the type; see DiscountType.
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`

	// Adjustment is a signed flat correction in minor units, applied to
	// the order total after the discount (delivery fee, rounding fix).
	Adjustment int64 `json:"adjustment"`

	// Status is the lifecycle state. Line items are immutable unless the
	// order is open.
	Status OrderStatus `json:"status"`
}

// OrderSummary is the listing shape used by pickers and overviews.
type OrderSummary struct {
	ID            int64        `json:"order_id"`
	Vendor        string       `json:"vendor"`
	CreatedAt     int64        `json:"created_at"`
	Status        OrderStatus  `json:"status"`
	CreatorID     string       `json:"creator_id"`
	PayerID       string       `json:"payer_id"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	Participants  int          `json:"participants"`
	TotalDue      int64        `json:"total_due"`
}
