package models

// LineItem is a single purchased entry charged to one participant.
// Items may only be added or removed while the owning order is open.
type LineItem struct {
	// ID is the unique item identifier, assigned by the store.
	ID int64 `json:"item_id"`

	// OrderID is the owning order. Items are deleted with their order.
	OrderID int64 `json:"order_id"`

	// UserID is the participant the item is charged to.
	UserID string `json:"user_id"`

	// Name describes the item (e.g. "fried chicken").
	Name string `json:"name"`

	// UnitPrice is the price per unit in minor units, >= 0.
	UnitPrice int64 `json:"unit_price"`

	// Qty is the unit count, > 0.
	Qty int64 `json:"qty"`

	// Note is free text attached to the item.
	Note string `json:"note,omitempty"`

	// CreatedAt is the Unix timestamp when the item was recorded.
	CreatedAt int64 `json:"created_at"`

	// CreatedBy is who recorded the item. It differs from UserID when
	// someone orders on another's behalf.
	CreatedBy string `json:"created_by"`
}

// Subtotal returns UnitPrice * Qty, the item's contribution to its
// participant's raw subtotal.
func (i LineItem) Subtotal() int64 {
	return i.UnitPrice * i.Qty
}
