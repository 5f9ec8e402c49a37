package models

// Participant is one user's stake in one order. A row exists for every
// distinct user that has at least one line item on the order; the row
// survives order completion as the payment audit record.
type Participant struct {
	OrderID int64  `json:"order_id"`
	UserID  string `json:"user_id"`

	// TotalDue is the derived amount owed, in minor units. Recomputed by
	// the settlement engine; never hand-edited.
	TotalDue int64 `json:"total_due"`

	// Paid is whether the participant has paid in full. Partial payments
	// are not supported.
	Paid bool `json:"paid"`

	// PaidAt is the Unix timestamp of payment; zero iff unpaid.
	PaidAt int64 `json:"paid_at,omitempty"`

	// PaidTo is who received the payment; defaults to the order's payer.
	// Empty iff unpaid.
	PaidTo string `json:"paid_to,omitempty"`
}

// Bill is the assembled view of one order: metadata plus every
// participant's items, subtotal and due.
type Bill struct {
	Order        Order             `json:"order"`
	Participants []BillParticipant `json:"participants"`
}

// BillParticipant is one participant's slice of a bill.
type BillParticipant struct {
	UserID   string     `json:"user_id"`
	Subtotal int64      `json:"subtotal"`
	TotalDue int64      `json:"total_due"`
	Paid     bool       `json:"paid"`
	PaidAt   int64      `json:"paid_at,omitempty"`
	PaidTo   string     `json:"paid_to,omitempty"`
	Items    []LineItem `json:"items"`
}

// DebtEntry is one unpaid (or, in overviews, paid) due on a single order.
type DebtEntry struct {
	OrderID   int64  `json:"order_id"`
	Vendor    string `json:"vendor"`
	CreatedAt int64  `json:"created_at"`
	PayerID   string `json:"payer_id"`
	Amount    int64  `json:"amount"`
	PaidAt    int64  `json:"paid_at,omitempty"`
}

// DebtEdge aggregates what a user owes to one creditor across orders.
type DebtEdge struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Orders int    `json:"orders"`
}

// DebtReport is a user's outstanding debt across all non-cancelled orders.
type DebtReport struct {
	UserID    string      `json:"user_id"`
	TotalDebt int64       `json:"total_debt"`
	Details   []DebtEntry `json:"details"`
	Owes      []DebtEdge  `json:"owes"`
}

// Overview is the personal dashboard: what I owe, what I recently paid,
// and the orders I opened.
type Overview struct {
	UserID     string         `json:"user_id"`
	Unpaid     []DebtEntry    `json:"unpaid"`
	PaidRecent []DebtEntry    `json:"paid_recent"`
	MyOrders   []OrderSummary `json:"my_orders"`
}
