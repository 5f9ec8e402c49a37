package models

import "errors"

var (
	ErrInternal = errors.New("internal error")

	// Input errors, caller-correctable.
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDiscount = errors.New("discount value out of range for its type")

	// Lifecycle errors, surfaced as user-facing rejections.
	ErrOrderNotOpen   = errors.New("order is locked or cancelled")
	ErrOrderNotLocked = errors.New("order is not locked")

	// Lookup and authority errors.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("actor is not allowed to perform this operation")
)
