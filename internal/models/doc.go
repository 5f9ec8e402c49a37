// Package models defines the core domain entities for Tabkeeper.
//
// The ledger persists three relations:
//   - Order: one shared purchase with a payer, a discount policy, a flat
//     adjustment and a lifecycle status
//   - LineItem: a single purchased entry charged to one participant
//   - Participant: one row per distinct user with items on an order,
//     carrying the derived total_due and the payment audit fields
//
// Status and discount type are closed enumerations rather than open
// strings so that illegal states are unrepresentable. All currency values
// are integer minor units; no floating point is used for money.
//
// Participant.TotalDue is a materialized view: it is recomputed by the
// settlement engine after every mutation of an open order and must never
// be written directly by callers.
package models
