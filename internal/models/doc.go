// Package models defines the core domain models for Outlate.
//
// # Ownership
//
// An Outing owns its People and Receipts for its whole lifetime. Receipts
// reference people by ID only; there are no pointers between models, so a
// snapshot of an Outing can be handed to the calculator and compared or
// serialized without aliasing surprises.
//
// # Derived data
//
// PersonShare and Balance values are derived: they are recomputed from an
// Outing whenever it changes and never stored. SettlementTransaction values are
// computed once per stable balance snapshot and then persisted, because the
// paid/paidAt facts recorded on them come from users, not from the engine.
//
// # Money
//
// Every amount is money.Money (integer cents). On the wire it serializes as an
// integer, never as a decimal float.
package models
