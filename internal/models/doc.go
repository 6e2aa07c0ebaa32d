// Package models defines the core domain models for the ledger.
//
// # Ledger Entries
//
// A group's history is an append-only log of entries. Two kinds exist:
//   - Expense: paid by one member, split into per-member shares
//   - Settlement: a direct payment from one member to another
//
// Both implement Entry, a closed set: code outside this package cannot add
// new entry kinds, so calculators can switch over the two cases exhaustively.
//
// # Derived Values
//
// Balances and SimplifiedDebt are never stored as the source of truth.
// They are recomputed from the entry log (and at most cached).
//
// # Design Principles
//
//  1. **Integer money**: every amount is int64 minor currency units (paise, cents)
//  2. **Immutability**: entries are never edited; mistakes are fixed with compensating entries
//  3. **Avoid circular references**: use ID strings instead of pointers for relationships
//  4. **Explicit caller**: the authenticated Principal is passed to every engine call
package models
