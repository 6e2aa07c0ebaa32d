package models

// EntryKind discriminates the two ledger entry variants.
type EntryKind string

const (
	KindExpense    EntryKind = "expense"
	KindSettlement EntryKind = "settlement"
)

// MaxAmount bounds a single entry. Balances are still summed with overflow
// checks: about 9,200 entries at this bound are enough to reach the int64 limit.
const MaxAmount int64 = 1_000_000_000_000_000

// Entry is one record of a group's append-only log: *Expense or *Settlement.
type Entry interface {
	Kind() EntryKind
	EntryID() string
	EntryGroupID() string

	// Payer is credited with Total.
	Payer() string
	Total() int64

	// Allocations are debited from their members; they sum to Total.
	Allocations() []Share

	Created() int64

	sealed()
}

var (
	_ Entry = (*Expense)(nil)
	_ Entry = (*Settlement)(nil)
)
