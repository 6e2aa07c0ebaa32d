package calculator

import "errors"

var (
	// ErrInvalidEntry means a stored entry violates the entry invariants.
	// Entries are validated at write time, so this indicates data corruption.
	ErrInvalidEntry = errors.New("invalid ledger entry")

	// ErrUnbalancedLedger means balances do not sum to zero.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
)
