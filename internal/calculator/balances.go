package calculator

import (
	"fmt"
	"math"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances reduces a group's entries into a net balance per member.
//
// Algorithm:
//   - Every member starts at zero, so inactive members still show as settled
//   - For each entry: the payer is credited with the total, each allocation's
//     member is debited with its amount
//   - Settlements take the same path with a single allocation to the payee
//
// The result depends only on the multiset of entries. Entries are expected to be
// validated already; any violation fails the whole computation with ErrInvalidEntry,
// as does a log whose running balances would leave the int64 range.
func ComputeBalances(entries []models.Entry, members []string) (models.Balances, error) {
	balances := make(models.Balances, len(members))
	for _, m := range members {
		balances[m] = 0
	}

	for _, entry := range entries {
		if err := checkEntry(entry, balances); err != nil {
			return nil, err
		}

		if err := credit(balances, entry, entry.Payer(), entry.Total()); err != nil {
			return nil, err
		}
		for _, share := range entry.Allocations() {
			if err := credit(balances, entry, share.MemberID, -share.Amount); err != nil {
				return nil, err
			}
		}
	}

	return balances, nil
}

func credit(balances models.Balances, entry models.Entry, member string, delta int64) error {
	sum, ok := addChecked(balances[member], delta)
	if !ok {
		return fmt.Errorf("%w: entry %s overflows the balance of %q", ErrInvalidEntry, entry.EntryID(), member)
	}
	balances[member] = sum
	return nil
}

// addChecked returns a+b, or false when the sum falls outside ±math.MaxInt64.
func addChecked(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < -math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func checkEntry(entry models.Entry, known models.Balances) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	id := entry.EntryID()

	if entry.Total() <= 0 || entry.Total() > models.MaxAmount {
		return fmt.Errorf("%w: entry %s has amount %d out of range", ErrInvalidEntry, id, entry.Total())
	}
	if _, ok := known[entry.Payer()]; !ok {
		return fmt.Errorf("%w: entry %s paid by non-member %q", ErrInvalidEntry, id, entry.Payer())
	}

	if s, ok := entry.(*models.Settlement); ok && s.FromMemberID == s.ToMemberID {
		return fmt.Errorf("%w: settlement %s pays its own payer", ErrInvalidEntry, id)
	}

	allocations := entry.Allocations()
	if len(allocations) == 0 {
		return fmt.Errorf("%w: entry %s has no shares", ErrInvalidEntry, id)
	}

	var sum int64
	for _, share := range allocations {
		if share.Amount < 0 {
			return fmt.Errorf("%w: entry %s has negative share for %q", ErrInvalidEntry, id, share.MemberID)
		}
		if _, ok := known[share.MemberID]; !ok {
			return fmt.Errorf("%w: entry %s has share for non-member %q", ErrInvalidEntry, id, share.MemberID)
		}
		sum += share.Amount
	}
	if sum != entry.Total() {
		return fmt.Errorf("%w: entry %s shares sum to %d, amount is %d", ErrInvalidEntry, id, sum, entry.Total())
	}

	return nil
}
