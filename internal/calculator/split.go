package calculator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrNoParticipants   = errors.New("must have at least one participant")
	ErrDuplicateMember  = errors.New("member listed more than once")
	ErrNonPositiveTotal = errors.New("amount must be positive")
	ErrZeroWeight       = errors.New("total weight must be positive")
	ErrAmountTooLarge   = errors.New("amount too large")
)

// Weight is one member's relative portion in a proportional split.
type Weight struct {
	MemberID string
	Weight   int64
}

// Item represents a single line item on a bill, shared equally by its assignees.
type Item struct {
	Description string
	Amount      int64
	AssignedTo  []string
}

// SplitEqual divides amount evenly among participants. Integer division leaves
// a remainder of up to n-1 units; it is added to the payer's share when the payer
// participates, otherwise to the first participant's share.
func SplitEqual(amount int64, participants []string, payerID string) ([]models.Share, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveTotal
	}
	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	n := int64(len(participants))
	each := amount / n
	remainder := amount % n

	shares := make([]models.Share, len(participants))
	target := 0
	for i, p := range participants {
		shares[i] = models.Share{MemberID: p, Amount: each}
		if p == payerID {
			target = i
		}
	}
	shares[target].Amount += remainder

	return shares, nil
}

// SplitByWeights distributes amount proportionally to the weights using the
// largest-remainder method: everyone gets floor(amount*w/W), then the leftover
// units go to the largest fractional parts, ties broken by input order.
// The shares always sum to amount exactly.
func SplitByWeights(amount int64, weights []Weight) ([]models.Share, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveTotal
	}
	ids := make([]string, len(weights))
	var total int64
	for i, w := range weights {
		if w.Weight < 0 {
			return nil, fmt.Errorf("negative weight for %q", w.MemberID)
		}
		if total > math.MaxInt64-w.Weight {
			return nil, fmt.Errorf("total weight overflows")
		}
		total += w.Weight
		ids[i] = w.MemberID
	}
	if err := checkParticipants(ids); err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrZeroWeight
	}

	type part struct {
		index int
		frac  uint64
	}
	shares := make([]models.Share, len(weights))
	parts := make([]part, len(weights))
	var allocated int64
	for i, w := range weights {
		hi, lo := bits.Mul64(uint64(amount), uint64(w.Weight))
		quo, rem := bits.Div64(hi, lo, uint64(total))
		shares[i] = models.Share{MemberID: w.MemberID, Amount: int64(quo)}
		parts[i] = part{index: i, frac: rem}
		allocated += int64(quo)
	}

	sort.SliceStable(parts, func(a, b int) bool { return parts[a].frac > parts[b].frac })
	for k := int64(0); k < amount-allocated; k++ {
		shares[parts[k].index].Amount++
	}

	return shares, nil
}

// SplitItemized computes shares for an itemized bill. Each item is split equally
// among its assignees, then the bill total (including tax, tips and fees) is
// distributed in proportion to each person's item subtotal.
//
// Based on: person_total = person_subtotal × (bill_total / bill_subtotal)
func SplitItemized(items []Item, billTotal int64, participants []string) ([]models.Share, error) {
	if billTotal <= 0 {
		return nil, ErrNonPositiveTotal
	}
	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	subtotals := make(map[string]int64, len(participants))
	for _, p := range participants {
		subtotals[p] = 0
	}

	var (
		billSubtotal int64
		ok           bool
	)
	for _, item := range items {
		if len(item.AssignedTo) == 0 || item.Amount <= 0 {
			continue
		}
		if item.Amount > models.MaxAmount {
			return nil, fmt.Errorf("item %q: %w", item.Description, ErrAmountTooLarge)
		}
		for _, person := range item.AssignedTo {
			if _, ok := subtotals[person]; !ok {
				return nil, fmt.Errorf("item %q assigned to non-participant %q", item.Description, person)
			}
		}
		itemShares, err := SplitEqual(item.Amount, item.AssignedTo, "")
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Description, err)
		}
		// Each subtotal is bounded by billSubtotal.
		if billSubtotal, ok = addChecked(billSubtotal, item.Amount); !ok {
			return nil, fmt.Errorf("items: %w", ErrAmountTooLarge)
		}
		for _, s := range itemShares {
			subtotals[s.MemberID] += s.Amount
		}
	}

	// No items: split the total equally among all participants.
	if billSubtotal == 0 {
		return SplitEqual(billTotal, participants, "")
	}

	weights := make([]Weight, len(participants))
	for i, p := range participants {
		weights[i] = Weight{MemberID: p, Weight: subtotals[p]}
	}
	return SplitByWeights(billTotal, weights)
}

func checkParticipants(ids []string) error {
	if len(ids) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("empty member id")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateMember, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
