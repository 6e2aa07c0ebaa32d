package models

import "sort"

// Balances maps member ID to net amount. Positive means the member is owed,
// negative means the member owes.
type Balances map[string]int64

// Balance is one member's net position.
type Balance struct {
	MemberID  string
	NetAmount int64
}

// SimplifiedDebt is a directed payment instruction that settles part of the ledger.
type SimplifiedDebt struct {
	From   string
	To     string
	Amount int64
}

// Of returns the member's net amount, zero when unknown.
func (b Balances) Of(memberID string) int64 {
	return b[memberID]
}

// Sum returns the total of all net amounts. A consistent ledger sums to zero.
func (b Balances) Sum() int64 {
	var total int64
	for _, v := range b {
		total += v
	}
	return total
}

// Sorted returns the balances ordered by member ID.
func (b Balances) Sorted() []Balance {
	out := make([]Balance, 0, len(b))
	for id, amount := range b {
		out = append(out, Balance{MemberID: id, NetAmount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out
}

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
