package models

// Expense is a payment made by one member on behalf of the group,
// split into per-member shares.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Dinner at Thalassa").
	Description string

	// Amount is the total paid, in minor currency units. Always positive.
	Amount int64

	// PayerID is the member who paid the full amount.
	PayerID string

	// Shares attribute the amount to members. They must sum to Amount.
	// The payer appears here too when they owe part of their own expense.
	Shares []Share

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the member ID who recorded this expense.
	CreatedBy string
}

// Share is the portion of an expense attributed to one member.
type Share struct {
	MemberID string
	Amount   int64
}

func (*Expense) sealed() {}

func (e *Expense) Kind() EntryKind      { return KindExpense }
func (e *Expense) EntryID() string      { return e.ID }
func (e *Expense) EntryGroupID() string { return e.GroupID }
func (e *Expense) Payer() string        { return e.PayerID }
func (e *Expense) Total() int64         { return e.Amount }
func (e *Expense) Allocations() []Share { return e.Shares }
func (e *Expense) Created() int64       { return e.CreatedAt }
