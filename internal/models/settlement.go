package models

// Settlement represents a direct payment between group members to clear debts.
// It is processed exactly like an expense with a single share equal to the full
// amount, attributed to the receiving member.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount in minor currency units.
	Amount int64

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the member ID who recorded this settlement.
	CreatedBy string
}

func (*Settlement) sealed() {}

func (s *Settlement) Kind() EntryKind      { return KindSettlement }
func (s *Settlement) EntryID() string      { return s.ID }
func (s *Settlement) EntryGroupID() string { return s.GroupID }
func (s *Settlement) Payer() string        { return s.FromMemberID }
func (s *Settlement) Total() int64         { return s.Amount }
func (s *Settlement) Created() int64       { return s.CreatedAt }

// Allocations returns the single share owed by the payee.
func (s *Settlement) Allocations() []Share {
	return []Share{{MemberID: s.ToMemberID, Amount: s.Amount}}
}
