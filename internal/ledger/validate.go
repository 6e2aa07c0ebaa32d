package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func checkAmount(field string, amount int64) error {
	if amount <= 0 {
		return invalid(RulePositiveAmount, field, "must be positive, got %d", amount)
	}
	if amount > models.MaxAmount {
		return invalid(RuleAmountLimit, field, "must not exceed %d", models.MaxAmount)
	}
	return nil
}

// validateExpense checks everything that does not depend on membership.
func validateExpense(e *models.Expense) error {
	if e.GroupID == "" {
		return invalid(RuleGroupMismatch, "group_id", "expense must name its group")
	}
	if err := checkAmount("amount", e.Amount); err != nil {
		return err
	}
	if e.PayerID == "" {
		return invalid(RuleMissingPayer, "payer_id", "expense must have a payer")
	}
	if len(e.Shares) == 0 {
		return invalid(RuleEmptyShares, "shares", "expense must have at least one share")
	}

	seen := make(map[string]struct{}, len(e.Shares))
	var sum int64
	for i, share := range e.Shares {
		field := fmt.Sprintf("shares[%d]", i)
		if share.MemberID == "" {
			return invalid(RuleUnknownMember, field, "share has no member")
		}
		if _, dup := seen[share.MemberID]; dup {
			return invalid(RuleDuplicateShare, field, "member %s appears more than once", share.MemberID)
		}
		seen[share.MemberID] = struct{}{}

		if share.Amount < 0 {
			return invalid(RuleNegativeShare, field, "share of %s is negative", share.MemberID)
		}
		if share.Amount > models.MaxAmount {
			return invalid(RuleAmountLimit, field, "must not exceed %d", models.MaxAmount)
		}
		sum += share.Amount
	}
	if sum != e.Amount {
		return invalid(RuleShareSum, "shares", "shares sum to %d, amount is %d", sum, e.Amount)
	}
	return nil
}

func validateSettlement(s *models.Settlement) error {
	if s.GroupID == "" {
		return invalid(RuleGroupMismatch, "group_id", "settlement must name its group")
	}
	if err := checkAmount("amount", s.Amount); err != nil {
		return err
	}
	if s.FromMemberID == "" {
		return invalid(RuleMissingPayer, "from_member_id", "settlement must have a payer")
	}
	if s.ToMemberID == "" {
		return invalid(RuleUnknownMember, "to_member_id", "settlement must have a payee")
	}
	if s.FromMemberID == s.ToMemberID {
		return invalid(RuleSelfSettlement, "to_member_id", "member cannot settle with themselves")
	}
	return nil
}

// membershipCheck runs inside the store's critical section, so it sees the
// membership the entry is committed against.
func membershipCheck(principal models.Principal, entry models.Entry) storage.Precondition {
	return func(group *models.Group) error {
		if !group.HasMember(principal.UserID) {
			return ErrNotMember
		}
		if !group.HasMember(entry.Payer()) {
			return invalid(RuleUnknownMember, "payer", "%s is not a member of the group", entry.Payer())
		}
		for _, share := range entry.Allocations() {
			if !group.HasMember(share.MemberID) {
				return invalid(RuleUnknownMember, "shares", "%s is not a member of the group", share.MemberID)
			}
		}
		return nil
	}
}
