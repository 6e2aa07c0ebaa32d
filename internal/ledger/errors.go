package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/storage"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("ledger: validation failed")

	// ErrGroupNotFound is storage.ErrGroupNotFound, so errors from any store match it.
	ErrGroupNotFound = storage.ErrGroupNotFound

	// ErrNotMember is returned when the principal does not belong to the group.
	ErrNotMember = errors.New("ledger: principal is not a member of the group")

	// ErrUnauthenticated is returned when no principal is present.
	ErrUnauthenticated = errors.New("ledger: unauthenticated")
)

// Rule names the validation rule an entry violated.
type Rule string

const (
	RulePositiveAmount Rule = "positive_amount"
	RuleAmountLimit    Rule = "amount_limit"
	RuleNegativeShare  Rule = "negative_share"
	RuleShareSum       Rule = "share_sum"
	RuleUnknownMember  Rule = "unknown_member"
	RuleDuplicateShare Rule = "duplicate_share"
	RuleMissingPayer   Rule = "missing_payer"
	RuleSelfSettlement Rule = "self_settlement"
	RuleGroupMismatch  Rule = "group_mismatch"
	RuleEmptyShares    Rule = "empty_shares"
	RuleSplit          Rule = "split"
)

// ValidationError describes why an entry was rejected. Nothing is written
// when it is returned.
type ValidationError struct {
	Rule    Rule
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid entry (%s): %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("invalid entry (%s): %s: %s", e.Rule, e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(rule Rule, field, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Field: field, Message: fmt.Sprintf(format, args...)}
}

// RuleOf returns the violated rule when err is a validation error.
func RuleOf(err error) (Rule, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Rule, true
	}
	return "", false
}
