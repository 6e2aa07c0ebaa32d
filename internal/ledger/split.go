package ledger

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// SplitType selects how an expense amount is divided into shares.
type SplitType string

const (
	SplitEqual    SplitType = "equal"
	SplitExact    SplitType = "exact"
	SplitWeights  SplitType = "weights"
	SplitItemized SplitType = "itemized"
)

// SplitRequest describes an expense split before it has integer shares.
type SplitRequest struct {
	Type    SplitType
	Amount  int64
	PayerID string

	// Participants are used by equal and itemized splits.
	Participants []string

	// Shares are taken as-is by exact splits.
	Shares []models.Share

	Weights []calculator.Weight
	Items   []calculator.Item
}

// ResolveShares turns a split request into shares summing to Amount.
// An empty Type means equal when participants are given, exact otherwise.
func ResolveShares(req SplitRequest) ([]models.Share, error) {
	if err := checkAmount("amount", req.Amount); err != nil {
		return nil, err
	}

	typ := req.Type
	if typ == "" {
		typ = SplitExact
		if len(req.Participants) > 0 {
			typ = SplitEqual
		}
	}

	var (
		shares []models.Share
		err    error
	)
	switch typ {
	case SplitEqual:
		shares, err = calculator.SplitEqual(req.Amount, req.Participants, req.PayerID)
	case SplitWeights:
		shares, err = calculator.SplitByWeights(req.Amount, req.Weights)
	case SplitItemized:
		shares, err = calculator.SplitItemized(req.Items, req.Amount, req.Participants)
	case SplitExact:
		shares = append([]models.Share(nil), req.Shares...)
	default:
		return nil, invalid(RuleSplit, "split_type", "unknown split type %q", typ)
	}
	if err != nil {
		return nil, invalid(RuleSplit, "split_type", "%s split: %v", typ, err)
	}
	return shares, nil
}
