package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// Balance is one member's net position. Positive means owed.
type Balance struct {
	MemberID  string `json:"member_id"`
	NetAmount int64  `json:"net_amount"`
}

// Debt is one payment instruction.
type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Share is a member's part of an expense.
type Share struct {
	MemberID string `json:"member_id"`
	Amount   int64  `json:"amount"`
}

// Weight is a member's relative part of a weighted split.
type Weight struct {
	MemberID string `json:"member_id"`
	Weight   int64  `json:"weight"`
}

// Item is a bill line shared equally by its assignees.
type Item struct {
	Description string   `json:"description"`
	Amount      int64    `json:"amount"`
	AssignedTo  []string `json:"assigned_to"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	GroupID  string    `json:"group_id"`
	Version  int64     `json:"version"`
	Balances []Balance `json:"balances"`
}

type GetSimplifiedDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type GetSimplifiedDebtsResponse struct {
	Debts []Debt `json:"debts"`
}

// RecordExpenseRequest carries either explicit shares or a split to resolve.
type RecordExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	Description  string   `json:"description"`
	Amount       int64    `json:"amount"`
	PayerID      string   `json:"payer_id"`
	SplitType    string   `json:"split_type,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Shares       []Share  `json:"shares,omitempty"`
	Weights      []Weight `json:"weights,omitempty"`
	Items        []Item   `json:"items,omitempty"`
}

// Expense is a recorded expense.
type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	PayerID     string  `json:"payer_id"`
	Shares      []Share `json:"shares"`
	CreatedAt   int64   `json:"created_at"`
	CreatedBy   string  `json:"created_by"`
}

type RecordExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type RecordSettlementRequest struct {
	GroupID      string `json:"group_id"`
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       int64  `json:"amount"`
	Note         string `json:"note,omitempty"`
}

// Settlement is a recorded settlement.
type Settlement struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       int64  `json:"amount"`
	Note         string `json:"note,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	CreatedBy    string `json:"created_by"`
}

type RecordSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

func balancesToMsg(b models.Balances) []Balance {
	sorted := b.Sorted()
	out := make([]Balance, len(sorted))
	for i, bal := range sorted {
		out[i] = Balance{MemberID: bal.MemberID, NetAmount: bal.NetAmount}
	}
	return out
}

func debtsToMsg(debts []models.SimplifiedDebt) []Debt {
	out := make([]Debt, len(debts))
	for i, d := range debts {
		out[i] = Debt{From: d.From, To: d.To, Amount: d.Amount}
	}
	return out
}

func sharesFromMsg(shares []Share) []models.Share {
	out := make([]models.Share, len(shares))
	for i, s := range shares {
		out[i] = models.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func sharesToMsg(shares []models.Share) []Share {
	out := make([]Share, len(shares))
	for i, s := range shares {
		out[i] = Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func weightsFromMsg(weights []Weight) []calculator.Weight {
	out := make([]calculator.Weight, len(weights))
	for i, w := range weights {
		out[i] = calculator.Weight{MemberID: w.MemberID, Weight: w.Weight}
	}
	return out
}

func expenseToMsg(e *models.Expense) Expense {
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PayerID:     e.PayerID,
		Shares:      sharesToMsg(e.Shares),
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}

func settlementToMsg(s *models.Settlement) Settlement {
	return Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Note:         s.Note,
		CreatedAt:    s.CreatedAt,
		CreatedBy:    s.CreatedBy,
	}
}

func itemsFromMsg(items []Item) []calculator.Item {
	out := make([]calculator.Item, len(items))
	for i, it := range items {
		out[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.AssignedTo}
	}
	return out
}
