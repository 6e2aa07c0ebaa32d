package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/money"
)

func amountToHTTP(c money.Currency, minor int64) json.Number {
	return json.Number(c.Decimal(minor).StringFixed(c.Exponent))
}

func amountFromHTTP(c money.Currency, field string, n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	minor, err := c.Parse(n.String())
	if err != nil {
		return 0, &requestError{Field: field, Message: fmt.Sprintf("%s: %v", field, err)}
	}
	return minor, nil
}

func membersToHTTP(g *models.Group) []MemberResponse {
	out := make([]MemberResponse, len(g.Members))
	for i, m := range g.Members {
		out[i] = MemberResponse{ID: m.ID, Name: g.DisplayName(m.ID)}
	}
	return out
}

func debtsToHTTP(c money.Currency, debts []models.SimplifiedDebt) []DebtResponse {
	out := make([]DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = DebtResponse{From: d.From, To: d.To, Amount: amountToHTTP(c, d.Amount)}
	}
	return out
}

func groupToHTTP(c money.Currency, g *models.Group, myBalance int64, debts []models.SimplifiedDebt) GroupResponse {
	return GroupResponse{
		ID:               g.ID,
		Name:             g.Name,
		Type:             string(g.Type),
		Members:          membersToHTTP(g),
		MyBalance:        amountToHTTP(c, myBalance),
		MyBalanceDisplay: c.Format(myBalance),
		MyBalanceLabel:   balanceLabel(c, myBalance),
		SimplifyDebts:    debtsToHTTP(c, debts),
	}
}

func balanceLabel(c money.Currency, minor int64) string {
	switch {
	case minor > 0:
		return "you are owed " + c.FormatAbs(minor)
	case minor < 0:
		return "you owe " + c.FormatAbs(minor)
	default:
		return "settled up"
	}
}

func sharesToHTTP(c money.Currency, shares []models.Share) []ShareResponse {
	out := make([]ShareResponse, len(shares))
	for i, s := range shares {
		out[i] = ShareResponse{MemberID: s.MemberID, Amount: amountToHTTP(c, s.Amount)}
	}
	return out
}

func entryToHTTP(c money.Currency, g *models.Group, entry models.Entry) ExpenseResponse {
	resp := ExpenseResponse{
		ID:        entry.EntryID(),
		Amount:    amountToHTTP(c, entry.Total()),
		Date:      time.Unix(entry.Created(), 0).UTC().Format(time.DateOnly),
		CreatedAt: entry.Created(),
		PaidBy:    MemberResponse{ID: entry.Payer(), Name: g.DisplayName(entry.Payer())},
		Shares:    sharesToHTTP(c, entry.Allocations()),
	}

	switch e := entry.(type) {
	case *models.Expense:
		resp.Description = e.Description
	case *models.Settlement:
		resp.IsSettlement = true
		resp.PaidTo = &MemberResponse{ID: e.ToMemberID, Name: g.DisplayName(e.ToMemberID)}
		resp.Description = e.Note
		if resp.Description == "" {
			resp.Description = fmt.Sprintf("%s paid %s", resp.PaidBy.Name, resp.PaidTo.Name)
		}
	}
	return resp
}

func balancesToHTTP(c money.Currency, b models.Balances) []BalanceResponse {
	sorted := b.Sorted()
	out := make([]BalanceResponse, len(sorted))
	for i, bal := range sorted {
		out[i] = BalanceResponse{MemberID: bal.MemberID, NetAmount: amountToHTTP(c, bal.NetAmount)}
	}
	return out
}

func sharesFromHTTP(c money.Currency, shares []ShareRequest) ([]models.Share, error) {
	out := make([]models.Share, len(shares))
	for i, s := range shares {
		amount, err := amountFromHTTP(c, fmt.Sprintf("shares[%d].amount", i), s.Amount)
		if err != nil {
			return nil, err
		}
		out[i] = models.Share{MemberID: s.MemberID, Amount: amount}
	}
	return out, nil
}

func weightsFromHTTP(weights []WeightRequest) []calculator.Weight {
	out := make([]calculator.Weight, len(weights))
	for i, w := range weights {
		out[i] = calculator.Weight{MemberID: w.MemberID, Weight: w.Weight}
	}
	return out
}

func itemsFromHTTP(c money.Currency, items []ItemRequest) ([]calculator.Item, error) {
	out := make([]calculator.Item, len(items))
	for i, it := range items {
		amount, err := amountFromHTTP(c, fmt.Sprintf("items[%d].amount", i), it.Amount)
		if err != nil {
			return nil, err
		}
		out[i] = calculator.Item{Description: it.Description, Amount: amount, AssignedTo: it.AssignedTo}
	}
	return out, nil
}
