package calculator

import (
	"container/heap"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// party is a creditor or debtor with the amount still to settle (always positive).
type party struct {
	id     string
	amount int64
}

// partyQueue is a max-heap on amount; equal amounts pop the lower member ID first.
type partyQueue []party

func (q partyQueue) Len() int { return len(q) }
func (q partyQueue) Less(i, j int) bool {
	if q[i].amount != q[j].amount {
		return q[i].amount > q[j].amount
	}
	return q[i].id < q[j].id
}
func (q partyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *partyQueue) Push(x any)   { *q = append(*q, x.(party)) }
func (q *partyQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	*q = old[:n-1]
	return p
}

// Simplify turns net balances into directed payments that settle the group.
//
// Greedy extremal matching: the largest debtor pays the largest creditor
// min(debt, credit), and whoever is not fully settled goes back into its queue.
// Every step settles at least one party, so the result has at most
// (non-zero balances - 1) payments. Output is deterministic for a given input.
func Simplify(balances models.Balances) ([]models.SimplifiedDebt, error) {
	if sum := balances.Sum(); sum != 0 {
		return nil, fmt.Errorf("%w: balances sum to %d", ErrUnbalancedLedger, sum)
	}

	creditors := &partyQueue{}
	debtors := &partyQueue{}
	for id, amount := range balances {
		switch {
		case amount > 0:
			*creditors = append(*creditors, party{id: id, amount: amount})
		case amount < 0:
			*debtors = append(*debtors, party{id: id, amount: -amount})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	debts := make([]models.SimplifiedDebt, 0, max(len(*creditors)+len(*debtors)-1, 0))
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		transfer := min(debtor.amount, creditor.amount)
		debts = append(debts, models.SimplifiedDebt{
			From:   debtor.id,
			To:     creditor.id,
			Amount: transfer,
		})

		debtor.amount -= transfer
		creditor.amount -= transfer
		if debtor.amount > 0 {
			heap.Push(debtors, debtor)
		}
		if creditor.amount > 0 {
			heap.Push(creditors, creditor)
		}
	}

	if debtors.Len() > 0 || creditors.Len() > 0 {
		return nil, fmt.Errorf("%w: %d debtors and %d creditors left unmatched",
			ErrUnbalancedLedger, debtors.Len(), creditors.Len())
	}

	return debts, nil
}
