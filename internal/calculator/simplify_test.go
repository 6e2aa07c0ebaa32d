package calculator

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func applyDebts(b models.Balances, debts []models.SimplifiedDebt) models.Balances {
	out := b.Clone()
	for _, d := range debts {
		out[d.From] += d.Amount
		out[d.To] -= d.Amount
	}
	return out
}

func nonZero(b models.Balances) int {
	n := 0
	for _, v := range b {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances models.Balances
		want     []models.SimplifiedDebt
	}{
		{
			name:     "empty input",
			balances: models.Balances{},
			want:     []models.SimplifiedDebt{},
		},
		{
			name:     "all settled",
			balances: models.Balances{"A": 0, "B": 0},
			want:     []models.SimplifiedDebt{},
		},
		{
			name:     "one creditor two equal debtors - lower id pays first",
			balances: models.Balances{"A": 200, "B": -100, "C": -100},
			want: []models.SimplifiedDebt{
				{From: "B", To: "A", Amount: 100},
				{From: "C", To: "A", Amount: 100},
			},
		},
		{
			name:     "after partial settlement",
			balances: models.Balances{"A": 30, "B": 0, "C": -30},
			want:     []models.SimplifiedDebt{{From: "C", To: "A", Amount: 30}},
		},
		{
			name:     "largest debtor matched with largest creditor",
			balances: models.Balances{"A": 50, "B": 70, "C": -100, "D": -20},
			want: []models.SimplifiedDebt{
				{From: "C", To: "B", Amount: 70},
				{From: "C", To: "A", Amount: 30},
				{From: "D", To: "A", Amount: 20},
			},
		},
		{
			name:     "equal creditors - lower id paid first",
			balances: models.Balances{"Z": 50, "Y": 50, "X": -100},
			want: []models.SimplifiedDebt{
				{From: "X", To: "Y", Amount: 50},
				{From: "X", To: "Z", Amount: 50},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Simplify(tt.balances)
			if err != nil {
				t.Fatalf("Simplify() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Simplify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplify_Unbalanced(t *testing.T) {
	tests := []struct {
		name     string
		balances models.Balances
	}{
		{"single creditor without counterpart", models.Balances{"A": 100}},
		{"single debtor without counterpart", models.Balances{"A": -5, "B": 0}},
		{"sum is off by one", models.Balances{"A": 100, "B": -99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simplify(tt.balances)
			if !errors.Is(err, ErrUnbalancedLedger) {
				t.Errorf("Simplify() error = %v, want ErrUnbalancedLedger", err)
			}
		})
	}
}

func TestSimplify_Properties(t *testing.T) {
	members := []string{"A", "B", "C", "D", "E"}
	r := rand.New(rand.NewPCG(5, 6))

	for round := 0; round < 300; round++ {
		balances, err := ComputeBalances(randomLedger(r, members, r.IntN(30)), members)
		if err != nil {
			t.Fatalf("ComputeBalances() error = %v", err)
		}

		debts, err := Simplify(balances)
		if err != nil {
			t.Fatalf("round %d: Simplify() error = %v", round, err)
		}

		for member, v := range applyDebts(balances, debts) {
			if v != 0 {
				t.Fatalf("round %d: %s left at %d after applying %v", round, member, v, debts)
			}
		}

		if n := nonZero(balances); n > 0 && len(debts) > n-1 {
			t.Fatalf("round %d: %d payments for %d non-zero balances", round, len(debts), n)
		}

		for _, d := range debts {
			if d.Amount <= 0 || d.From == d.To {
				t.Fatalf("round %d: malformed payment %+v", round, d)
			}
		}

		again, err := Simplify(balances)
		if err != nil || !reflect.DeepEqual(debts, again) {
			t.Fatalf("round %d: Simplify() not deterministic: %v vs %v", round, debts, again)
		}
	}
}
