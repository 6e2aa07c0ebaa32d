package calculator

import (
	"errors"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func sumShares(shares []models.Share) int64 {
	var total int64
	for _, s := range shares {
		total += s.Amount
	}
	return total
}

func shareMap(shares []models.Share) map[string]int64 {
	out := make(map[string]int64, len(shares))
	for _, s := range shares {
		out[s.MemberID] = s.Amount
	}
	return out
}

func TestSplitEqual(t *testing.T) {
	tests := []struct {
		name         string
		amount       int64
		participants []string
		payer        string
		want         map[string]int64
		wantErr      error
	}{
		{
			name:         "divides evenly",
			amount:       300,
			participants: []string{"A", "B", "C"},
			payer:        "A",
			want:         map[string]int64{"A": 100, "B": 100, "C": 100},
		},
		{
			name:         "remainder goes to participating payer",
			amount:       100,
			participants: []string{"A", "B", "C"},
			payer:        "B",
			want:         map[string]int64{"A": 33, "B": 34, "C": 33},
		},
		{
			name:         "remainder goes to first participant when payer does not participate",
			amount:       101,
			participants: []string{"B", "C"},
			payer:        "A",
			want:         map[string]int64{"B": 51, "C": 50},
		},
		{
			name:         "amount smaller than participant count",
			amount:       2,
			participants: []string{"A", "B", "C"},
			payer:        "C",
			want:         map[string]int64{"A": 0, "B": 0, "C": 2},
		},
		{
			name:         "no participants should error",
			amount:       100,
			participants: []string{},
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "duplicate participant should error",
			amount:       100,
			participants: []string{"A", "A"},
			wantErr:      ErrDuplicateMember,
		},
		{
			name:         "zero amount should error",
			amount:       0,
			participants: []string{"A"},
			wantErr:      ErrNonPositiveTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitEqual(tt.amount, tt.participants, tt.payer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SplitEqual() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitEqual() unexpected error: %v", err)
			}
			if got := sumShares(shares); got != tt.amount {
				t.Errorf("shares sum to %d, want %d", got, tt.amount)
			}
			got := shareMap(shares)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s share = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestSplitByWeights(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		weights []Weight
		want    map[string]int64
		wantErr bool
	}{
		{
			name:    "exact proportions",
			amount:  600,
			weights: []Weight{{"A", 1}, {"B", 2}, {"C", 3}},
			want:    map[string]int64{"A": 100, "B": 200, "C": 300},
		},
		{
			name:    "largest remainder gets the extra unit",
			amount:  100,
			weights: []Weight{{"A", 1}, {"B", 1}, {"C", 1}},
			want:    map[string]int64{"A": 34, "B": 33, "C": 33},
		},
		{
			name:    "fractions ranked by size",
			amount:  10,
			weights: []Weight{{"A", 1}, {"B", 2}},
			// A: 3.33 -> 3, B: 6.67 -> 6, leftover 1 goes to B
			want: map[string]int64{"A": 3, "B": 7},
		},
		{
			name:    "zero weight member gets nothing",
			amount:  50,
			weights: []Weight{{"A", 0}, {"B", 5}},
			want:    map[string]int64{"A": 0, "B": 50},
		},
		{
			name:    "large amount does not overflow",
			amount:  models.MaxAmount,
			weights: []Weight{{"A", 1 << 40}, {"B", 1 << 40}},
			want:    map[string]int64{"A": models.MaxAmount / 2, "B": models.MaxAmount / 2},
		},
		{
			name:    "all zero weights should error",
			amount:  50,
			weights: []Weight{{"A", 0}},
			wantErr: true,
		},
		{
			name:    "negative weight should error",
			amount:  50,
			weights: []Weight{{"A", -1}, {"B", 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitByWeights(tt.amount, tt.weights)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitByWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := sumShares(shares); got != tt.amount {
				t.Errorf("shares sum to %d, want %d", got, tt.amount)
			}
			got := shareMap(shares)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s share = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestSplitItemized(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		billTotal    int64
		participants []string
		wantErr      bool
		want         map[string]int64
	}{
		{
			name: "simple two-person split with tax",
			items: []Item{
				{Description: "Pizza", Amount: 2000, AssignedTo: []string{"Alice", "Bob"}},
				{Description: "Salad", Amount: 1000, AssignedTo: []string{"Alice"}},
			},
			// Alice: subtotal 2000, total 2000 * 3300/3000 = 2200
			// Bob: subtotal 1000, total 1100
			billTotal:    3300,
			participants: []string{"Alice", "Bob"},
			want:         map[string]int64{"Alice": 2200, "Bob": 1100},
		},
		{
			name:         "no items - split equally among participants",
			items:        []Item{},
			billTotal:    9000,
			participants: []string{"Alice", "Bob", "Charlie"},
			want:         map[string]int64{"Alice": 3000, "Bob": 3000, "Charlie": 3000},
		},
		{
			name: "uneven item split still sums to total",
			items: []Item{
				{Description: "Shared Pizza", Amount: 1000, AssignedTo: []string{"Alice", "Bob", "Charlie"}},
			},
			billTotal:    1100,
			participants: []string{"Alice", "Bob", "Charlie"},
			// item shares 334/333/333, so Alice also takes the leftover unit
			want: map[string]int64{"Alice": 368, "Bob": 366, "Charlie": 366},
		},
		{
			name: "item assigned to non-participant should error",
			items: []Item{
				{Description: "Beer", Amount: 500, AssignedTo: []string{"Mallory"}},
			},
			billTotal:    500,
			participants: []string{"Alice"},
			wantErr:      true,
		},
		{
			name:         "no participants should error",
			billTotal:    1000,
			participants: []string{},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitItemized(tt.items, tt.billTotal, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitItemized() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := sumShares(shares); got != tt.billTotal {
				t.Errorf("shares sum to %d, want %d", got, tt.billTotal)
			}
			got := shareMap(shares)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s share = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestSplitItemized_TooLarge(t *testing.T) {
	participants := []string{"Alice", "Bob"}

	oversized := []Item{{Description: "Yacht", Amount: models.MaxAmount + 1, AssignedTo: []string{"Alice"}}}
	if _, err := SplitItemized(oversized, 100, participants); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("oversized item: error = %v, want ErrAmountTooLarge", err)
	}

	// Enough capped items to wrap the subtotal past zero.
	many := make([]Item, 18447)
	for i := range many {
		many[i] = Item{Description: "Round", Amount: models.MaxAmount, AssignedTo: []string{"Alice"}}
	}
	if _, err := SplitItemized(many, 100, participants); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("subtotal overflow: error = %v, want ErrAmountTooLarge", err)
	}
}
