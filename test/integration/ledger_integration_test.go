//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func createGroup(t *testing.T, store storage.Store, members ...string) string {
	t.Helper()
	group := &models.Group{Name: "Integration", Type: models.GroupTypeTrip}
	for _, m := range members {
		group.Members = append(group.Members, models.Member{ID: m, DisplayName: m})
	}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group.ID
}

func TestLedger_ExpenseAndSettlement(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	engine := ledger.New(store, ledger.WithCache(16, time.Minute))
	groupID := createGroup(t, store, "A", "B", "C")
	a := models.Principal{UserID: "A"}

	require.NoError(t, engine.RecordExpense(ctx, a, &models.Expense{
		GroupID: groupID, Description: "Hotel", Amount: 300, PayerID: "A",
		Shares: []models.Share{{MemberID: "A", Amount: 100}, {MemberID: "B", Amount: 100}, {MemberID: "C", Amount: 100}},
	}))

	report, err := engine.GetBalances(ctx, a, groupID)
	require.NoError(t, err)
	assert.Equal(t, models.Balances{"A": 200, "B": -100, "C": -100}, report.Balances)
	assert.Equal(t, int64(1), report.Version)

	require.NoError(t, engine.RecordSettlement(ctx, models.Principal{UserID: "B"}, &models.Settlement{
		GroupID: groupID, FromMemberID: "B", ToMemberID: "A", Amount: 100,
	}))

	debts, err := engine.GetSimplifiedDebts(ctx, a, groupID)
	require.NoError(t, err)
	assert.Equal(t, []models.SimplifiedDebt{{From: "C", To: "A", Amount: 100}}, debts)

	view, err := engine.GetGroup(ctx, a, groupID)
	require.NoError(t, err)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, models.KindSettlement, view.Entries[0].Kind())
}

func TestLedger_MembershipCheckedAtAppend(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	engine := ledger.New(store)
	groupID := createGroup(t, store, "A", "B")

	err := engine.RecordExpense(ctx, models.Principal{UserID: "A"}, &models.Expense{
		GroupID: groupID, Description: "x", Amount: 10, PayerID: "A",
		Shares: []models.Share{{MemberID: "D", Amount: 10}},
	})
	rule, ok := ledger.RuleOf(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, ledger.RuleUnknownMember, rule)

	require.NoError(t, store.AddMember(ctx, groupID, models.Member{ID: "D", DisplayName: "D"}))
	require.NoError(t, engine.RecordExpense(ctx, models.Principal{UserID: "A"}, &models.Expense{
		GroupID: groupID, Description: "x", Amount: 10, PayerID: "A",
		Shares: []models.Share{{MemberID: "D", Amount: 10}},
	}))

	v, err := store.Version(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	engine := ledger.New(store, ledger.WithCache(16, time.Minute))
	groupID := createGroup(t, store, "A", "B")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.RecordExpense(ctx, models.Principal{UserID: "A"}, &models.Expense{
				GroupID: groupID, Description: fmt.Sprintf("round %d", i), Amount: 10, PayerID: "A",
				Shares: []models.Share{{MemberID: "B", Amount: 10}},
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	report, err := engine.GetBalances(ctx, models.Principal{UserID: "B"}, groupID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), report.Version)
	assert.Equal(t, models.Balances{"A": 10 * n, "B": -10 * n}, report.Balances)
}
