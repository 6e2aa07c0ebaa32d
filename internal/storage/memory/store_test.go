package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestStore_Groups(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &models.Group{Name: "Flat", Members: []models.Member{{ID: "a"}, {ID: "b"}}}
	require.NoError(t, s.CreateGroup(ctx, g))
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, models.GroupTypeOther, g.Type)

	require.NoError(t, s.AddMember(ctx, g.ID, models.Member{ID: "c"}))
	assert.ErrorIs(t, s.AddMember(ctx, g.ID, models.Member{ID: "c"}), storage.ErrMemberExists)
	assert.ErrorIs(t, s.AddMember(ctx, "missing", models.Member{ID: "c"}), storage.ErrGroupNotFound)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got.MemberIDs())
	assert.NotZero(t, got.Members[2].JoinedAt)

	// Returned groups are copies.
	got.Members[0].ID = "mutated"
	again, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Members[0].ID)

	version, err := s.Version(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version, "membership change bumps the version")

	groups, err := s.ListGroupsByMember(ctx, "c")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g.ID, groups[0].ID)
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &models.Group{Name: "Trip", Members: []models.Member{{ID: "a"}, {ID: "b"}}}
	require.NoError(t, s.CreateGroup(ctx, g))

	e := &models.Expense{
		GroupID: g.ID,
		Amount:  10,
		PayerID: "a",
		Shares:  []models.Share{{MemberID: "b", Amount: 10}},
	}
	require.NoError(t, s.Append(ctx, e, nil))
	assert.NotEmpty(t, e.ID)

	// Mutating the caller's copy does not change the log.
	e.Shares[0].Amount = 99

	errStop := errors.New("stop")
	err := s.Append(ctx, &models.Settlement{GroupID: g.ID, FromMemberID: "b", ToMemberID: "a", Amount: 10},
		func(*models.Group) error { return errStop })
	assert.ErrorIs(t, err, errStop)

	snap, err := s.Snapshot(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, int64(10), snap.Entries[0].Allocations()[0].Amount)

	_, err = s.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrGroupNotFound)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &models.Group{Name: "Trip", Members: []models.Member{{ID: "a"}, {ID: "b"}}}
	require.NoError(t, s.CreateGroup(ctx, g))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, &models.Settlement{
				GroupID: g.ID, FromMemberID: "a", ToMemberID: "b", Amount: 1,
			}, nil))
		}()
	}
	wg.Wait()

	version, err := s.Version(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), version)
}
