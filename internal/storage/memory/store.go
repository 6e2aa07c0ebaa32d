// Package memory provides an in-process implementation of storage.Store.
// Each group has its own lock, so appends to different groups never contend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type groupLog struct {
	mu      sync.RWMutex
	group   *models.Group
	entries []models.Entry
	version int64
}

// Store keeps groups and entry logs in memory.
type Store struct {
	mu     sync.RWMutex
	groups map[string]*groupLog
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{groups: make(map[string]*groupLog)}
}

func (s *Store) log(groupID string) (*groupLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	return l, nil
}

// CreateGroup stores a new group.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	storage.FillGroupDefaults(group)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group already exists: %s", group.ID)
	}
	s.groups[group.ID] = &groupLog{group: storage.CloneGroup(group)}
	return nil
}

// AddMember appends a member to the group.
func (s *Store) AddMember(_ context.Context, groupID string, member models.Member) error {
	l, err := s.log(groupID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.group.HasMember(member.ID) {
		return fmt.Errorf("%w: %s", storage.ErrMemberExists, member.ID)
	}
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	l.group.Members = append(l.group.Members, member)
	l.version++
	return nil
}

// GetGroup returns a copy of the group.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	l, err := s.log(groupID)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return storage.CloneGroup(l.group), nil
}

// ListGroupsByMember returns groups containing memberID, oldest first.
func (s *Store) ListGroupsByMember(_ context.Context, memberID string) ([]*models.Group, error) {
	s.mu.RLock()
	logs := make([]*groupLog, 0, len(s.groups))
	for _, l := range s.groups {
		logs = append(logs, l)
	}
	s.mu.RUnlock()

	var groups []*models.Group
	for _, l := range logs {
		l.mu.RLock()
		if l.group.HasMember(memberID) {
			groups = append(groups, storage.CloneGroup(l.group))
		}
		l.mu.RUnlock()
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt < groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// Append checks the precondition and appends under the group's lock.
func (s *Store) Append(_ context.Context, entry models.Entry, check storage.Precondition) error {
	l, err := s.log(entry.EntryGroupID())
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if check != nil {
		if err := check(storage.CloneGroup(l.group)); err != nil {
			return err
		}
	}

	storage.FillEntryDefaults(entry)
	l.entries = append(l.entries, storage.CloneEntry(entry))
	l.version++
	return nil
}

// Snapshot returns the group and its log under a read lock.
func (s *Store) Snapshot(_ context.Context, groupID string) (*storage.Snapshot, error) {
	l, err := s.log(groupID)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]models.Entry, len(l.entries))
	for i, e := range l.entries {
		entries[i] = storage.CloneEntry(e)
	}
	return &storage.Snapshot{
		Group:   storage.CloneGroup(l.group),
		Entries: entries,
		Version: l.version,
	}, nil
}

// Version returns the group's change counter.
func (s *Store) Version(_ context.Context, groupID string) (int64, error) {
	l, err := s.log(groupID)
	if err != nil {
		return 0, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
