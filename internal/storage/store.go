// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrGroupNotFound is returned when a group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrMemberExists is returned when adding a member that already belongs to the group.
	ErrMemberExists = errors.New("member already in group")
)

// Precondition is evaluated inside the store's per-group critical section,
// against the membership current at append time. A non-nil error aborts the
// append and is returned unchanged.
type Precondition func(group *models.Group) error

// Snapshot is a consistent view of one group's log.
type Snapshot struct {
	Group *models.Group

	// Entries are in append order.
	Entries []models.Entry

	// Version counts changes to the group: every append and every membership
	// change increments it. A new group starts at 0.
	Version int64
}

// MembershipProvider exposes group membership.
type MembershipProvider interface {
	// GetGroup returns the group with its members, or ErrGroupNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group memberID belongs to.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)
}

// EntryStore is the append-only entry log, one log per group.
// Appends to the same group are linearizable; appends to different groups
// do not block each other. An entry and all its shares become visible atomically.
type EntryStore interface {
	// Append runs check under the group's write lock and, if it passes,
	// appends entry as the next sequence number. Returns ErrGroupNotFound
	// for unknown groups.
	Append(ctx context.Context, entry models.Entry, check Precondition) error

	// Snapshot returns the group, its entries and the log version, read atomically.
	Snapshot(ctx context.Context, groupID string) (*Snapshot, error)

	// Version returns the current group version without loading entries.
	Version(ctx context.Context, groupID string) (int64, error)
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the engine.
type Store interface {
	MembershipProvider
	EntryStore

	// CreateGroup persists a new group with its initial members.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// AddMember adds a member to an existing group and bumps its version.
	AddMember(ctx context.Context, groupID string, member models.Member) error

	// Close releases any resources held by the store.
	Close() error
}
