// Package ledger is the facade over the entry store and the calculators.
// Every read recomputes balances from the append-only log, optionally through
// a cache keyed by the group version; writes validate and append atomically.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Store is what the engine needs from storage.
type Store interface {
	storage.MembershipProvider
	storage.EntryStore
}

// BalanceReport is the net position of every member at one version, with the
// payments that settle those exact balances.
type BalanceReport struct {
	GroupID  string
	Version  int64
	Balances models.Balances
	Debts    []models.SimplifiedDebt
}

// GroupView is one group as seen by a member: its feed, balances and the
// payments that would settle it.
type GroupView struct {
	Group   *models.Group
	Version int64

	// Entries are newest first.
	Entries []models.Entry

	Balances  models.Balances
	MyBalance int64
	Debts     []models.SimplifiedDebt
}

// GroupOverview summarizes a group in the principal's group list.
type GroupOverview struct {
	Group     *models.Group
	MyBalance int64
	Debts     []models.SimplifiedDebt
}

// Engine implements the ledger operations.
type Engine struct {
	store           Store
	cache           *viewCache
	flight          singleflight.Group
	metrics         *metrics.Metrics
	now             func() time.Time
	listConcurrency int
}

// New creates an Engine over store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		now:             time.Now,
		listConcurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetBalances returns every member's net balance.
func (e *Engine) GetBalances(ctx context.Context, principal models.Principal, groupID string) (*BalanceReport, error) {
	v, err := e.memberView(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	return &BalanceReport{
		GroupID:  groupID,
		Version:  v.version,
		Balances: v.balances.Clone(),
		Debts:    cloneDebts(v.debts),
	}, nil
}

// GetSimplifiedDebts returns a minimal set of payments that settles the group.
func (e *Engine) GetSimplifiedDebts(ctx context.Context, principal models.Principal, groupID string) ([]models.SimplifiedDebt, error) {
	v, err := e.memberView(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	return cloneDebts(v.debts), nil
}

// GetGroup returns the group with its entry feed, balances and settlement plan.
func (e *Engine) GetGroup(ctx context.Context, principal models.Principal, groupID string) (*GroupView, error) {
	v, err := e.memberView(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, len(v.entries))
	for i, entry := range v.entries {
		entries[len(v.entries)-1-i] = storage.CloneEntry(entry)
	}

	return &GroupView{
		Group:     storage.CloneGroup(v.group),
		Version:   v.version,
		Entries:   entries,
		Balances:  v.balances.Clone(),
		MyBalance: v.balances.Of(principal.UserID),
		Debts:     cloneDebts(v.debts),
	}, nil
}

// Group returns the group's membership without computing its balances.
func (e *Engine) Group(ctx context.Context, principal models.Principal, groupID string) (*models.Group, error) {
	if principal.Anonymous() {
		return nil, ErrUnauthenticated
	}
	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(principal.UserID) {
		return nil, ErrNotMember
	}
	return group, nil
}

// ListGroups returns every group the principal belongs to, oldest first.
func (e *Engine) ListGroups(ctx context.Context, principal models.Principal) ([]GroupOverview, error) {
	if principal.Anonymous() {
		return nil, ErrUnauthenticated
	}

	groups, err := e.store.ListGroupsByMember(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	out := make([]GroupOverview, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.listConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			v, err := e.view(gctx, group.ID)
			if err != nil {
				return err
			}
			out[i] = GroupOverview{
				Group:     storage.CloneGroup(v.group),
				MyBalance: v.balances.Of(principal.UserID),
				Debts:     cloneDebts(v.debts),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordExpense validates and appends an expense. The engine assigns ID,
// CreatedAt and CreatedBy.
func (e *Engine) RecordExpense(ctx context.Context, principal models.Principal, expense *models.Expense) error {
	if principal.Anonymous() {
		return ErrUnauthenticated
	}
	if err := validateExpense(expense); err != nil {
		return e.rejected(expense, err)
	}
	return e.record(ctx, principal, expense)
}

// RecordSettlement validates and appends a settlement.
func (e *Engine) RecordSettlement(ctx context.Context, principal models.Principal, settlement *models.Settlement) error {
	if principal.Anonymous() {
		return ErrUnauthenticated
	}
	if err := validateSettlement(settlement); err != nil {
		return e.rejected(settlement, err)
	}
	return e.record(ctx, principal, settlement)
}

func (e *Engine) record(ctx context.Context, principal models.Principal, entry models.Entry) error {
	switch en := entry.(type) {
	case *models.Expense:
		if en.ID == "" {
			en.ID = uuid.New().String()
		}
		if en.CreatedAt == 0 {
			en.CreatedAt = e.now().Unix()
		}
		en.CreatedBy = principal.UserID
	case *models.Settlement:
		if en.ID == "" {
			en.ID = uuid.New().String()
		}
		if en.CreatedAt == 0 {
			en.CreatedAt = e.now().Unix()
		}
		en.CreatedBy = principal.UserID
	}

	if err := e.store.Append(ctx, entry, membershipCheck(principal, entry)); err != nil {
		if errors.Is(err, ErrValidation) {
			return e.rejected(entry, err)
		}
		return err
	}

	if e.cache != nil {
		e.cache.invalidate(entry.EntryGroupID())
	}
	e.metrics.EntryRecorded(string(entry.Kind()))
	slog.Info("Entry recorded",
		"group_id", entry.EntryGroupID(),
		"entry_id", entry.EntryID(),
		"kind", entry.Kind(),
		"amount", entry.Total(),
		"created_by", principal.UserID,
	)
	return nil
}

func (e *Engine) rejected(entry models.Entry, err error) error {
	if rule, ok := RuleOf(err); ok {
		e.metrics.ValidationFailed(string(rule))
	}
	slog.Warn("Entry rejected", "group_id", entry.EntryGroupID(), "kind", entry.Kind(), "error", err)
	return err
}

// memberView returns the group's view after checking the principal may see it.
func (e *Engine) memberView(ctx context.Context, principal models.Principal, groupID string) (*view, error) {
	if principal.Anonymous() {
		return nil, ErrUnauthenticated
	}
	v, err := e.view(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !v.group.HasMember(principal.UserID) {
		return nil, ErrNotMember
	}
	return v, nil
}

// view returns the computed view of a group. With a cache, the store version
// is read first and only a view built at that version is served; concurrent
// misses for the same version share one recomputation.
func (e *Engine) view(ctx context.Context, groupID string) (*view, error) {
	if e.cache == nil {
		return e.recompute(ctx, groupID)
	}

	version, err := e.store.Version(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if v, ok := e.cache.get(groupID, version); ok {
		e.metrics.CacheRequest(metrics.CacheHit)
		return v, nil
	}
	e.metrics.CacheRequest(metrics.CacheMiss)

	key := groupID + "@" + strconv.FormatInt(version, 10)
	res, err, _ := e.flight.Do(key, func() (any, error) {
		v, err := e.recompute(context.WithoutCancel(ctx), groupID)
		if err != nil {
			return nil, err
		}
		e.cache.set(v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*view), nil
}

func (e *Engine) recompute(ctx context.Context, groupID string) (*view, error) {
	start := time.Now()

	snap, err := e.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(snap.Entries, snap.Group.MemberIDs())
	if err != nil {
		e.metrics.InvariantViolated("invalid_entry")
		slog.Error("Stored ledger contains an invalid entry", "group_id", groupID, "version", snap.Version, "error", err)
		return nil, err
	}

	debts, err := calculator.Simplify(balances)
	if err != nil {
		e.metrics.InvariantViolated("unbalanced")
		slog.Error("Stored ledger does not balance", "group_id", groupID, "version", snap.Version, "error", err)
		return nil, err
	}

	e.metrics.ObserveRecompute(time.Since(start))
	slog.Debug("Group recomputed",
		"group_id", groupID,
		"version", snap.Version,
		"entries", len(snap.Entries),
		"debts", len(debts),
	)

	return &view{
		group:    snap.Group,
		version:  snap.Version,
		entries:  snap.Entries,
		balances: balances,
		debts:    debts,
	}, nil
}

func cloneDebts(debts []models.SimplifiedDebt) []models.SimplifiedDebt {
	return append(make([]models.SimplifiedDebt, 0, len(debts)), debts...)
}
