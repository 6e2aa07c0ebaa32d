package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Append runs check against the current membership and appends the entry,
// all inside one BEGIN IMMEDIATE transaction.
func (s *SQLiteStore) Append(ctx context.Context, entry models.Entry, check storage.Precondition) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := loadGroup(ctx, tx, entry.EntryGroupID())
	if err != nil {
		return err
	}

	if check != nil {
		if err := check(group); err != nil {
			return err
		}
	}

	storage.FillEntryDefaults(entry)

	var seq int64
	err = tx.QueryRowContext(ctx,
		"UPDATE groups SET version = version + 1 WHERE id = ? RETURNING version",
		group.ID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to bump group version: %w", err)
	}

	var (
		description string
		payee       sql.NullString
		createdBy   string
	)
	switch e := entry.(type) {
	case *models.Expense:
		description, createdBy = e.Description, e.CreatedBy
	case *models.Settlement:
		description, createdBy = e.Note, e.CreatedBy
		payee = sql.NullString{String: e.ToMemberID, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries
		 (id, group_id, seq, kind, description, amount, payer_id, payee_id, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID(), group.ID, seq, string(entry.Kind()), description,
		entry.Total(), entry.Payer(), payee, entry.Created(), createdBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if expense, ok := entry.(*models.Expense); ok {
		for i, share := range expense.Shares {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO entry_shares (entry_id, position, member_id, amount) VALUES (?, ?, ?, ?)",
				expense.ID, i, share.MemberID, share.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Snapshot reads the group, its entries and version in a single read transaction.
func (s *SQLiteStore) Snapshot(ctx context.Context, groupID string) (*storage.Snapshot, error) {
	tx, err := s.reader.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := loadGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	var version int64
	if err := tx.QueryRowContext(ctx, "SELECT version FROM groups WHERE id = ?", groupID).Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to get group version: %w", err)
	}

	entries, err := loadEntries(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	return &storage.Snapshot{Group: group, Entries: entries, Version: version}, nil
}

// Version returns the group's log version.
func (s *SQLiteStore) Version(ctx context.Context, groupID string) (int64, error) {
	var version int64
	err := s.reader.QueryRowContext(ctx, "SELECT version FROM groups WHERE id = ?", groupID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get group version: %w", err)
	}
	return version, nil
}

func loadEntries(ctx context.Context, tx *sql.Tx, groupID string) ([]models.Entry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, kind, description, amount, payer_id, payee_id, created_at, created_by
		 FROM ledger_entries WHERE group_id = ? ORDER BY seq`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	var (
		entries  []models.Entry
		expenses = make(map[string]*models.Expense)
	)
	for rows.Next() {
		var (
			id, kind, description, payer, createdBy string
			payee                                   sql.NullString
			amount, createdAt                       int64
		)
		if err := rows.Scan(&id, &kind, &description, &amount, &payer, &payee, &createdAt, &createdBy); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		switch models.EntryKind(kind) {
		case models.KindSettlement:
			entries = append(entries, &models.Settlement{
				ID:           id,
				GroupID:      groupID,
				FromMemberID: payer,
				ToMemberID:   payee.String,
				Amount:       amount,
				Note:         description,
				CreatedAt:    createdAt,
				CreatedBy:    createdBy,
			})
		default:
			e := &models.Expense{
				ID:          id,
				GroupID:     groupID,
				Description: description,
				Amount:      amount,
				PayerID:     payer,
				CreatedAt:   createdAt,
				CreatedBy:   createdBy,
			}
			expenses[id] = e
			entries = append(entries, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	if len(expenses) == 0 {
		return entries, nil
	}

	shareRows, err := tx.QueryContext(ctx,
		`SELECT s.entry_id, s.member_id, s.amount
		 FROM entry_shares s
		 JOIN ledger_entries e ON e.id = s.entry_id
		 WHERE e.group_id = ?
		 ORDER BY e.seq, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var (
			entryID string
			share   models.Share
		)
		if err := shareRows.Scan(&entryID, &share.MemberID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if e, ok := expenses[entryID]; ok {
			e.Shares = append(e.Shares, share)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return entries, nil
}
