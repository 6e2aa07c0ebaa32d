// Package postgres implements storage.Store on PostgreSQL through the pgx
// database/sql driver. Appends lock the group row with SELECT ... FOR UPDATE,
// so writers to one group are serialized while other groups proceed.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database. The schema must already exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open migrates the database at dsn and returns a Store connected to it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := Migrate(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateGroup inserts the group and its members in one transaction.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	storage.FillGroupDefaults(group)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, type, version, created_at) VALUES ($1, $2, $3, 0, $4)`,
		group.ID, group.Name, string(group.Type), group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group already exists: %s", group.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, m := range group.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, member_id, display_name, joined_at) VALUES ($1, $2, $3, $4)`,
			group.ID, m.ID, m.DisplayName, m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddMember adds a member under the group's row lock.
func (s *Store) AddMember(ctx context.Context, groupID string, member models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockGroup(ctx, tx, groupID); err != nil {
		return err
	}

	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, member_id, display_name, joined_at) VALUES ($1, $2, $3, $4)`,
		groupID, member.ID, member.DisplayName, member.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", storage.ErrMemberExists, member.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE groups SET version = version + 1 WHERE id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to bump group version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup returns the group and its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, _, err := loadGroup(ctx, s.db, groupID, false)
	return group, err
}

// ListGroupsByMember returns the member's groups, oldest first.
func (s *Store) ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.member_id = $1
		 ORDER BY g.created_at, g.id`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, _, err := loadGroup(ctx, s.db, id, false)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func lockGroup(ctx context.Context, tx *sql.Tx, groupID string) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock group: %w", err)
	}
	return version, nil
}

// loadGroup reads the group row, its version and its members. With forUpdate
// the group row stays locked until the transaction ends.
func loadGroup(ctx context.Context, q queryer, groupID string, forUpdate bool) (*models.Group, int64, error) {
	query := `SELECT id, name, type, version, created_at FROM groups WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	group := &models.Group{}
	var (
		groupType string
		version   int64
	)
	err := q.QueryRowContext(ctx, query, groupID).Scan(&group.ID, &group.Name, &groupType, &version, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get group: %w", err)
	}
	group.Type = models.NormalizeGroupType(groupType)

	rows, err := q.QueryContext(ctx,
		`SELECT member_id, display_name, joined_at FROM group_members
		 WHERE group_id = $1 ORDER BY joined_at, member_id`,
		groupID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate members: %w", err)
	}

	return group, version, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
