// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	sqlitedriver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
//
// Writes go through a single connection whose transactions start with
// BEGIN IMMEDIATE, which serializes appends. Reads use a separate pool and,
// in WAL mode, see a consistent snapshot for the duration of a transaction.
type SQLiteStore struct {
	writer *sql.DB
	reader *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dsn(dbPath, false)); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	writer, err := sql.Open("sqlite", dsn(dbPath, true))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn(dbPath, false))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := writer.Ping(); err != nil {
		writer.Close()
		reader.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{writer: writer, reader: reader}, nil
}

func dsn(path string, immediate bool) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	if immediate {
		q.Set("_txlock", "immediate")
	}
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database connections.
func (s *SQLiteStore) Close() error {
	return errors.Join(s.writer.Close(), s.reader.Close())
}

// CreateGroup persists a new group and its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	storage.FillGroupDefaults(group)

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, type, version, created_at) VALUES (?, ?, ?, 0, ?)",
		group.ID, group.Name, string(group.Type), group.CreatedAt,
	)
	if isConstraintError(err) {
		return fmt.Errorf("group already exists: %s", group.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, m := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, member_id, display_name, joined_at) VALUES (?, ?, ?, ?)",
			group.ID, m.ID, m.DisplayName, m.JoinedAt,
		)
		if isConstraintError(err) {
			return fmt.Errorf("%w: %s", storage.ErrMemberExists, m.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddMember adds a member to an existing group.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID string, member models.Member) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := groupExists(ctx, tx, groupID); err != nil {
		return err
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND member_id = ?", groupID, member.ID,
	).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: %s", storage.ErrMemberExists, member.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check member: %w", err)
	}

	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, member_id, display_name, joined_at) VALUES (?, ?, ?, ?)",
		groupID, member.ID, member.DisplayName, member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE groups SET version = version + 1 WHERE id = ?", groupID); err != nil {
		return fmt.Errorf("failed to bump group version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return loadGroup(ctx, s.reader, groupID)
}

// ListGroupsByMember retrieves every group the member belongs to, oldest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.member_id = ?
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
		group, err := loadGroup(ctx, s.reader, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func groupExists(ctx context.Context, q queryer, groupID string) error {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	return nil
}

func loadGroup(ctx context.Context, q queryer, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var groupType string
	err := q.QueryRowContext(ctx,
		"SELECT id, name, type, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &groupType, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Type = models.NormalizeGroupType(groupType)

	rows, err := q.QueryContext(ctx,
		"SELECT member_id, display_name, joined_at FROM group_members WHERE group_id = ? ORDER BY joined_at, member_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return group, nil
}

// isConstraintError reports whether err is a SQLite constraint violation.
func isConstraintError(err error) bool {
	var se *sqlitedriver.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
