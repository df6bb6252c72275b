package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/jirabridge/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// MarkProcessed inserts or replaces the marker for a commit.
// If the marker has no ID, a new UUID is generated.
func (s *SQLiteStore) MarkProcessed(
	ctx context.Context,
	pc model.ProcessedCommit,
) error {
	if pc.ID == "" {
		pc.ID = uuid.New().String()
	}
	if pc.ProcessedAt.IsZero() {
		pc.ProcessedAt = time.Now()
	}

	issueKeys, err := marshalKeys(pc.IssueKeys)
	if err != nil {
		return fmt.Errorf("marshaling issue_keys for commit %s: %w", pc.CommitID, err)
	}
	closedKeys, err := marshalKeys(pc.ClosedKeys)
	if err != nil {
		return fmt.Errorf("marshaling closed_keys for commit %s: %w", pc.CommitID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_commits (
			id, repository, commit_id, issue_keys, closed_keys, processed_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		pc.ID, pc.Repository, pc.CommitID,
		issueKeys, closedKeys, pc.ProcessedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("marking commit %s processed: %w", pc.CommitID, err)
	}

	return nil
}

// IsProcessed reports whether a marker exists for the commit.
func (s *SQLiteStore) IsProcessed(
	ctx context.Context,
	repository string,
	commitID string,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM processed_commits
		WHERE repository = ? AND commit_id = ?`,
		repository, commitID,
	)
	if err != nil {
		return false, fmt.Errorf("checking commit %s: %w", commitID, err)
	}
	return count > 0, nil
}

// GetProcessed retrieves markers matching the filter, most recent first.
func (s *SQLiteStore) GetProcessed(
	ctx context.Context,
	filter ProcessedFilter,
) ([]model.ProcessedCommit, error) {
	var conditions []string
	var args []interface{}

	if filter.Repository != nil {
		conditions = append(conditions, "repository = ?")
		args = append(args, *filter.Repository)
	}
	if filter.IssueKey != nil && *filter.IssueKey != "" {
		// Keys are stored as a JSON array of quoted strings.
		conditions = append(conditions, `issue_keys LIKE ? ESCAPE '\'`)
		args = append(args, `%"`+likeEscaper.Replace(*filter.IssueKey)+`"%`)
	}

	query := "SELECT * FROM processed_commits"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY processed_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying processed commits: %w", err)
	}
	defer rows.Close()

	var result []model.ProcessedCommit
	for rows.Next() {
		pc, err := scanProcessed(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pc)
	}

	return result, rows.Err()
}

// DeleteProcessed removes a marker by ID.
func (s *SQLiteStore) DeleteProcessed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM processed_commits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting processed commit %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("processed commit %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanProcessed scans a processed_commits row from a sqlx.Rows result set.
func scanProcessed(rows *sqlx.Rows) (model.ProcessedCommit, error) {
	var (
		pc          model.ProcessedCommit
		issueKeys   string
		closedKeys  string
		processedAt time.Time
	)

	err := rows.Scan(
		&pc.ID, &pc.Repository, &pc.CommitID,
		&issueKeys, &closedKeys, &processedAt,
	)
	if err != nil {
		return model.ProcessedCommit{}, fmt.Errorf("scanning processed commit row: %w", err)
	}

	pc.ProcessedAt = processedAt

	if err := unmarshalKeys(issueKeys, &pc.IssueKeys); err != nil {
		return model.ProcessedCommit{}, fmt.Errorf("unmarshaling issue_keys: %w", err)
	}
	if err := unmarshalKeys(closedKeys, &pc.ClosedKeys); err != nil {
		return model.ProcessedCommit{}, fmt.Errorf("unmarshaling closed_keys: %w", err)
	}

	return pc, nil
}

func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalKeys(data string, keys *[]string) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), keys)
}

// likeEscaper escapes LIKE wildcards for use with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// IsNotFound reports whether err means a record did not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
