package store

import (
	"context"
	"errors"

	"github.com/nhle/jirabridge/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProcessedFilter controls filtering and pagination for processed-commit
// queries.
type ProcessedFilter struct {
	Repository *string
	IssueKey   *string
	Limit      int
	Offset     int
}

// Store defines the persistence interface for processed-commit markers.
type Store interface {
	// MarkProcessed records that every issue reference of a commit was
	// pushed to Jira. Marking the same commit twice replaces the record.
	MarkProcessed(ctx context.Context, pc model.ProcessedCommit) error

	// IsProcessed reports whether the commit has already been handled.
	IsProcessed(ctx context.Context, repository, commitID string) (bool, error)

	// GetProcessed lists markers, most recent first.
	GetProcessed(ctx context.Context, filter ProcessedFilter) ([]model.ProcessedCommit, error)

	// DeleteProcessed removes a marker so the commit is handled again.
	DeleteProcessed(ctx context.Context, id string) error
}
