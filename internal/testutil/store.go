package testutil

import (
	"context"
	"testing"

	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/store"
)

// NewTestStore creates an in-memory processed-commit store with all
// migrations applied, seeded with markers. It is closed when the test
// completes.
func NewTestStore(t *testing.T, markers ...model.ProcessedCommit) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	for _, m := range markers {
		if err := s.MarkProcessed(context.Background(), m); err != nil {
			t.Fatalf("seeding commit %s: %v", m.CommitID, err)
		}
	}

	return s
}
