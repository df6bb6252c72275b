package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_commits (
	id           TEXT PRIMARY KEY,
	repository   TEXT NOT NULL,
	commit_id    TEXT NOT NULL,
	issue_keys   TEXT NOT NULL DEFAULT '[]',
	closed_keys  TEXT NOT NULL DEFAULT '[]',
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(repository, commit_id)
);

CREATE INDEX IF NOT EXISTS idx_processed_commits_repository
	ON processed_commits(repository);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_processed_commits_processed_at
	ON processed_commits(processed_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
