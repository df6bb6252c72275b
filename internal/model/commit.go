package model

import "time"

// shortIDLen is the length of an abbreviated commit hash.
const shortIDLen = 7

// Commit is a version-control commit whose message may reference
// Jira issues.
type Commit struct {
	// ID is the full commit hash.
	ID string `json:"id"`

	// Author is the committer's display name or login.
	Author string `json:"author"`

	// Branch is the branch the commit was pushed to, if known.
	Branch string `json:"branch,omitempty"`

	// Repository names the repository the commit belongs to.
	Repository string `json:"repository"`

	// Message is the full commit message.
	Message string `json:"message"`

	// URL links to the commit in a web viewer, if known.
	URL string `json:"url,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// ShortID returns the abbreviated commit hash.
func (c Commit) ShortID() string {
	if len(c.ID) <= shortIDLen {
		return c.ID
	}
	return c.ID[:shortIDLen]
}

// ProcessedCommit marks a commit whose issue references have all been
// pushed to Jira.
type ProcessedCommit struct {
	ID          string    `json:"id" db:"id"`
	Repository  string    `json:"repository" db:"repository"`
	CommitID    string    `json:"commit_id" db:"commit_id"`
	IssueKeys   []string  `json:"issue_keys" db:"-"`
	ClosedKeys  []string  `json:"closed_keys" db:"-"`
	ProcessedAt time.Time `json:"processed_at" db:"processed_at"`
}
