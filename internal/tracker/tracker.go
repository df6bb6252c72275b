// Package tracker builds authenticated sessions against a remote Jira
// instance and exposes the issue operations a commit bridge needs:
// commenting, closing, and checking for an existing comment.
package tracker

import (
	"context"
	"time"

	"github.com/nhle/jirabridge/internal/model"
)

// ServicePath is appended to the configured base URL to reach the
// legacy SOAP RPC endpoint.
const ServicePath = "/rpc/soap/jirasoapservice-v2"

// DefaultCloseActionID is the workflow action used when no available
// action matches the auto-close word. It is the "Close Issue" transition
// of the stock Jira workflow.
const DefaultCloseActionID = "2"

// ConnectionConfig holds the connection settings that stay fixed for the
// lifetime of a session.
type ConnectionConfig struct {
	BaseURL string
}

// IssueRequest is the caller-owned context for a batch of issue updates.
// It is handed to the Formatter on every comment.
type IssueRequest struct {
	Config ConnectionConfig
	Commit model.Commit
}

// Comment is the domain representation of a comment to post.
type Comment struct {
	Created   time.Time
	Body      string
	RoleLevel string
}

// RemoteComment is a comment as the remote tracker represents it.
type RemoteComment struct {
	ID        string
	Author    string
	Body      string
	RoleLevel string
	Created   time.Time
}

// RemoteAction is a workflow transition available on an issue.
type RemoteAction struct {
	ID   string
	Name string
}

// FieldValue sets a field while progressing a workflow action.
type FieldValue struct {
	ID     string
	Values []string
}

// RemoteService is the set of remote procedures a session relies on.
// The jirasoap package provides the SOAP implementation.
type RemoteService interface {
	// Login authenticates and returns an opaque session token.
	Login(ctx context.Context, username, password string) (string, error)

	// Logout invalidates the session token.
	Logout(ctx context.Context, token string) error

	// AddComment appends a comment to an issue.
	AddComment(ctx context.Context, token, issueID string, c RemoteComment) error

	// GetAvailableActions lists the workflow actions available on an
	// issue, in the order the tracker returns them.
	GetAvailableActions(ctx context.Context, token, issueID string) ([]RemoteAction, error)

	// ProgressWorkflowAction runs a workflow action on an issue.
	ProgressWorkflowAction(
		ctx context.Context,
		token, issueID, actionID string,
		fields []FieldValue,
	) error

	// GetComments lists the comments on an issue.
	GetComments(ctx context.Context, token, issueID string) ([]RemoteComment, error)
}

// Dialer resolves a RemoteService bound to the given endpoint.
type Dialer func(ctx context.Context, endpoint string) (RemoteService, error)

// Formatter renders the body of a comment before it is sent.
type Formatter interface {
	Format(req *IssueRequest, issueID string, c Comment) string
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(req *IssueRequest, issueID string, c Comment) string

// Format calls f(req, issueID, c).
func (f FormatterFunc) Format(req *IssueRequest, issueID string, c Comment) string {
	return f(req, issueID, c)
}

// PlainFormatter sends the comment body unchanged.
var PlainFormatter Formatter = FormatterFunc(
	func(_ *IssueRequest, _ string, c Comment) string {
		return c.Body
	},
)

// Observer is notified at fixed points of a session's life.
type Observer interface {
	SessionStarted(endpoint, username string)
	OperationStarted(op Op, issueID string)
	OperationFailed(op Op, issueID string, err error)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) SessionStarted(string, string)     {}
func (NopObserver) OperationStarted(Op, string)       {}
func (NopObserver) OperationFailed(Op, string, error) {}
