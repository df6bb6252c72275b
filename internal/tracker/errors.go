package tracker

import (
	"errors"
	"fmt"
)

// Op identifies a session operation for error reporting and logging.
type Op string

const (
	OpConnect      Op = "connect"
	OpAddComment   Op = "add_comment"
	OpClose        Op = "close"
	OpCheckComment Op = "check_comment"
	OpLogout       Op = "logout"
)

// ConnectionError is returned when a session cannot be established.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not connect to jira at %s", e.URL)
	}
	return fmt.Sprintf("could not connect to jira at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MalformedURLError is a ConnectionError for an endpoint address that
// cannot be parsed. It is returned before any network call is made.
type MalformedURLError struct {
	ConnectionError
}

func newMalformedURLError(rawURL string, err error) *MalformedURLError {
	return &MalformedURLError{ConnectionError{URL: rawURL, Err: err}}
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed jira url %q: %v", e.URL, e.Err)
}

// As lets errors.As match a *MalformedURLError against *ConnectionError.
func (e *MalformedURLError) As(target any) bool {
	if t, ok := target.(**ConnectionError); ok {
		*t = &e.ConnectionError
		return true
	}
	return false
}

// OperationError is returned when a remote call made on an established
// session fails.
type OperationError struct {
	Op      Op
	IssueID string
	Err     error
}

// Description is the human-readable summary of the failed operation.
func (e *OperationError) Description() string {
	switch e.Op {
	case OpAddComment:
		return fmt.Sprintf("failed to add comment to issue %s", e.IssueID)
	case OpClose:
		return fmt.Sprintf("failed to close issue %s", e.IssueID)
	case OpCheckComment:
		return fmt.Sprintf("could not check for jira comment at issue %s", e.IssueID)
	case OpLogout:
		return "failed to logout"
	default:
		return fmt.Sprintf("jira operation %s failed", e.Op)
	}
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Description()
	}
	return e.Description() + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err (or any error in its chain) is a
// ConnectionError, including a MalformedURLError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsOperationError reports whether err (or any error in its chain) is an
// OperationError for op. An empty op matches any operation.
func IsOperationError(err error, op Op) bool {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return false
	}
	return op == "" || opErr.Op == op
}
