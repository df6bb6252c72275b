package tracker

import (
	"context"
	"strings"
)

// Handler wraps one authenticated session. It is meant to be used by a
// single caller at a time and performs no locking of its own.
type Handler struct {
	service   RemoteService
	token     string
	request   *IssueRequest
	username  string
	formatter Formatter
	observer  Observer
}

// Username returns the account the session was opened for.
func (h *Handler) Username() string {
	return h.username
}

// AddComment posts c to the issue. The body is rendered by the session's
// Formatter and the author is always the session user.
func (h *Handler) AddComment(ctx context.Context, issueID string, c Comment) error {
	h.observer.OperationStarted(OpAddComment, issueID)

	remote := RemoteComment{
		Author:  h.username,
		Created: c.Created,
		Body:    h.formatter.Format(h.request, issueID, c),
	}
	// An empty comment carries no user content, so no visibility
	// restriction is applied to it.
	if c.Body != "" {
		remote.RoleLevel = c.RoleLevel
	}

	if err := h.service.AddComment(ctx, h.token, issueID, remote); err != nil {
		return h.fail(OpAddComment, issueID, err)
	}
	return nil
}

// Close progresses the issue through the first available action whose
// name contains autoCloseWord, ignoring case. When nothing matches the
// DefaultCloseActionID is used.
func (h *Handler) Close(ctx context.Context, issueID string, autoCloseWord string) error {
	h.observer.OperationStarted(OpClose, issueID)

	actions, err := h.service.GetAvailableActions(ctx, h.token, issueID)
	if err != nil {
		return h.fail(OpClose, issueID, err)
	}

	actionID := selectAction(actions, autoCloseWord)

	err = h.service.ProgressWorkflowAction(
		ctx, h.token, issueID, actionID, []FieldValue{},
	)
	if err != nil {
		return h.fail(OpClose, issueID, err)
	}
	return nil
}

// CommentExists reports whether any comment on the issue contains one of
// the search terms, ignoring case. An empty term matches any comment.
func (h *Handler) CommentExists(
	ctx context.Context,
	issueID string,
	terms ...string,
) (bool, error) {
	h.observer.OperationStarted(OpCheckComment, issueID)

	comments, err := h.service.GetComments(ctx, h.token, issueID)
	if err != nil {
		return false, h.fail(OpCheckComment, issueID, err)
	}

	needles := make([]string, 0, len(terms))
	for _, t := range terms {
		needles = append(needles, strings.ToLower(t))
	}

	for _, c := range comments {
		body := strings.ToLower(c.Body)
		for _, n := range needles {
			if strings.Contains(body, n) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Logout terminates the session. The handler must not be used afterwards.
func (h *Handler) Logout(ctx context.Context) error {
	h.observer.OperationStarted(OpLogout, "")

	if err := h.service.Logout(ctx, h.token); err != nil {
		return h.fail(OpLogout, "", err)
	}
	return nil
}

func (h *Handler) fail(op Op, issueID string, err error) error {
	h.observer.OperationFailed(op, issueID, err)
	return &OperationError{Op: op, IssueID: issueID, Err: err}
}

// selectAction returns the ID of the first action whose name contains
// word, or DefaultCloseActionID. An empty word matches the first action.
func selectAction(actions []RemoteAction, word string) string {
	word = strings.ToLower(word)
	for _, a := range actions {
		if strings.Contains(strings.ToLower(a.Name), word) {
			return a.ID
		}
	}
	return DefaultCloseActionID
}
