package tracker

import (
	"context"
	"errors"
	"testing"
)

// fakeService records calls and returns canned results.
type fakeService struct {
	token string

	loginErr    error
	logoutErr   error
	commentErr  error
	actionsErr  error
	progressErr error
	commentsErr error

	actions  []RemoteAction
	comments []RemoteComment

	loginCalls    int
	logoutTokens  []string
	added         []RemoteComment
	addedIssues   []string
	progressed    []string
	progressField [][]FieldValue
}

func (f *fakeService) Login(_ context.Context, username, password string) (string, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	if f.token == "" {
		return "token-" + username, nil
	}
	return f.token, nil
}

func (f *fakeService) Logout(_ context.Context, token string) error {
	f.logoutTokens = append(f.logoutTokens, token)
	return f.logoutErr
}

func (f *fakeService) AddComment(_ context.Context, _ string, issueID string, c RemoteComment) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.addedIssues = append(f.addedIssues, issueID)
	f.added = append(f.added, c)
	return nil
}

func (f *fakeService) GetAvailableActions(_ context.Context, _ string, _ string) ([]RemoteAction, error) {
	if f.actionsErr != nil {
		return nil, f.actionsErr
	}
	return f.actions, nil
}

func (f *fakeService) ProgressWorkflowAction(
	_ context.Context,
	_ string,
	_ string,
	actionID string,
	fields []FieldValue,
) error {
	if f.progressErr != nil {
		return f.progressErr
	}
	f.progressed = append(f.progressed, actionID)
	f.progressField = append(f.progressField, fields)
	return nil
}

func (f *fakeService) GetComments(_ context.Context, _ string, _ string) ([]RemoteComment, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.comments, nil
}

// recordingObserver captures observer notifications.
type recordingObserver struct {
	sessions []string
	started  []Op
	failed   []Op
}

func (r *recordingObserver) SessionStarted(endpoint, _ string) {
	r.sessions = append(r.sessions, endpoint)
}

func (r *recordingObserver) OperationStarted(op Op, _ string) {
	r.started = append(r.started, op)
}

func (r *recordingObserver) OperationFailed(op Op, _ string, _ error) {
	r.failed = append(r.failed, op)
}

var errTransport = errors.New("connection reset by peer")

func dialerFor(svc RemoteService) Dialer {
	return func(context.Context, string) (RemoteService, error) {
		return svc, nil
	}
}

func newTestHandler(t *testing.T, svc *fakeService, opts ...FactoryOption) *Handler {
	t.Helper()
	req := &IssueRequest{Config: ConnectionConfig{BaseURL: "https://jira.example.com"}}
	h, err := NewFactory(dialerFor(svc), opts...).CreateSession(
		context.Background(), req, "bot", "secret",
	)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return h
}
