package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/store"
	"github.com/nhle/jirabridge/internal/testutil"
	"github.com/nhle/jirabridge/internal/tracker"
)

// stubService is a single-issue tracker used by the command tests.
type stubService struct {
	comments map[string][]tracker.RemoteComment
	closed   map[string]string
	password string
}

func (s *stubService) Login(_ context.Context, _, password string) (string, error) {
	s.password = password
	return "token", nil
}

func (s *stubService) Logout(context.Context, string) error { return nil }

func (s *stubService) AddComment(_ context.Context, _, issueID string, c tracker.RemoteComment) error {
	s.comments[issueID] = append(s.comments[issueID], c)
	return nil
}

func (s *stubService) GetAvailableActions(context.Context, string, string) ([]tracker.RemoteAction, error) {
	return []tracker.RemoteAction{{ID: "5", Name: "Resolve Issue"}, {ID: "2", Name: "Close Issue"}}, nil
}

func (s *stubService) ProgressWorkflowAction(_ context.Context, _, issueID, actionID string, _ []tracker.FieldValue) error {
	s.closed[issueID] = actionID
	return nil
}

func (s *stubService) GetComments(_ context.Context, _, issueID string) ([]tracker.RemoteComment, error) {
	return s.comments[issueID], nil
}

// testApp wires an app to a stub tracker and an in-memory store.
func testApp(t *testing.T) (*app, *stubService, store.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := `
jira:
  base_url: https://jira.example.com
  username: bot
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	svc := &stubService{
		comments: make(map[string][]tracker.RemoteComment),
		closed:   make(map[string]string),
	}
	s := testutil.NewTestStore(t)

	a := newApp()
	a.configPath = path
	a.dial = func(*model.AppConfig) tracker.Dialer {
		return func(context.Context, string) (tracker.RemoteService, error) { return svc, nil }
	}
	a.password = func(*model.AppConfig) (string, error) { return "s3cret", nil }
	a.promptPassword = func(string) (string, error) { return "prompted", nil }
	a.openStore = func(string) (store.Store, func() error, error) {
		return s, func() error { return nil }, nil
	}
	return a, svc, s
}

func execute(a *app, stdin string, args ...string) (string, error) {
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", a.configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(newApp())

	want := []string{"process", "comment", "close", "history", "forget", "credential", "config"}
	have := make(map[string]bool)
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestProcessCommand(t *testing.T) {
	a, svc, s := testApp(t)

	out, err := execute(a, "Fixes PROJ-7 by trimming input\n",
		"process", "--commit", "0123456789abcdef", "--repo", "api", "--author", "alice")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if svc.password != "s3cret" {
		t.Errorf("expected stored password to be used, got %q", svc.password)
	}
	posted := svc.comments["PROJ-7"]
	if len(posted) != 1 {
		t.Fatalf("expected one comment, got %d", len(posted))
	}
	if !strings.Contains(posted[0].Body, "alice referenced this issue in commit 0123456") {
		t.Errorf("unexpected comment body %q", posted[0].Body)
	}
	if svc.closed["PROJ-7"] != "2" {
		t.Errorf("expected PROJ-7 closed with action 2, got %v", svc.closed)
	}
	if !strings.Contains(out, "1 processed") {
		t.Errorf("unexpected output %q", out)
	}

	done, err := s.IsProcessed(context.Background(), "api", "0123456789abcdef")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if !done {
		t.Error("commit should be recorded")
	}

	out, err = execute(a, "", "history", "--issue", "PROJ-7")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "0123456") {
		t.Errorf("history should list the commit, got %q", out)
	}
}

func TestProcessCommandJSON(t *testing.T) {
	a, svc, _ := testApp(t)

	input := `[
  {"id": "aaaaaaaaaa", "author": "alice", "repository": "api", "message": "PROJ-1 start"},
  {"id": "bbbbbbbbbb", "author": "bob", "repository": "api", "message": "no keys here"}
]`
	out, err := execute(a, input, "process", "--json")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(svc.comments["PROJ-1"]) != 1 {
		t.Errorf("expected comment on PROJ-1, got %+v", svc.comments)
	}
	if !strings.Contains(out, "1 processed, 1 skipped") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestReadCommitsValidation(t *testing.T) {
	tests := []struct {
		name  string
		flags processFlags
		stdin string
	}{
		{"missing commit", processFlags{repo: "api"}, "msg"},
		{"missing repo", processFlags{commit: "abc"}, "msg"},
		{"bad timestamp", processFlags{commit: "abc", repo: "api", timestamp: "yesterday"}, "msg"},
		{"bad json", processFlags{jsonInput: true}, "{"},
		{"json without id", processFlags{jsonInput: true}, `[{"message": "PROJ-1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readCommits(strings.NewReader(tt.stdin), tt.flags); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCommitsMessageFlag(t *testing.T) {
	commits, err := readCommits(strings.NewReader("ignored"), processFlags{
		commit:    "abc",
		repo:      "api",
		message:   "PROJ-1 from flag",
		timestamp: "2024-03-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("readCommits failed: %v", err)
	}
	if commits[0].Message != "PROJ-1 from flag" {
		t.Errorf("unexpected message %q", commits[0].Message)
	}
	if commits[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be parsed")
	}
}

func TestCommentAndCloseCommands(t *testing.T) {
	a, svc, _ := testApp(t)

	if _, err := execute(a, "", "comment", "PROJ-2", "deployed", "to", "staging", "--role", "Developers"); err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	posted := svc.comments["PROJ-2"]
	if len(posted) != 1 || posted[0].Body != "deployed to staging" {
		t.Fatalf("unexpected comments %+v", posted)
	}
	if posted[0].RoleLevel != "Developers" {
		t.Errorf("unexpected role level %q", posted[0].RoleLevel)
	}

	if _, err := execute(a, "", "close", "PROJ-2", "--word", "resolve"); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if svc.closed["PROJ-2"] != "5" {
		t.Errorf("expected resolve action 5, got %q", svc.closed["PROJ-2"])
	}
}

func TestForgetUnknownID(t *testing.T) {
	a, _, _ := testApp(t)

	_, err := execute(a, "", "forget", "missing")
	if err == nil || !strings.Contains(err.Error(), "no processed commit") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	a, _, _ := testApp(t)

	out, err := execute(a, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "base_url: https://jira.example.com") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestValidateURL(t *testing.T) {
	if err := validateURL("https://jira.example.com"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	for _, bad := range []string{"", "jira.example.com", "://x"} {
		if err := validateURL(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestProcessRejectsBrokenTemplate(t *testing.T) {
	a, svc, _ := testApp(t)

	cfg := `
jira:
  base_url: https://jira.example.com
  username: bot
comment:
  template: "{{.Commit.Hash}}"
`
	if err := os.WriteFile(a.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := execute(a, "PROJ-1 change\n", "process", "--commit", "abc", "--repo", "api")
	if err == nil || !strings.Contains(err.Error(), "checking comment template") {
		t.Fatalf("expected template error, got %v", err)
	}
	if len(svc.comments) != 0 {
		t.Errorf("nothing should be posted, got %+v", svc.comments)
	}
}
