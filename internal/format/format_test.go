package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nhle/jirabridge/internal/logging"
	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/tracker"
)

func testRequest() *tracker.IssueRequest {
	return &tracker.IssueRequest{
		Config: tracker.ConnectionConfig{BaseURL: "https://jira.example.com"},
		Commit: model.Commit{
			ID:         "abc1234567890",
			Author:     "alice",
			Repository: "api",
			Branch:     "main",
			Message:    "Fix PROJ-1 crash",
			URL:        "https://git.example.com/api/commit/abc1234567890",
		},
	}
}

func TestDefaultTemplate(t *testing.T) {
	tmpl, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("uses commit message when body is empty", func(t *testing.T) {
		got := tmpl.Format(testRequest(), "PROJ-1", tracker.Comment{})
		want := "alice referenced this issue in commit abc1234 on api (main):\n\n" +
			"Fix PROJ-1 crash\n\n" +
			"https://git.example.com/api/commit/abc1234567890"
		if got != want {
			t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
		}
	})

	t.Run("prefers comment body", func(t *testing.T) {
		req := testRequest()
		req.Commit.URL = ""
		req.Commit.Branch = ""

		got := tmpl.Format(req, "PROJ-1", tracker.Comment{Body: "Deployed"})
		want := "alice referenced this issue in commit abc1234 on api:\n\nDeployed"
		if got != want {
			t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
		}
	})
}

func TestCustomTemplate(t *testing.T) {
	tmpl, err := New("{{.Issue}} @ {{.BaseURL}}: {{.Comment.Body}}")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := tmpl.Format(testRequest(), "PROJ-9", tracker.Comment{Body: "hi"})
	if got != "PROJ-9 @ https://jira.example.com: hi" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTemplateErrors(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		if _, err := New("{{.Issue"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unknown field rejected up front", func(t *testing.T) {
		_, err := New("{{.Missing}}")
		if err == nil || !strings.Contains(err.Error(), "checking comment template") {
			t.Errorf("expected check error, got %v", err)
		}
	})

	t.Run("execution failure is logged", func(t *testing.T) {
		var logs bytes.Buffer
		tmpl, err := New(
			"{{if .Commit.URL}}{{index .Commit.URL 200}}{{end}}{{.Comment.Body}}",
			WithLogger(logging.New(&logs, "warn", logging.FormatText)),
		)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got := tmpl.Format(testRequest(), "PROJ-1", tracker.Comment{Body: "raw"})
		if got != "raw" {
			t.Errorf("expected raw body fallback, got %q", got)
		}
		out := logs.String()
		if !strings.Contains(out, "comment template failed") || !strings.Contains(out, "issue=PROJ-1") {
			t.Errorf("expected logged failure, got %q", out)
		}
	})
}

func TestNilRequest(t *testing.T) {
	tmpl, err := New("{{.Issue}}:{{.Comment.Body}}")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := tmpl.Format(nil, "A-1", tracker.Comment{Body: "x"}); got != "A-1:x" {
		t.Errorf("unexpected output %q", got)
	}
}
