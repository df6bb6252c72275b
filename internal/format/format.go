// Package format renders the body of the comments the bridge posts to
// Jira from a commit.
package format

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/nhle/jirabridge/internal/logging"
	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/tracker"
)

// DefaultTemplate is used when no custom template is configured.
const DefaultTemplate = `{{.Commit.Author}} referenced this issue in commit {{.Commit.ShortID}}
{{- if .Commit.Repository}} on {{.Commit.Repository}}{{end}}
{{- if .Commit.Branch}} ({{.Commit.Branch}}){{end}}:
{{if .Comment.Body}}
{{.Comment.Body}}
{{else}}
{{.Commit.Message}}
{{end}}
{{- if .Commit.URL}}
{{.Commit.URL}}{{end}}`

// Data is the value a template is executed against.
type Data struct {
	Issue   string
	BaseURL string
	Commit  model.Commit
	Comment tracker.Comment
}

// sampleData is executed once in New so that references to unknown
// fields are reported with the configuration instead of per comment.
var sampleData = Data{
	Issue:   "PROJ-1",
	BaseURL: "https://jira.example.com",
	Commit: model.Commit{
		ID:         "0123456789abcdef",
		Author:     "alice",
		Repository: "api",
		Message:    "Fix PROJ-1",
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	},
	Comment: tracker.Comment{Body: "Fix PROJ-1"},
}

// Template is a tracker.Formatter backed by a text/template.
type Template struct {
	tmpl   *template.Template
	logger *slog.Logger
}

var _ tracker.Formatter = (*Template)(nil)

// Option configures a Template.
type Option func(*Template)

// WithLogger sets the logger that reports templates failing at
// execution time.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New parses text into a Template and executes it against sample data.
// An empty text selects DefaultTemplate.
func New(text string, opts ...Option) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}

	tmpl, err := template.New("comment").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing comment template: %w", err)
	}
	if err := tmpl.Execute(&bytes.Buffer{}, sampleData); err != nil {
		return nil, fmt.Errorf("checking comment template: %w", err)
	}

	t := &Template{tmpl: tmpl, logger: logging.Discard()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Format renders the comment. If the template fails at execution time
// the failure is logged and the raw comment body is returned so a
// comment is still posted.
func (t *Template) Format(req *tracker.IssueRequest, issueID string, c tracker.Comment) string {
	data := Data{Issue: issueID, Comment: c}
	if req != nil {
		data.BaseURL = req.Config.BaseURL
		data.Commit = req.Commit
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		t.logger.Warn("comment template failed, posting raw body",
			"issue", issueID,
			"error", err,
		)
		return c.Body
	}
	return strings.TrimSpace(buf.String())
}
