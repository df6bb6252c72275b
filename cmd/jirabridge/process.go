package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/jirabridge/internal/bridge"
	"github.com/nhle/jirabridge/internal/format"
	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/theme"
	"github.com/nhle/jirabridge/internal/tracker"
)

type processFlags struct {
	commit    string
	author    string
	branch    string
	repo      string
	url       string
	message   string
	timestamp string
	jsonInput bool
}

func newProcessCmd(a *app) *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Comment on and close the issues a commit references",
		Long: `Process reads a single commit from flags, with the message taken from
--message or standard input, and pushes its issue references to Jira.

With --json, standard input holds a JSON array of commits instead:
  [{"id": "...", "author": "...", "repository": "...", "message": "..."}]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			commits, err := readCommits(cmd.InOrStdin(), f)
			if err != nil {
				return err
			}
			return a.process(cmd, commits)
		},
	}

	cmd.Flags().StringVar(&f.commit, "commit", "", "commit hash")
	cmd.Flags().StringVar(&f.author, "author", "", "commit author")
	cmd.Flags().StringVar(&f.branch, "branch", "", "branch the commit was pushed to")
	cmd.Flags().StringVar(&f.repo, "repo", "", "repository name")
	cmd.Flags().StringVar(&f.url, "url", "", "link to the commit")
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "commit message (default: read from stdin)")
	cmd.Flags().StringVar(&f.timestamp, "timestamp", "", "commit time in RFC 3339 (default: now)")
	cmd.Flags().BoolVar(&f.jsonInput, "json", false, "read a JSON array of commits from stdin")

	return cmd
}

// readCommits builds the commits to process from flags or stdin.
func readCommits(stdin io.Reader, f processFlags) ([]model.Commit, error) {
	if f.jsonInput {
		var commits []model.Commit
		if err := json.NewDecoder(stdin).Decode(&commits); err != nil {
			return nil, fmt.Errorf("decoding commits: %w", err)
		}
		for i, c := range commits {
			if c.ID == "" {
				return nil, fmt.Errorf("commit %d has no id", i)
			}
		}
		return commits, nil
	}

	if f.commit == "" {
		return nil, fmt.Errorf("--commit is required")
	}
	if f.repo == "" {
		return nil, fmt.Errorf("--repo is required")
	}

	message := f.message
	if message == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading commit message: %w", err)
		}
		message = strings.TrimSpace(string(data))
	}

	c := model.Commit{
		ID:         f.commit,
		Author:     f.author,
		Branch:     f.branch,
		Repository: f.repo,
		Message:    message,
		URL:        f.url,
	}
	if f.timestamp != "" {
		ts, err := time.Parse(time.RFC3339, f.timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing --timestamp: %w", err)
		}
		c.Timestamp = ts
	}
	return []model.Commit{c}, nil
}

func (a *app) process(cmd *cobra.Command, commits []model.Commit) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	tmpl, err := format.New(a.cfg.Comment.Template, format.WithLogger(a.logger))
	if err != nil {
		return err
	}

	pw, err := a.password(a.cfg)
	if err != nil {
		return fmt.Errorf("loading jira password (run 'jirabridge credential set'): %w", err)
	}

	s, closeStore, err := a.openStore(a.cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = closeStore() }()

	p := bridge.NewProcessor(
		a.factory(tracker.WithFormatter(tmpl)),
		s,
		bridge.OptionsFromConfig(a.cfg, pw),
		a.logger,
	)

	result, err := p.Process(cmd.Context(), commits)
	printResult(cmd.OutOrStdout(), result)
	return err
}

func printResult(w io.Writer, r *bridge.Result) {
	if r == nil {
		return
	}

	var lines []string
	for _, key := range r.Commented {
		lines = append(lines, theme.OutcomeStyle("commented").Render("commented")+" "+theme.IssueKeyStyle.Render(key))
	}
	for _, key := range r.Closed {
		lines = append(lines, theme.OutcomeStyle("closed").Render("closed")+" "+theme.IssueKeyStyle.Render(key))
	}
	for _, id := range r.Skipped {
		lines = append(lines, theme.OutcomeStyle("skipped").Render("skipped")+" "+theme.HintStyle.Render(shortID(id)))
	}

	summary := fmt.Sprintf("%d processed, %d skipped", len(r.Processed), len(r.Skipped))
	lines = append(lines, theme.HintStyle.Render(summary))

	fmt.Fprintln(w, theme.SummaryStyle.Render(strings.Join(lines, "\n")))
}

func shortID(id string) string {
	return model.Commit{ID: id}.ShortID()
}
