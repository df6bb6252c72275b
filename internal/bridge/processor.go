// Package bridge pushes commit activity into Jira: it finds the issue
// references in each commit message, comments on every referenced issue
// once, and closes issues the message marks as resolved.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/jirabridge/internal/crossref"
	"github.com/nhle/jirabridge/internal/logging"
	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/store"
	"github.com/nhle/jirabridge/internal/tracker"
)

// Options carries the connection and workflow settings for a Processor.
type Options struct {
	BaseURL  string
	Username string
	Password string

	// AutoCloseWord picks the workflow action used to close issues.
	AutoCloseWord string

	// CloseWords are the message verbs that mark a reference for closing.
	CloseWords []string

	// CloseIssues enables the close transition.
	CloseIssues bool

	// RoleLevel restricts comment visibility to a project role.
	RoleLevel string
}

// OptionsFromConfig maps the application configuration onto Options.
func OptionsFromConfig(cfg *model.AppConfig, password string) Options {
	return Options{
		BaseURL:       cfg.Jira.BaseURL,
		Username:      cfg.Jira.Username,
		Password:      password,
		AutoCloseWord: cfg.Jira.AutoCloseWord,
		CloseWords:    cfg.Jira.CloseWords,
		CloseIssues:   cfg.Jira.CloseIssues,
		RoleLevel:     cfg.Comment.RoleLevel,
	}
}

// Result summarizes a Process run. Processed and Skipped hold commit
// IDs; Commented and Closed hold issue keys in the order they were
// touched.
type Result struct {
	Processed []string
	Skipped   []string
	Commented []string
	Closed    []string
}

// Processor applies commits to Jira through tracker sessions and records
// finished commits in the store.
type Processor struct {
	factory *tracker.Factory
	store   store.Store
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// NewProcessor creates a Processor. A nil logger discards output.
func NewProcessor(
	factory *tracker.Factory,
	s store.Store,
	opts Options,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = logging.Discard()
	}
	if len(opts.CloseWords) == 0 {
		opts.CloseWords = crossref.DefaultCloseWords
	}
	return &Processor{
		factory: factory,
		store:   s,
		opts:    opts,
		logger:  logger.With("component", "bridge"),
		now:     time.Now,
	}
}

// Process handles commits in order. Commits that were already processed
// or reference no issue are skipped. The first commit that fails stops
// the run; the partial Result is returned alongside the error.
func (p *Processor) Process(ctx context.Context, commits []model.Commit) (*Result, error) {
	result := &Result{}

	for _, commit := range commits {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		done, err := p.store.IsProcessed(ctx, commit.Repository, commit.ID)
		if err != nil {
			return result, fmt.Errorf("checking commit %s: %w", commit.ShortID(), err)
		}
		if done {
			p.logger.Debug("commit already processed", "commit", commit.ShortID())
			result.Skipped = append(result.Skipped, commit.ID)
			continue
		}

		refs := crossref.ParseCommit(commit.Message, p.opts.CloseWords)
		if len(refs) == 0 {
			p.logger.Debug("commit has no issue references", "commit", commit.ShortID())
			result.Skipped = append(result.Skipped, commit.ID)
			continue
		}

		if err := p.processCommit(ctx, commit, refs, result); err != nil {
			return result, err
		}
		result.Processed = append(result.Processed, commit.ID)
	}

	return result, nil
}

// processCommit opens a session bound to commit, applies every reference
// and marks the commit processed. The session is always logged out.
func (p *Processor) processCommit(
	ctx context.Context,
	commit model.Commit,
	refs []crossref.Reference,
	result *Result,
) (err error) {
	req := &tracker.IssueRequest{
		Config: tracker.ConnectionConfig{BaseURL: p.opts.BaseURL},
		Commit: commit,
	}

	handler, err := p.factory.CreateSession(ctx, req, p.opts.Username, p.opts.Password)
	if err != nil {
		return err
	}
	defer func() {
		if logoutErr := handler.Logout(ctx); logoutErr != nil {
			err = errors.Join(err, logoutErr)
		}
	}()

	var closed []string
	for _, ref := range refs {
		commented, err := p.comment(ctx, handler, commit, ref.Key)
		if err != nil {
			return err
		}
		if commented {
			result.Commented = append(result.Commented, ref.Key)
		}

		if !ref.Close || !p.opts.CloseIssues {
			continue
		}
		if err := handler.Close(ctx, ref.Key, p.opts.AutoCloseWord); err != nil {
			return err
		}
		p.logger.Info("closed issue", "issue", ref.Key, "commit", commit.ShortID())
		closed = append(closed, ref.Key)
		result.Closed = append(result.Closed, ref.Key)
	}

	err = p.store.MarkProcessed(ctx, model.ProcessedCommit{
		Repository:  commit.Repository,
		CommitID:    commit.ID,
		IssueKeys:   crossref.Keys(refs),
		ClosedKeys:  closed,
		ProcessedAt: p.now(),
	})
	if err != nil {
		return fmt.Errorf("recording commit %s: %w", commit.ShortID(), err)
	}
	return nil
}

// comment posts the commit to issueID unless an earlier comment already
// mentions it. It reports whether a comment was added.
func (p *Processor) comment(
	ctx context.Context,
	handler *tracker.Handler,
	commit model.Commit,
	issueID string,
) (bool, error) {
	exists, err := handler.CommentExists(ctx, issueID, commit.ID, commit.ShortID())
	if err != nil {
		return false, err
	}
	if exists {
		p.logger.Debug("commit already mentioned", "issue", issueID, "commit", commit.ShortID())
		return false, nil
	}

	created := commit.Timestamp
	if created.IsZero() {
		created = p.now()
	}

	err = handler.AddComment(ctx, issueID, tracker.Comment{
		Created:   created,
		Body:      commit.Message,
		RoleLevel: p.opts.RoleLevel,
	})
	if err != nil {
		return false, err
	}
	p.logger.Info("commented on issue", "issue", issueID, "commit", commit.ShortID())
	return true, nil
}
