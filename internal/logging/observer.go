package logging

import (
	"log/slog"

	"github.com/nhle/jirabridge/internal/tracker"
)

// Observer reports tracker session activity to a slog.Logger.
type Observer struct {
	logger *slog.Logger
}

var _ tracker.Observer = (*Observer)(nil)

// NewObserver returns an Observer writing to logger. A nil logger
// discards everything.
func NewObserver(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = Discard()
	}
	return &Observer{logger: logger.With("component", "tracker")}
}

// SessionStarted logs the connection attempt. The password is never
// passed to observers.
func (o *Observer) SessionStarted(endpoint, username string) {
	o.logger.Info("opening jira session",
		"endpoint", endpoint,
		"username", username,
	)
}

func (o *Observer) OperationStarted(op tracker.Op, issueID string) {
	o.logger.Debug("jira operation",
		"op", string(op),
		"issue", issueID,
	)
}

func (o *Observer) OperationFailed(op tracker.Op, issueID string, err error) {
	o.logger.Error("jira operation failed",
		"op", string(op),
		"issue", issueID,
		"error", err,
	)
}
