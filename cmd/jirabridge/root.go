package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/jirabridge/internal/credential"
	"github.com/nhle/jirabridge/internal/jirasoap"
	"github.com/nhle/jirabridge/internal/logging"
	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/store"
	"github.com/nhle/jirabridge/internal/tracker"
)

// app holds what the subcommands share. The function fields are swapped
// out in tests.
type app struct {
	configPath string
	cfg        *model.AppConfig
	logger     *slog.Logger

	dial           func(cfg *model.AppConfig) tracker.Dialer
	password       func(cfg *model.AppConfig) (string, error)
	promptPassword func(title string) (string, error)
	openStore      func(path string) (store.Store, func() error, error)
}

func newApp() *app {
	return &app{
		configPath: model.DefaultConfigPath(),
		dial: func(cfg *model.AppConfig) tracker.Dialer {
			timeout := time.Duration(cfg.Jira.TimeoutSec) * time.Second
			return jirasoap.Dialer(jirasoap.WithTimeout(timeout))
		},
		password: func(cfg *model.AppConfig) (string, error) {
			return credential.Password(cfg.Jira.BaseURL, cfg.Jira.Username)
		},
		promptPassword: promptPassword,
		openStore: func(path string) (store.Store, func() error, error) {
			if path != ":memory:" {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return nil, nil, fmt.Errorf("creating store directory: %w", err)
				}
			}
			s, err := store.NewSQLiteStore(path)
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jirabridge",
		Short: "Push commit references into Jira",
		Long: `jirabridge reads commits, finds the Jira issue keys in their messages,
and posts a comment on each referenced issue through the Jira SOAP service.
Issues preceded by a close word such as "fixes" are moved through the
configured close action.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", a.configPath, "config file")

	root.AddCommand(
		newProcessCmd(a),
		newCommentCmd(a),
		newCloseCmd(a),
		newHistoryCmd(a),
		newForgetCmd(a),
		newCredentialCmd(a),
		newConfigCmd(a),
	)
	return root
}

// load reads the configuration and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := model.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return nil
}

// factory builds a session factory for the loaded configuration.
func (a *app) factory(opts ...tracker.FactoryOption) *tracker.Factory {
	opts = append(opts, tracker.WithObserver(logging.NewObserver(a.logger)))
	return tracker.NewFactory(a.dial(a.cfg), opts...)
}

// session validates the configuration and opens a session for req.
func (a *app) session(cmd *cobra.Command, req *tracker.IssueRequest) (*tracker.Handler, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	pw, err := a.password(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("loading jira password (run 'jirabridge credential set'): %w", err)
	}
	req.Config.BaseURL = a.cfg.Jira.BaseURL
	return a.factory().CreateSession(cmd.Context(), req, a.cfg.Jira.Username, pw)
}
