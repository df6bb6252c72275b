package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/jirabridge/internal/store"
	"github.com/nhle/jirabridge/internal/theme"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		repo  string
		issue string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List processed commits, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeStore, err := a.openStore(a.cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = closeStore() }()

			filter := store.ProcessedFilter{Limit: limit}
			if repo != "" {
				filter.Repository = &repo
			}
			if issue != "" {
				filter.IssueKey = &issue
			}

			markers, err := s.GetProcessed(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(markers) == 0 {
				fmt.Fprintln(w, theme.HintStyle.Render("no processed commits"))
				return nil
			}
			for _, m := range markers {
				keys := make([]string, 0, len(m.IssueKeys))
				for _, k := range m.IssueKeys {
					keys = append(keys, theme.IssueKeyStyle.Render(k))
				}
				fmt.Fprintf(w, "%s  %s %s  %s  %s\n",
					theme.HintStyle.Render(m.ID),
					m.Repository,
					shortID(m.CommitID),
					m.ProcessedAt.Local().Format("2006-01-02 15:04"),
					strings.Join(keys, " "),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "only commits from this repository")
	cmd.Flags().StringVar(&issue, "issue", "", "only commits referencing this issue")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries (0 for all)")
	return cmd
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget ID",
		Short: "Drop a processed-commit record so the commit is handled again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeStore, err := a.openStore(a.cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = closeStore() }()

			if err := s.DeleteProcessed(cmd.Context(), args[0]); err != nil {
				if store.IsNotFound(err) {
					return fmt.Errorf("no processed commit with id %s", args[0])
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "forgot "+args[0])
			return nil
		},
	}
}
