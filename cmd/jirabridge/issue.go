package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/jirabridge/internal/theme"
	"github.com/nhle/jirabridge/internal/tracker"
)

func newCommentCmd(a *app) *cobra.Command {
	var roleLevel string

	cmd := &cobra.Command{
		Use:   "comment KEY TEXT...",
		Short: "Add a comment to an issue",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key := args[0]
			body := strings.Join(args[1:], " ")

			h, err := a.session(cmd, &tracker.IssueRequest{})
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, h.Logout(cmd.Context())) }()

			if roleLevel == "" {
				roleLevel = a.cfg.Comment.RoleLevel
			}
			err = h.AddComment(cmd.Context(), key, tracker.Comment{
				Created:   time.Now(),
				Body:      body,
				RoleLevel: roleLevel,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				theme.OutcomeStyle("commented").Render("commented")+" "+theme.IssueKeyStyle.Render(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&roleLevel, "role", "", "restrict visibility to a project role")
	return cmd
}

func newCloseCmd(a *app) *cobra.Command {
	var word string

	cmd := &cobra.Command{
		Use:   "close KEY",
		Short: "Move an issue through its close action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key := args[0]

			h, err := a.session(cmd, &tracker.IssueRequest{})
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, h.Logout(cmd.Context())) }()

			if !cmd.Flags().Changed("word") {
				word = a.cfg.Jira.AutoCloseWord
			}
			if err := h.Close(cmd.Context(), key, word); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				theme.OutcomeStyle("closed").Render("closed")+" "+theme.IssueKeyStyle.Render(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&word, "word", "", "word to look for in the action name (default: jira.auto_close_word)")
	return cmd
}
