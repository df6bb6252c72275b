package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/jirabridge/internal/credential"
	"github.com/nhle/jirabridge/internal/theme"
)

// promptPassword asks for a password without echoing it.
func promptPassword(title string) (string, error) {
	var pw string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&pw).
				Validate(validateRequired("Password")),
		),
	).Run()
	if err != nil {
		return "", err
	}
	return pw, nil
}

// validateRequired returns a validator that rejects empty input.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func newCredentialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the Jira password stored in the system keyring",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set",
			Short: "Store the Jira password for the configured account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := credential.Key(a.cfg.Jira.BaseURL, a.cfg.Jira.Username)
				if err != nil {
					return err
				}
				pw, err := a.promptPassword("Jira password for " + a.cfg.Jira.Username)
				if err != nil {
					return err
				}
				if err := credential.Set(key, pw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "stored "+theme.IssueKeyStyle.Render(key))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored Jira password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := credential.Key(a.cfg.Jira.BaseURL, a.cfg.Jira.Username)
				if err != nil {
					return err
				}
				if err := credential.Delete(key); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted "+theme.IssueKeyStyle.Render(key))
				return nil
			},
		},
	)
	return cmd
}
