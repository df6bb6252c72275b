package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/nhle/jirabridge/internal/model"
	"github.com/nhle/jirabridge/internal/theme"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out, err := yaml.Marshal(a.cfg)
				if err != nil {
					return fmt.Errorf("encoding config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme.HeaderStyle.Render(a.configPath))
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the configuration interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := configForm(a.cfg).Run(); err != nil {
					return err
				}
				if err := model.SaveConfig(a.configPath, a.cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote "+a.configPath)
				return nil
			},
		},
	)
	return cmd
}

// configForm edits the Jira settings of cfg in place.
func configForm(cfg *model.AppConfig) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("Jira server URL (e.g., https://jira.example.com)").
				Placeholder("https://jira.example.com").
				Value(&cfg.Jira.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Username").
				Description("Account the comments are posted as").
				Value(&cfg.Jira.Username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Close action word").
				Description("Issues are closed with the first action whose name contains this word").
				Value(&cfg.Jira.AutoCloseWord),
			huh.NewInput().
				Title("Comment role level").
				Description("Optional project role that can see the comments").
				Value(&cfg.Comment.RoleLevel),
			huh.NewConfirm().
				Title("Close issues?").
				Description("Close issues referenced with words like \"fixes\"").
				Value(&cfg.Jira.CloseIssues),
		),
	)
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL (e.g., https://jira.example.com)")
	}
	return nil
}
