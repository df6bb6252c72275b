package model

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. JIRABRIDGE_JIRA_BASE_URL.
const envPrefix = "JIRABRIDGE"

// JiraConfig holds the connection and workflow settings for the tracker.
type JiraConfig struct {
	// BaseURL is the root URL of the Jira instance.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Username is the account comments are posted as.
	Username string `mapstructure:"username" yaml:"username"`

	// AutoCloseWord selects the workflow action used to close an issue.
	AutoCloseWord string `mapstructure:"auto_close_word" yaml:"auto_close_word"`

	// CloseWords are the commit-message verbs that mark an issue for closing.
	CloseWords []string `mapstructure:"close_words" yaml:"close_words"`

	// CloseIssues enables the close transition for referenced issues.
	CloseIssues bool `mapstructure:"close_issues" yaml:"close_issues"`

	// TimeoutSec bounds a single remote call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// CommentConfig controls how comments are rendered.
type CommentConfig struct {
	// RoleLevel restricts comment visibility to a project role.
	RoleLevel string `mapstructure:"role_level" yaml:"role_level"`

	// Template is a text/template for the comment body.
	Template string `mapstructure:"template" yaml:"template"`
}

// StoreConfig locates the processed-commit database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Jira    JiraConfig    `mapstructure:"jira" yaml:"jira"`
	Comment CommentConfig `mapstructure:"comment" yaml:"comment"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/jirabridge, or the working directory when
// the home directory cannot be determined.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "jirabridge")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/jirabridge/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultStorePath returns the default processed-commit database path.
func DefaultStorePath() string {
	return filepath.Join(configDir(), "bridge.db")
}

// defaultCloseWords mirrors crossref.DefaultCloseWords without importing it.
var defaultCloseWords = []string{"fixes", "closes", "resolves"}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Jira: JiraConfig{
			AutoCloseWord: "close",
			CloseWords:    append([]string(nil), defaultCloseWords...),
			CloseIssues:   true,
			TimeoutSec:    30,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers every key so that environment overrides apply
// even when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("jira.base_url", "")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.auto_close_word", d.Jira.AutoCloseWord)
	v.SetDefault("jira.close_words", d.Jira.CloseWords)
	v.SetDefault("jira.close_issues", d.Jira.CloseIssues)
	v.SetDefault("jira.timeout_sec", d.Jira.TimeoutSec)
	v.SetDefault("comment.role_level", "")
	v.SetDefault("comment.template", "")
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults and environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// Every key has a viper default, so decode into an empty value to
	// keep list settings from merging with the defaults.
	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Jira.TimeoutSec <= 0 {
		cfg.Jira.TimeoutSec = 30
	}

	return cfg, nil
}

// Validate checks the settings required to open a Jira session.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Jira.BaseURL) == "" {
		return fmt.Errorf("jira.base_url is required")
	}
	parsed, err := url.Parse(c.Jira.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid jira.base_url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("jira.base_url must include scheme and host (e.g., https://jira.example.com)")
	}
	if strings.TrimSpace(c.Jira.Username) == "" {
		return fmt.Errorf("jira.username is required")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("jira", cfg.Jira)
	v.Set("comment", cfg.Comment)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
