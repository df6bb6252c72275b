// Package credential stores the Jira password in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "jirabridge"

// PasswordEnv overrides the keyring lookup, mainly for CI runners that
// have no keyring backend.
const PasswordEnv = "JIRABRIDGE_JIRA_PASSWORD"

// ErrNotFound is returned when no password is stored for an account.
var ErrNotFound = errors.New("credential not found")

// openKeyring returns a configured keyring instance.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/jirabridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("jirabridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Key returns the keyring key for a Jira account, jira-<username>@<host>.
func Key(baseURL, username string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parsing jira url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("jira url %q has no host", baseURL)
	}
	if username == "" {
		return "", fmt.Errorf("jira username is required")
	}
	return fmt.Sprintf("jira-%s@%s", username, strings.ToLower(parsed.Host)), nil
}

// Password returns the Jira password for the account, preferring the
// PasswordEnv environment variable over the keyring.
func Password(baseURL, username string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	key, err := Key(baseURL, username)
	if err != nil {
		return "", err
	}
	return Get(key)
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "jirabridge " + key,
		Description: "Jira password",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
