package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

// useMemoryKeyring swaps the system keyring for an in-memory one.
func useMemoryKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	orig := openKeyring
	openKeyring = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { openKeyring = orig })
	return ring
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		username string
		want     string
		wantErr  bool
	}{
		{"plain", "https://jira.example.com", "bot", "jira-bot@jira.example.com", false},
		{"path and port", "https://Jira.Example.com:8443/jira/", "bot", "jira-bot@jira.example.com:8443", false},
		{"no host", "jira.example.com", "bot", "", true},
		{"no user", "https://jira.example.com", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Key(tt.baseURL, tt.username)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got key %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	useMemoryKeyring(t)

	if err := Set("jira-bot@jira.example.com", "s3cret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := Get("jira-bot@jira.example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Get = %q, want s3cret", got)
	}

	if err := Delete("jira-bot@jira.example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := Get("jira-bot@jira.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPasswordPrefersEnv(t *testing.T) {
	useMemoryKeyring(t)
	if err := Set("jira-bot@jira.example.com", "from-keyring"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := Password("https://jira.example.com", "bot")
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	if got != "from-keyring" {
		t.Errorf("expected keyring password, got %q", got)
	}

	t.Setenv(PasswordEnv, "from-env")
	got, err = Password("https://jira.example.com", "bot")
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	if got != "from-env" {
		t.Errorf("expected env password, got %q", got)
	}
}
