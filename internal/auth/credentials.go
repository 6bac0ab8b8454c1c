// Package auth stores the bearer token the CLI sends to the API.
//
// The token is written by the login flow and read back from disk on every
// request through FileTokenSource, so logging in from another shell takes
// effect on the next call.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credentials represents the stored session.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	UserEmail   string    `json:"user_email,omitempty"`
	ServerURL   string    `json:"server_url,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// DefaultPath returns ~/.promptflow/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".promptflow", "credentials.json"), nil
}

// Load loads credentials from a file.
func Load(path string) (*Credentials, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if perms := info.Mode().Perm(); perms&0077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: credentials file %s has insecure permissions %o (should be 0600)\n", path, perms)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return creds, nil
}

// Save writes credentials with 0600 permissions.
func Save(creds *Credentials, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Remove deletes the credentials file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// FileTokenSource reads the access token from a credentials file on every
// call. It implements the SDK's auth.TokenSource.
type FileTokenSource struct {
	Path string
}

// Token returns the stored access token, or "" when nobody is logged in.
func (s FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds.AccessToken, nil
}
