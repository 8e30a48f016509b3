// ABOUTME: OAuth configuration and token storage for the People API
// ABOUTME: Builds the oauth2 config from client secrets or env credentials; persists tokens at XDG paths
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/config"
	"github.com/harperreed/gcard/models"
)

// Scopes requested at login: full read/write access to contacts.
var Scopes = []string{people.ContactsScope}

// NewOAuthConfig creates the OAuth2 config from a client secrets file or from explicit credentials.
func NewOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	if cfg.ClientSecretsFile != "" {
		data, err := os.ReadFile(cfg.ClientSecretsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read client secrets: %w", err)
		}
		oc, err := google.ConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, models.WrapError(models.CodeParse, "parse client secrets", err)
		}
		if cfg.RedirectURL != "" {
			oc.RedirectURL = cfg.RedirectURL
		}
		return oc, nil
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, models.NewError(models.CodeAuth, "oauth config",
			"google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or GCARD_CLIENT_SECRETS_FILE")
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenStore persists the OAuth token between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(*oauth2.Token) error
	Delete() error
}

// FileTokenStore keeps the token as JSON in a single file.
type FileTokenStore struct {
	Path string
}

// NewFileTokenStore returns a store rooted at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

// Save writes the token with owner-only permissions.
func (s *FileTokenStore) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// Load reads the token. A missing file is an auth error.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.NewError(models.CodeAuth, "load token", "not logged in, run 'gcard login'")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, models.WrapError(models.CodeParse, "decode token", err)
	}
	return &token, nil
}

// Delete removes the token file; a missing file is not an error.
func (s *FileTokenStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
