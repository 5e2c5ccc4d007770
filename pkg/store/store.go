// Package store persists the token bundle and selected tenant context produced
// by a successful login. It is the only writer of the auth file and the env
// file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/tenant"
)

const (
	// DefaultAuthPath is the on-disk StoredAuth location, relative to the
	// working directory of the CLI invocation.
	DefaultAuthPath = ".uipath/.auth.json"
	// DefaultEnvPath is the KEY=VALUE file downstream tooling sources.
	DefaultEnvPath = ".env"

	// BackendFile keeps everything in the auth file.
	BackendFile = "file"
	// BackendKeychain stores the refresh token in the OS keyring and elides
	// it from the auth file.
	BackendKeychain = "keychain"

	keyringService = "uipcli"
	keyringUser    = "refresh-token"
)

// StoredAuth is the persisted record of one successful login. It is created on
// login, overwritten by the next login, and deleted on logout.
type StoredAuth struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	Scope        string `json:"scope"`
	IDToken      string `json:"idToken,omitempty"`
	// ExpiresAt is epoch milliseconds. IsExpired compares it literally with no
	// clock-skew allowance; callers needing a refresh margin must subtract
	// their own.
	ExpiresAt int64 `json:"expiresAt"`

	Domain                  string `json:"domain"`
	TenantID                string `json:"tenantId"`
	TenantName              string `json:"tenantName"`
	TenantDisplayName       string `json:"tenantDisplayName,omitempty"`
	OrganizationID          string `json:"organizationId"`
	OrganizationName        string `json:"organizationName"`
	OrganizationDisplayName string `json:"organizationDisplayName,omitempty"`
	FolderKey               string `json:"folderKey,omitempty"`
}

// Store owns on-disk persistence of login results.
type Store struct {
	AuthPath string
	EnvPath  string
	// Backend selects where the refresh token lives: BackendFile (default)
	// or BackendKeychain.
	Backend string
	Log     *zap.Logger
}

// NewStore returns a store with default paths.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{AuthPath: DefaultAuthPath, EnvPath: DefaultEnvPath, Log: log}
}

// Save persists the token bundle plus tenant context to the auth file via
// write-to-temp-then-rename, and merges the corresponding keys into the env
// file.
func (s *Store) Save(tokens *auth.TokenResponse, cfg auth.Config, selected tenant.SelectedTenant, folderKey string) error {
	if tokens == nil {
		return errors.New("token response is nil")
	}
	record := StoredAuth{
		AccessToken:             tokens.AccessToken,
		RefreshToken:            tokens.RefreshToken,
		TokenType:               tokens.TokenType,
		Scope:                   tokens.Scope,
		IDToken:                 tokens.IDToken,
		ExpiresAt:               time.Now().UnixMilli() + tokens.ExpiresIn*1000,
		Domain:                  cfg.Domain,
		TenantID:                selected.TenantID,
		TenantName:              selected.TenantName,
		TenantDisplayName:       selected.TenantDisplayName,
		OrganizationID:          selected.OrganizationID,
		OrganizationName:        selected.OrganizationName,
		OrganizationDisplayName: selected.OrganizationDisplayName,
		FolderKey:               folderKey,
	}

	if s.Backend == BackendKeychain && record.RefreshToken != "" {
		if err := keyring.Set(keyringService, keyringUser, record.RefreshToken); err != nil {
			s.Log.Warn("keychain unavailable, keeping refresh token in auth file", zap.Error(err))
		} else {
			record.RefreshToken = ""
		}
	}

	if err := s.writeAuthFile(record); err != nil {
		return err
	}

	baseURL, _ := cfg.BaseURL()
	return s.mergeEnv(map[string]string{
		envAccessToken:      record.AccessToken,
		envBaseURL:          baseURL,
		envTenantID:         record.TenantID,
		envTenantName:       record.TenantName,
		envOrganizationID:   record.OrganizationID,
		envOrganizationName: record.OrganizationName,
		envFolderKey:        folderKey,
	})
}

// Load returns the persisted record, or nil when the file is absent or
// unreadable. Parse errors are logged and swallowed, never returned.
func (s *Store) Load() *StoredAuth {
	content, err := os.ReadFile(s.AuthPath)
	if err != nil {
		return nil
	}
	var record StoredAuth
	if err := json.Unmarshal(content, &record); err != nil {
		s.Log.Warn("failed to parse auth file", zap.String("path", s.AuthPath), zap.Error(err))
		return nil
	}
	if s.Backend == BackendKeychain && record.RefreshToken == "" {
		if secret, err := keyring.Get(keyringService, keyringUser); err == nil {
			record.RefreshToken = secret
		}
	}
	return &record
}

// Clear removes the auth file and blanks the env keys. Blank values are
// dropped by the merge, so the keys disappear from the env file.
func (s *Store) Clear() error {
	if err := os.Remove(s.AuthPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove auth file: %w", err)
	}
	if s.Backend == BackendKeychain {
		_ = keyring.Delete(keyringService, keyringUser)
	}
	return s.mergeEnv(map[string]string{
		envAccessToken:      "",
		envBaseURL:          "",
		envTenantID:         "",
		envTenantName:       "",
		envOrganizationID:   "",
		envOrganizationName: "",
		envFolderKey:        "",
	})
}

// IsExpired reports whether the stored token has passed its expiry. The
// comparison is exact; there is no skew margin.
func IsExpired(record *StoredAuth) bool {
	if record == nil {
		return true
	}
	return time.Now().UnixMilli() >= record.ExpiresAt
}

func (s *Store) writeAuthFile(record StoredAuth) error {
	if err := os.MkdirAll(filepath.Dir(s.AuthPath), 0o700); err != nil {
		return fmt.Errorf("failed to create auth dir: %w", err)
	}
	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal auth record: %w", err)
	}
	tmp := s.AuthPath + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	if err := os.Rename(tmp, s.AuthPath); err != nil {
		return fmt.Errorf("failed to replace auth file: %w", err)
	}
	return nil
}
