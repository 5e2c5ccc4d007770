package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/tenant"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(nil)
	s.AuthPath = filepath.Join(dir, ".uipath", ".auth.json")
	s.EnvPath = filepath.Join(dir, ".env")
	return s
}

func sampleToken() *auth.TokenResponse {
	return &auth.TokenResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
		Scope:        "openid profile",
		IDToken:      "id-token",
	}
}

func sampleTenant() tenant.SelectedTenant {
	return tenant.SelectedTenant{
		TenantID:                "t-1",
		TenantName:              "DefaultTenant",
		TenantDisplayName:       "Default Tenant",
		OrganizationID:          "org-1",
		OrganizationName:        "acme",
		OrganizationDisplayName: "Acme Corp",
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	t.Run("round-trips every field", func(t *testing.T) {
		s := tempStore(t)
		before := time.Now().UnixMilli()
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), "folder-42"))
		after := time.Now().UnixMilli()

		record := s.Load()
		require.NotNil(t, record)
		assert.Equal(t, "access-token", record.AccessToken)
		assert.Equal(t, "refresh-token", record.RefreshToken)
		assert.Equal(t, "Bearer", record.TokenType)
		assert.Equal(t, "openid profile", record.Scope)
		assert.Equal(t, "id-token", record.IDToken)
		assert.Equal(t, "cloud", record.Domain)
		assert.Equal(t, "t-1", record.TenantID)
		assert.Equal(t, "DefaultTenant", record.TenantName)
		assert.Equal(t, "Default Tenant", record.TenantDisplayName)
		assert.Equal(t, "org-1", record.OrganizationID)
		assert.Equal(t, "acme", record.OrganizationName)
		assert.Equal(t, "Acme Corp", record.OrganizationDisplayName)
		assert.Equal(t, "folder-42", record.FolderKey)

		assert.GreaterOrEqual(t, record.ExpiresAt, before+3600*1000)
		assert.LessOrEqual(t, record.ExpiresAt, after+3600*1000)
	})

	t.Run("auth file is private and camelCase", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), ""))

		info, err := os.Stat(s.AuthPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		content, err := os.ReadFile(s.AuthPath)
		require.NoError(t, err)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(content, &raw))
		assert.Contains(t, raw, "accessToken")
		assert.Contains(t, raw, "expiresAt")
		assert.Contains(t, raw, "organizationId")
		assert.NotContains(t, raw, "folderKey")
	})

	t.Run("no leftover temp file", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), ""))

		_, err := os.Stat(s.AuthPath + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("env file carries the context keys", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), "folder-42"))

		content, err := os.ReadFile(s.EnvPath)
		require.NoError(t, err)
		env := string(content)
		assert.Contains(t, env, "UIPATH_ACCESS_TOKEN=access-token")
		assert.Contains(t, env, "UIPATH_BASE_URL=https://cloud.uipath.com")
		assert.Contains(t, env, "UIPATH_TENANT_ID=t-1")
		assert.Contains(t, env, "UIPATH_TENANT_NAME=DefaultTenant")
		assert.Contains(t, env, "UIPATH_ORGANIZATION_ID=org-1")
		assert.Contains(t, env, "UIPATH_ORGANIZATION_NAME=acme")
		assert.Contains(t, env, "UIPATH_FOLDER_KEY=folder-42")
	})

	t.Run("nil token is rejected", func(t *testing.T) {
		s := tempStore(t)
		require.Error(t, s.Save(nil, auth.DefaultConfig(), sampleTenant(), ""))
	})

	t.Run("absent file loads as nil", func(t *testing.T) {
		s := tempStore(t)
		assert.Nil(t, s.Load())
	})

	t.Run("corrupt file loads as nil", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.AuthPath), 0o700))
		require.NoError(t, os.WriteFile(s.AuthPath, []byte("{broken"), 0o600))
		assert.Nil(t, s.Load())
	})

	t.Run("second login overwrites the first", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), ""))

		second := sampleToken()
		second.AccessToken = "newer-token"
		require.NoError(t, s.Save(second, auth.DefaultConfig(), sampleTenant(), ""))

		record := s.Load()
		require.NotNil(t, record)
		assert.Equal(t, "newer-token", record.AccessToken)
	})
}

func TestStoreClear(t *testing.T) {
	t.Run("removes the record and env keys", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Save(sampleToken(), auth.DefaultConfig(), sampleTenant(), "fk"))
		require.NoError(t, s.Clear())

		assert.Nil(t, s.Load())

		content, err := os.ReadFile(s.EnvPath)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "UIPATH_")
	})

	t.Run("clearing a clean state succeeds", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Clear())
		require.NoError(t, s.Clear())
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Now().UnixMilli()

	t.Run("nil record is expired", func(t *testing.T) {
		assert.True(t, IsExpired(nil))
	})

	t.Run("future expiry is valid", func(t *testing.T) {
		assert.False(t, IsExpired(&StoredAuth{ExpiresAt: now + time.Hour.Milliseconds()}))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		assert.True(t, IsExpired(&StoredAuth{ExpiresAt: now - 1}))
	})

	t.Run("expiry equal to now counts as expired", func(t *testing.T) {
		assert.True(t, IsExpired(&StoredAuth{ExpiresAt: time.Now().UnixMilli()}))
	})

	t.Run("comparison has no skew margin", func(t *testing.T) {
		assert.False(t, IsExpired(&StoredAuth{ExpiresAt: time.Now().UnixMilli() + 500}))
	})
}
