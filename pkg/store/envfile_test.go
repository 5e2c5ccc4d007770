package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envStore(t *testing.T, existing string) *Store {
	t.Helper()
	s := NewStore(nil)
	s.EnvPath = filepath.Join(t.TempDir(), ".env")
	if existing != "" {
		require.NoError(t, os.WriteFile(s.EnvPath, []byte(existing), 0o600))
	}
	return s
}

func readEnv(t *testing.T, s *Store) string {
	t.Helper()
	content, err := os.ReadFile(s.EnvPath)
	require.NoError(t, err)
	return string(content)
}

func TestMergeEnv(t *testing.T) {
	t.Run("creates the file when absent", func(t *testing.T) {
		s := envStore(t, "")
		require.NoError(t, s.mergeEnv(map[string]string{
			envAccessToken: "tok",
			envTenantID:    "t-1",
		}))

		env := readEnv(t, s)
		assert.Contains(t, env, "UIPATH_ACCESS_TOKEN=tok\n")
		assert.Contains(t, env, "UIPATH_TENANT_ID=t-1\n")
	})

	t.Run("preserves unrelated lines and comments verbatim", func(t *testing.T) {
		existing := "# project secrets\nDATABASE_URL=postgres://localhost/dev\n\nUIPATH_ACCESS_TOKEN=old\nCUSTOM=1\n"
		s := envStore(t, existing)
		require.NoError(t, s.mergeEnv(map[string]string{envAccessToken: "new"}))

		env := readEnv(t, s)
		assert.Contains(t, env, "# project secrets\n")
		assert.Contains(t, env, "DATABASE_URL=postgres://localhost/dev\n")
		assert.Contains(t, env, "CUSTOM=1\n")
		assert.Contains(t, env, "UIPATH_ACCESS_TOKEN=new\n")
		assert.NotContains(t, env, "UIPATH_ACCESS_TOKEN=old")
	})

	t.Run("replaces in place keeping line order", func(t *testing.T) {
		existing := "FIRST=1\nUIPATH_ACCESS_TOKEN=old\nLAST=9\n"
		s := envStore(t, existing)
		require.NoError(t, s.mergeEnv(map[string]string{envAccessToken: "new"}))

		lines := strings.Split(strings.TrimRight(readEnv(t, s), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "FIRST=1", lines[0])
		assert.Equal(t, "UIPATH_ACCESS_TOKEN=new", lines[1])
		assert.Equal(t, "LAST=9", lines[2])
	})

	t.Run("empty value drops the key", func(t *testing.T) {
		existing := "UIPATH_ACCESS_TOKEN=tok\nKEEP=yes\n"
		s := envStore(t, existing)
		require.NoError(t, s.mergeEnv(map[string]string{envAccessToken: ""}))

		env := readEnv(t, s)
		assert.NotContains(t, env, "UIPATH_ACCESS_TOKEN")
		assert.Contains(t, env, "KEEP=yes\n")
	})

	t.Run("empty value for an absent key adds nothing", func(t *testing.T) {
		s := envStore(t, "KEEP=yes\n")
		require.NoError(t, s.mergeEnv(map[string]string{envFolderKey: ""}))

		assert.Equal(t, "KEEP=yes\n", readEnv(t, s))
	})

	t.Run("new keys append in a fixed order", func(t *testing.T) {
		s := envStore(t, "EXISTING=1\n")
		require.NoError(t, s.mergeEnv(map[string]string{
			envFolderKey:   "fk",
			envAccessToken: "tok",
			envTenantID:    "t-1",
		}))

		lines := strings.Split(strings.TrimRight(readEnv(t, s), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "EXISTING=1", lines[0])
		assert.Equal(t, "UIPATH_ACCESS_TOKEN=tok", lines[1])
		assert.Equal(t, "UIPATH_TENANT_ID=t-1", lines[2])
		assert.Equal(t, "UIPATH_FOLDER_KEY=fk", lines[3])
	})

	t.Run("file ends with a single trailing newline", func(t *testing.T) {
		s := envStore(t, "")
		require.NoError(t, s.mergeEnv(map[string]string{envAccessToken: "tok"}))

		env := readEnv(t, s)
		assert.True(t, strings.HasSuffix(env, "tok\n"))
		assert.False(t, strings.HasSuffix(env, "\n\n"))
	})

	t.Run("commented-out key is not treated as the key", func(t *testing.T) {
		existing := "# UIPATH_ACCESS_TOKEN=disabled\n"
		s := envStore(t, existing)
		require.NoError(t, s.mergeEnv(map[string]string{envAccessToken: "tok"}))

		env := readEnv(t, s)
		assert.Contains(t, env, "# UIPATH_ACCESS_TOKEN=disabled\n")
		assert.Contains(t, env, "UIPATH_ACCESS_TOKEN=tok\n")
	})
}

func TestEnvLineKey(t *testing.T) {
	assert.Equal(t, "KEY", envLineKey("KEY=value"))
	assert.Equal(t, "KEY", envLineKey("  KEY = value"))
	assert.Empty(t, envLineKey("# comment"))
	assert.Empty(t, envLineKey(""))
	assert.Empty(t, envLineKey("not an assignment"))
}
