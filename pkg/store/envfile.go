package store

import (
	"fmt"
	"os"
	"strings"
)

const (
	envAccessToken      = "UIPATH_ACCESS_TOKEN"
	envBaseURL          = "UIPATH_BASE_URL"
	envTenantID         = "UIPATH_TENANT_ID"
	envTenantName       = "UIPATH_TENANT_NAME"
	envOrganizationID   = "UIPATH_ORGANIZATION_ID"
	envOrganizationName = "UIPATH_ORGANIZATION_NAME"
	envFolderKey        = "UIPATH_FOLDER_KEY"
)

// envKeyOrder fixes the order in which keys new to the file are appended.
var envKeyOrder = []string{
	envAccessToken,
	envBaseURL,
	envTenantID,
	envTenantName,
	envOrganizationID,
	envOrganizationName,
	envFolderKey,
}

// mergeEnv rewrites the env file with the given updates merged in. Existing
// lines that do not match an updated key, including comments and unrelated
// KEY=VALUE pairs, are preserved verbatim and in order. A key whose new value
// is empty is dropped entirely.
func (s *Store) mergeEnv(updates map[string]string) error {
	var lines []string
	if content, err := os.ReadFile(s.EnvPath); err == nil {
		lines = strings.Split(strings.TrimRight(string(content), "\n"), "\n")
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
	}

	seen := map[string]bool{}
	merged := make([]string, 0, len(lines)+len(updates))
	for _, line := range lines {
		key := envLineKey(line)
		value, updated := updates[key]
		if key == "" || !updated {
			merged = append(merged, line)
			continue
		}
		seen[key] = true
		if value == "" {
			continue
		}
		merged = append(merged, key+"="+value)
	}
	for _, key := range envKeyOrder {
		if value, ok := updates[key]; ok && !seen[key] && value != "" {
			merged = append(merged, key+"="+value)
		}
	}

	output := ""
	if len(merged) > 0 {
		output = strings.Join(merged, "\n") + "\n"
	}
	if err := os.WriteFile(s.EnvPath, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}

// envLineKey extracts the key of a KEY=VALUE line, or "" for comments and
// anything else that is not an assignment.
func envLineKey(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	key, _, found := strings.Cut(trimmed, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(key)
}
