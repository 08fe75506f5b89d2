package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".webaudit.yaml")
	configContent := `
verbose: true
reports:
  dir: class-reports

audit:
  timeout: 30
  max-pages: 8
  local: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, "class-reports", k.String("reports.dir"))
	assert.Equal(t, 30, k.Int("audit.timeout"))
	assert.Equal(t, 8, k.Int("audit.max-pages"))
	assert.True(t, k.Bool("audit.local"))
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config — should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.webaudit.yaml"))

	assert.Equal(t, "reports", getStringWithFallback("reports-dir", "reports.dir", "reports"))
	assert.Equal(t, 15, getIntWithFallback("timeout", "audit.timeout", 15))
	assert.False(t, getBoolWithFallback("verbose", "verbose", false))
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".webaudit.yaml")
	configContent := `
reports:
  dir: from-file
audit:
  timeout: 15
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set env vars that should override config file
	t.Setenv("WEBAUDIT_REPORTS_DIR", "from-env")
	t.Setenv("WEBAUDIT_AUDIT_TIMEOUT", "45")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env", k.String("reports.dir"))
	assert.Equal(t, 45, k.Int("audit.timeout"))
}

func TestGetWithFallback(t *testing.T) {
	resetKoanf()

	require.NoError(t, k.Set("reports.dir", "from-config"))
	assert.Equal(t, "from-config", getStringWithFallback("reports-dir", "reports.dir", "reports"))

	// Flag key wins over config key once set.
	require.NoError(t, k.Set("reports-dir", "from-flag"))
	assert.Equal(t, "from-flag", getStringWithFallback("reports-dir", "reports.dir", "reports"))

	require.NoError(t, k.Set("audit.no-save", true))
	assert.True(t, getBoolWithFallback("no-save", "audit.no-save", false))
}
