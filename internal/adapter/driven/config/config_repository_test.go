package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileFormats(t *testing.T) {
	repo := NewConfigRepository()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `action_group = "custom-tools"
default_region = "eu-west-1"
log_level = "debug"
retry_max_attempts = 5
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `action_group: custom-tools
default_region: eu-west-1
log_level: debug
retry_max_attempts: 5
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"action_group":"custom-tools","default_region":"eu-west-1","log_level":"debug","retry_max_attempts":5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.file, tt.content)

			cfg, err := repo.LoadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, "custom-tools", cfg.ActionGroup)
			assert.Equal(t, "eu-west-1", cfg.DefaultRegion)
			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, 5, cfg.RetryMaxAttempts)
		})
	}
}

func TestLoadConfigFileUnsupportedExtension(t *testing.T) {
	repo := NewConfigRepository()
	path := writeTempConfig(t, "config.ini", "action_group = x")

	_, err := repo.LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoadConfigFileDirectory(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONCIERGE_CONFIG", "")
	t.Setenv("ACTION_GROUP_NAME", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "aws-ai-concierge-tools", cfg.ActionGroup)
	assert.Equal(t, "us-east-1", cfg.DefaultRegion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Contains(t, cfg.CompliantRegions, "eu-central-1")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `action_group: from-file
default_region: eu-west-2
log_level: warn
`)

	t.Setenv("CONCIERGE_CONFIG", path)
	t.Setenv("ACTION_GROUP_NAME", "from-env")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment wins over the file; untouched keys keep the file values.
	assert.Equal(t, "from-env", cfg.ActionGroup)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "eu-west-2", cfg.DefaultRegion)
}

func TestLoadMissingFileTolerated(t *testing.T) {
	t.Setenv("CONCIERGE_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("ACTION_GROUP_NAME", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "aws-ai-concierge-tools", cfg.ActionGroup)
}

func TestLoadInvalidRetryEnvIgnored(t *testing.T) {
	t.Setenv("CONCIERGE_CONFIG", "")
	t.Setenv("ACTION_GROUP_NAME", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
}
