package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"URL", "API_KEY", "DEFAULT_TIMEOUT", "INBOX_ID", "OUTPUT_FORMAT", "LOGGING_LEVEL"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+key))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parble.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
url: https://api.parble.com/v1/
api_key: FooBar
default_timeout: 12.5
inbox_id: 636baf52b9753d4ce1e210d0
output:
  format: yaml
  spinner: false
filters:
  invoices: Type == "Invoice"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.parble.com/v1/", cfg.URL)
	assert.Equal(t, "FooBar", cfg.APIKey)
	assert.Equal(t, "12.5", cfg.DefaultTimeout)
	assert.Equal(t, "636baf52b9753d4ce1e210d0", cfg.InboxID)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.False(t, cfg.Output.Spinner)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
	assert.Equal(t, `Type == "Invoice"`, cfg.ResolveFilter("invoices"))
	assert.Equal(t, `Automated`, cfg.ResolveFilter("Automated"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.URL)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.DefaultTimeout)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Spinner)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("PARBLE_URL", "https://env.parble.com/v1")
	t.Setenv("PARBLE_API_KEY", "EnvKey")
	t.Setenv("PARBLE_DEFAULT_TIMEOUT", "5")
	t.Setenv("PARBLE_OUTPUT_FORMAT", "xlsx")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.parble.com/v1", cfg.URL)
	assert.Equal(t, "EnvKey", cfg.APIKey)
	assert.Equal(t, "5", cfg.DefaultTimeout)
	assert.Equal(t, "xlsx", cfg.Output.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "url: https://file.parble.com/v1/\napi_key: FileKey\n")
	t.Setenv("PARBLE_API_KEY", "EnvKey")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.parble.com/v1/", cfg.URL)
	assert.Equal(t, "EnvKey", cfg.APIKey)
}

func TestLoadKeepsInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PARBLE_DEFAULT_TIMEOUT", "abc")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.DefaultTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Output:  OutputConfig{Format: "json"},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name        string
		modify      func(*Config)
		errContains string
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:        "unknown output format",
			modify:      func(c *Config) { c.Output.Format = "csv" },
			errContains: "output.format",
		},
		{
			name:        "broken filter",
			modify:      func(c *Config) { c.Filters = FilterConfig{"bad": `Type ==`} },
			errContains: `invalid filter "bad"`,
		},
		{
			name:        "invalid logging level",
			modify:      func(c *Config) { c.Logging.Level = "verbose" },
			errContains: "invalid logging level: verbose",
		},
		{
			name:        "invalid logging format",
			modify:      func(c *Config) { c.Logging.Format = "xml" },
			errContains: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
