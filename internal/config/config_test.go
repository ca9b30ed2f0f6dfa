package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"CDK_VENDOR_DIR", "CDK_ARCHIVE_EXT", "CDK_LOG_LEVEL", "CDK_LOG_FORMAT", "CDK_OUTPUT"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		VendorDir:  "vendor",
		ArchiveExt: ".jar",
		LogLevel:   "info",
		LogFormat:  "text",
		Output:     "yaml",
	}, cfg)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("CDK_VENDOR_DIR", "/opt/lib")
	t.Setenv("CDK_ARCHIVE_EXT", ".zip")
	t.Setenv("CDK_LOG_LEVEL", "debug")
	t.Setenv("CDK_LOG_FORMAT", "json")
	t.Setenv("CDK_OUTPUT", "json")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/opt/lib", cfg.VendorDir)
	assert.Equal(t, ".zip", cfg.ArchiveExt)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("CDK_LOG_LEVEL", "loud")

	_, err := LoadFromEnv()
	require.EqualError(t, err, `unknown log level "loud"`)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{VendorDir: "v", ArchiveExt: ".jar", LogLevel: "info", LogFormat: "text", Output: "yaml"}
	require.NoError(t, base.Validate())

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{name: "ext without dot", mutate: func(c *Config) { c.ArchiveExt = "jar" }, wantSub: "must start with a dot"},
		{name: "bare dot", mutate: func(c *Config) { c.ArchiveExt = "." }, wantSub: "must start with a dot"},
		{name: "format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantSub: "unknown log format"},
		{name: "output", mutate: func(c *Config) { c.Output = "toml" }, wantSub: "unknown output"},
	}
	for _, tc := range testCases {
		c := base
		tc.mutate(&c)
		err := c.Validate()
		require.Error(t, err, tc.name)
		assert.Contains(t, err.Error(), tc.wantSub, tc.name)
	}
}
