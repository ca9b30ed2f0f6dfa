// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the settings shared by the cdk command.
type Config struct {
	// VendorDir is the directory archives are assembled from.
	VendorDir string

	// ArchiveExt selects archive files in VendorDir, including the dot.
	ArchiveExt string

	LogLevel  string
	LogFormat string

	// Output is the result encoding: yaml or json.
	Output string
}

// LoadFromEnv reads CDK_* variables, falling back to defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		VendorDir:  getenv("CDK_VENDOR_DIR", "vendor"),
		ArchiveExt: getenv("CDK_ARCHIVE_EXT", ".jar"),
		LogLevel:   getenv("CDK_LOG_LEVEL", "info"),
		LogFormat:  getenv("CDK_LOG_FORMAT", "text"),
		Output:     getenv("CDK_OUTPUT", "yaml"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.ArchiveExt, ".") || len(c.ArchiveExt) < 2 {
		return fmt.Errorf("archive extension %q must start with a dot", c.ArchiveExt)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch c.Output {
	case "yaml", "json":
	default:
		return fmt.Errorf("unknown output %q", c.Output)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
