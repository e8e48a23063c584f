// Package config handles runtime configuration for dradis-mcp: defaults,
// an optional YAML file overlay, and environment variables, applied in
// that order (environment wins).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// Config holds runtime settings for the dradis-mcp server.
type Config struct {
	// URL is the Dradis Pro instance base URL, without trailing slash.
	URL string `yaml:"url"`

	// APIToken is the static Dradis API token sent on every request.
	APIToken string `yaml:"api_token"`

	// DefaultTeamID is applied when create_project is called without a
	// team id. Zero means no default.
	DefaultTeamID int `yaml:"default_team_id"`

	// DefaultTemplateID is the default report template properties id.
	DefaultTemplateID int `yaml:"default_template_id"`

	// DefaultTemplate is the default project template name.
	DefaultTemplate string `yaml:"default_template"`

	// VulnerabilityFields is the ordered list of vulnerability field
	// names. It drives both the create/update tool schemas and the
	// field-codec encoding order.
	VulnerabilityFields []string `yaml:"vulnerability_fields"`
}

// Load builds a Config by overlaying an optional YAML file (path from the
// DRADIS_MCP_CONFIG environment variable, or configFile if non-empty) and
// then environment variables. The result is validated.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile == "" {
		configFile = os.Getenv(defaults.EnvConfigFile)
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv(defaults.EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(defaults.EnvAPIToken); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv(defaults.EnvDefaultTeamID); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.DefaultTeamID = id
		}
	}
	if v := os.Getenv(defaults.EnvDefaultTemplateID); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.DefaultTemplateID = id
		}
	}
	if v := os.Getenv(defaults.EnvDefaultTemplate); v != "" {
		c.DefaultTemplate = v
	}
	if v := os.Getenv(defaults.EnvVulnerabilityParameters); v != "" {
		c.VulnerabilityFields = SplitFields(v)
	}
}

// SplitFields parses a comma-separated field list, trimming whitespace and
// dropping empty entries. Order is preserved: it is the codec's encoding
// order.
func SplitFields(s string) []string {
	parts := strings.Split(s, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// Validate checks required fields and normalizes the base URL.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, defaults.EnvURL)
	}
	if c.APIToken == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, defaults.EnvAPIToken)
	}

	c.URL = strings.TrimRight(c.URL, "/")
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalidConfig, defaults.EnvURL, c.URL)
	}
	return nil
}
