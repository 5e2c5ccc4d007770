// Package config loads the optional uipcli configuration file. The file is
// read once at startup into an explicit struct; nothing is loaded at import
// time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/uipathcommunity/uipcli/pkg/auth"
)

// Config is the on-disk CLI configuration. Every field is optional; zero
// values fall back to the built-in cloud defaults.
type Config struct {
	Domain      string            `yaml:"domain,omitempty"`
	ClientID    string            `yaml:"client-id,omitempty"`
	Scope       string            `yaml:"scope,omitempty"`
	Port        int               `yaml:"port,omitempty"`
	RedirectURI string            `yaml:"redirect-uri,omitempty"`
	Timeout     string            `yaml:"timeout,omitempty"`
	BaseURLs    map[string]string `yaml:"base-urls,omitempty"`

	TokenStorage   string `yaml:"token-storage,omitempty"`
	FolderKey      string `yaml:"folder-key,omitempty"`
	NonInteractive bool   `yaml:"non-interactive,omitempty"`
}

// Load reads and parses the config file. A missing file is not an error; it
// yields an empty config.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// AuthConfig merges the file values onto the built-in defaults.
func (c *Config) AuthConfig() (auth.Config, error) {
	cfg := auth.DefaultConfig()
	if c.Domain != "" {
		cfg.Domain = c.Domain
	}
	if c.ClientID != "" {
		cfg.ClientID = c.ClientID
	}
	if c.Scope != "" {
		cfg.Scope = c.Scope
	}
	if c.Port != 0 {
		cfg.DefaultPort = c.Port
	}
	if c.RedirectURI != "" {
		cfg.RedirectURI = c.RedirectURI
	}
	if c.BaseURLs != nil {
		cfg.BaseURLs = c.BaseURLs
	}
	if c.Timeout != "" {
		timeout, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return auth.Config{}, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}
