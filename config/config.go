package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ieee0824/lextree-go/decoder"
	"github.com/ieee0824/lextree-go/internal/trace"
	"github.com/ieee0824/lextree-go/linguist"
)

// Config represents the application configuration
type Config struct {
	// Model file locations
	Model struct {
		Acoustic   string `yaml:"acoustic"`
		Language   string `yaml:"language"`
		Dictionary string `yaml:"dictionary"`
		Filler     string `yaml:"filler"`
	} `yaml:"model"`

	// Tree compilation and search state scoring
	Linguist linguist.Config `yaml:"linguist"`

	// Search-space walk
	Walk decoder.Config `yaml:"walk"`

	// Tracing
	Trace trace.Config `yaml:"trace"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Model.Acoustic = "am.gob"
	cfg.Model.Language = "lm.arpa"
	cfg.Model.Dictionary = "dict.tsv"

	cfg.Linguist = linguist.DefaultConfig()
	cfg.Walk = decoder.DefaultConfig()
	cfg.Trace = *trace.DefaultConfig()

	return cfg
}

// Load loads configuration from file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.lextreerc > /etc/lextree/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".lextreerc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	systemConfigPath := "/etc/lextree/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Model.Acoustic == "" || c.Model.Language == "" || c.Model.Dictionary == "" {
		return fmt.Errorf("model: acoustic, language and dictionary paths are required")
	}
	if err := c.Linguist.Validate(); err != nil {
		return fmt.Errorf("linguist: %w", err)
	}
	if err := c.Walk.Validate(); err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	if err := c.Trace.Validate(); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	return nil
}
