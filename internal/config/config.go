// Package config provides tool configuration management, combining a YAML
// configuration file, environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by the tool
const (
	EnvHostURL = "SONAR_HOST_URL"
	EnvToken   = "SONAR_TOKEN"
)

// DefaultCSVSeparator is used when neither config file nor flag sets one
const DefaultCSVSeparator = ","

// Config holds the tool configuration
type Config struct {
	URL           string `yaml:"url,omitempty"`
	Token         string `yaml:"token,omitempty"`
	CSVSeparator  string `yaml:"csvSeparator,omitempty"`
	LogFile       string `yaml:"logFile,omitempty"`
	AuditSettings string `yaml:"auditSettings,omitempty"`
}

// Load reads the configuration from a specific file path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault loads the configuration from the default location
// (~/.sonar-tools.yaml), falling back to built-in defaults when the file
// does not exist
func LoadDefault() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(homeDir, ".sonar-tools.yaml")
		if _, statErr := os.Stat(path); statErr == nil {
			return Load(path)
		}
	}
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overlays environment variables over file values. Environment
// beats file, flags beat both (handled by the caller).
func (c *Config) ApplyEnv() {
	if url := os.Getenv(EnvHostURL); url != "" {
		c.URL = url
	}
	if token := os.Getenv(EnvToken); token != "" {
		c.Token = token
	}
}

func (c *Config) applyDefaults() {
	if c.CSVSeparator == "" {
		c.CSVSeparator = DefaultCSVSeparator
	}
}
