package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "~/.config/enragetracker/config.yaml"

// Config holds all enragetracker configuration.
type Config struct {
	Source   string        `yaml:"source"`
	Timezone string        `yaml:"timezone"`
	Sheet    SheetConfig   `yaml:"sheet"`
	Analyze  AnalyzeConfig `yaml:"analyze"`
	Display  DisplayConfig `yaml:"display"`
}

// SheetConfig selects a Google Sheet as the kill source instead of data.json.
type SheetConfig struct {
	URL             string `yaml:"url"`
	Name            string `yaml:"name"`
	CredentialsFile string `yaml:"credentials_file"`
}

// AnalyzeConfig configures the analyze command.
type AnalyzeConfig struct {
	Model string `yaml:"model"`
}

// DisplayConfig controls the player view.
type DisplayConfig struct {
	RecentKills int `yaml:"recent_kills"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Source:   "data/data.json",
		Timezone: "UTC",
		Sheet: SheetConfig{
			Name: "data",
		},
		Analyze: AnalyzeConfig{
			Model: "claude-haiku-4-5-20251001",
		},
		Display: DisplayConfig{
			RecentKills: 10,
		},
	}
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// ApplyEnv overrides fields from ENRAGE_SOURCE, ENRAGE_TZ, ENRAGE_SHEET_URL,
// ENRAGE_SHEET_CREDENTIALS and ANTHROPIC_MODEL when they are set.
func (c *Config) ApplyEnv() {
	c.Source = getEnv("ENRAGE_SOURCE", c.Source)
	c.Timezone = getEnv("ENRAGE_TZ", c.Timezone)
	c.Sheet.URL = getEnv("ENRAGE_SHEET_URL", c.Sheet.URL)
	c.Sheet.CredentialsFile = getEnv("ENRAGE_SHEET_CREDENTIALS", c.Sheet.CredentialsFile)
	c.Analyze.Model = getEnv("ANTHROPIC_MODEL", c.Analyze.Model)
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Source == "" && c.Sheet.URL == "" {
		return fmt.Errorf("config: either source or sheet.url must be set")
	}
	if c.Display.RecentKills < 0 {
		return fmt.Errorf("config: display.recent_kills must be >= 0, got %d", c.Display.RecentKills)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "" and "UTC" are UTC, "Local" is the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
