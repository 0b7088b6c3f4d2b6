package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultServiceURL is the metadata-search endpoint root.
	DefaultServiceURL = "https://musicbrainz.org/ws/2"
	// DefaultCoverURL is the cover-image archive endpoint root.
	DefaultCoverURL = "https://coverartarchive.org"
	// DefaultCoverSize is the preferred pixel size for fetched covers.
	DefaultCoverSize = 500
	// DefaultRateInterval is the minimum spacing between remote calls.
	DefaultRateInterval = 1100 * time.Millisecond
)

// Configuration structure
type Config struct {
	Contact          string `json:"Contact"`          // Contact string sent in the request identification header
	ServiceURL       string `json:"ServiceURL"`       // Metadata catalog endpoint
	CoverURL         string `json:"CoverURL"`         // Cover archive endpoint
	CoverSize        int    `json:"CoverSize"`        // Preferred cover pixel size (0 = original)
	Parallelism      int    `json:"Parallelism"`      // Concurrent tag writes during album apply
	MirrorAttributes bool   `json:"MirrorAttributes"` // Mirror written tags to extended file attributes
	WarningBehavior  string `json:"WarningBehavior"`  // "immediate", "summary", or "silent"
	UpdateRepo       string `json:"UpdateRepo"`       // GitHub repo checked for new versions ("" disables the check)
}

// DefaultConfig returns a configuration with every field set to its default
func DefaultConfig() *Config {
	return &Config{
		ServiceURL:       DefaultServiceURL,
		CoverURL:         DefaultCoverURL,
		CoverSize:        DefaultCoverSize,
		Parallelism:      3,
		MirrorAttributes: true,
		WarningBehavior:  "summary",
	}
}

// DefaultConfigPath returns the conventional location of the config file
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".config", "tagsync", "config.json")
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureConfigExists writes a default config file if none is present yet
func EnsureConfigExists(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return nil
	}
	return SaveConfig(filePath, DefaultConfig())
}

// Validate checks configuration settings
func (cfg *Config) Validate() error {
	if cfg.ServiceURL == "" {
		return fmt.Errorf("service URL is required")
	}
	if cfg.CoverURL == "" {
		return fmt.Errorf("cover URL is required")
	}
	if cfg.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1")
	}
	return nil
}
