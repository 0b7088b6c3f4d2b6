package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	saved := DefaultConfig()
	saved.Contact = "admin@example.com"
	saved.CoverSize = 1200
	saved.Parallelism = 8
	saved.UpdateRepo = "owner/tagsync"
	if err := SaveConfig(path, saved); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded := &Config{}
	if err := LoadConfig(path, loaded); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *saved {
		t.Errorf("Round trip changed the config: saved %+v, loaded %+v", saved, loaded)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := &Config{}
	if err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"), cfg); err == nil {
		t.Error("Expected error for a missing config file")
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if err := LoadConfig(path, &Config{}); err == nil {
		t.Error("Expected error for malformed config")
	}
}

func TestEnsureConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := EnsureConfigExists(path); err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}
	loaded := &Config{}
	if err := LoadConfig(path, loaded); err != nil {
		t.Fatalf("LoadConfig after ensure failed: %v", err)
	}
	if loaded.ServiceURL != DefaultServiceURL {
		t.Errorf("Expected default service URL, got %q", loaded.ServiceURL)
	}

	// A second call must not overwrite what is already there.
	loaded.Parallelism = 12
	if err := SaveConfig(path, loaded); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := EnsureConfigExists(path); err != nil {
		t.Fatalf("EnsureConfigExists on existing file failed: %v", err)
	}
	reloaded := &Config{}
	if err := LoadConfig(path, reloaded); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if reloaded.Parallelism != 12 {
		t.Errorf("Expected existing config to survive, got parallelism %d", reloaded.Parallelism)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.ServiceURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty service URL")
	}

	cfg = DefaultConfig()
	cfg.CoverURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty cover URL")
	}

	cfg = DefaultConfig()
	cfg.Parallelism = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero parallelism")
	}
}
