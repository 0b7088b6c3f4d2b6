package services

import (
	"testing"

	"tagsync/internal/config"
	"tagsync/internal/shared"
)

func TestNewServiceContainer(t *testing.T) {
	// Create a test configuration
	cfg := &config.Config{
		Contact:          "tests@example.com",
		ServiceURL:       "https://catalog.test/ws/2",
		CoverURL:         "https://covers.test",
		CoverSize:        500,
		Parallelism:      3,
		MirrorAttributes: true,
		WarningBehavior:  "summary",
	}

	// Test service container creation
	container := NewServiceContainer(cfg, nil, nil, false)

	// Verify all services are initialized
	if container.Config == nil {
		t.Error("Config not initialized")
	}
	if container.Store == nil {
		t.Error("Tag store not initialized")
	}
	if container.Catalog == nil {
		t.Error("Catalog client not initialized")
	}
	if container.Engine == nil {
		t.Error("Reconciliation engine not initialized")
	}
	if container.Logger == nil {
		t.Error("Logger service not initialized")
	}
	if container.WarningCollector == nil {
		t.Error("WarningCollector service not initialized")
	}
}

func TestCatalogConfigMapping(t *testing.T) {
	cfg := &config.Config{
		Contact:    "ops@example.com",
		ServiceURL: "https://catalog.test/ws/2",
		CoverURL:   "https://covers.test",
	}

	clientConfig := catalogConfig(cfg, true)
	if clientConfig.BaseURL != "https://catalog.test/ws/2" {
		t.Errorf("Expected configured base URL, got %q", clientConfig.BaseURL)
	}
	if clientConfig.CoverURL != "https://covers.test" {
		t.Errorf("Expected configured cover URL, got %q", clientConfig.CoverURL)
	}
	if clientConfig.Contact != "ops@example.com" {
		t.Errorf("Expected contact to carry over, got %q", clientConfig.Contact)
	}
	if !clientConfig.Debug {
		t.Error("Expected debug to carry over")
	}

	// Empty endpoints keep the client defaults
	clientConfig = catalogConfig(&config.Config{}, false)
	if clientConfig.BaseURL == "" {
		t.Error("Empty service URL should fall back to the default")
	}
	if clientConfig.CoverURL == "" {
		t.Error("Empty cover URL should fall back to the default")
	}
}

func TestConfigValidation(t *testing.T) {
	// Test default config creation
	defaultConfig := config.DefaultConfig()
	if defaultConfig.ServiceURL == "" {
		t.Error("Default config should have a service URL")
	}
	if defaultConfig.CoverURL == "" {
		t.Error("Default config should have a cover URL")
	}

	// Test config validation
	err := defaultConfig.Validate()
	if err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	// Test invalid config
	invalidConfig := &config.Config{}
	err = invalidConfig.Validate()
	if err == nil {
		t.Error("Invalid config should fail validation")
	}
}

func TestConsoleLogger(t *testing.T) {
	logger := NewConsoleLogger()

	// Test debug mode
	logger.SetDebugMode(true)
	// These won't fail but will test the interface
	logger.Info("Test info message")
	logger.Warning("Test warning message")
	logger.Error("Test error message")
	logger.Debug("Test debug message")
	logger.Success("Test success message")
}

func TestWarningCollector(t *testing.T) {
	wc := shared.NewWarningCollector(true)

	// Test initial state
	if wc.HasWarnings() {
		t.Error("New warning collector should have no warnings")
	}

	// Test adding warnings
	wc.AddRecordingLookupWarning("Artist", "Track", "Test details")
	wc.AddReleaseLookupWarning("release-id", "Test details")

	if !wc.HasWarnings() {
		t.Error("Warning collector should have warnings after adding")
	}

	count := wc.GetWarningCount()
	if count != 2 {
		t.Errorf("Expected 2 warnings, got %d", count)
	}
}
