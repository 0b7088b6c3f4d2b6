package services

import (
	"testing"

	"tagsync/internal/config"
	"tagsync/internal/core/tags"
	"tagsync/internal/interfaces"
)

func TestServiceIntegration(t *testing.T) {
	// Create a test configuration
	cfg := config.DefaultConfig()
	cfg.Contact = "tests@example.com"

	// Create service container
	container := NewServiceContainer(cfg, nil, nil, false)

	// Test config validation through the container
	if err := container.Config.Validate(); err != nil {
		t.Errorf("Default config validation failed: %v", err)
	}

	// Test logger service
	container.Logger.SetDebugMode(true)
	container.Logger.Info("Test integration message")
	container.Logger.Debug("Test debug message")

	// Test warning collector
	if container.WarningCollector.HasWarnings() {
		t.Error("New warning collector should have no warnings")
	}

	// Test that the catalog client picked up the configured contact
	if container.Catalog.GetConfig().Contact != "tests@example.com" {
		t.Error("Catalog client should carry the configured contact")
	}

	// Test that all services implement their interfaces correctly
	// This is mostly a compile-time check, but we can verify at runtime too
	var _ interfaces.LoggerService = container.Logger
	var _ interfaces.WarningCollectorService = container.WarningCollector
	var _ interfaces.TagReader = container.Store
	var _ interfaces.TagWriter = container.Store
	var _ interfaces.ArtworkReader = container.Store
	var _ interfaces.ArtworkWriter = container.Store
	var _ interfaces.CatalogClient = container.Catalog
	var _ tags.AttributeWarningSink = container.WarningCollector
}

func TestDependencyInjection(t *testing.T) {
	// Test that services can be created with different configurations
	cfg1 := &config.Config{
		ServiceURL:  "https://one.test/ws/2",
		CoverURL:    "https://covers.one.test",
		Parallelism: 2,
	}

	cfg2 := &config.Config{
		ServiceURL:  "https://two.test/ws/2",
		CoverURL:    "https://covers.two.test",
		Parallelism: 5,
	}

	container1 := NewServiceContainer(cfg1, nil, nil, false)
	container2 := NewServiceContainer(cfg2, nil, nil, false)

	// Verify that different containers talk to their own endpoints
	if container1.Catalog.GetConfig().BaseURL == container2.Catalog.GetConfig().BaseURL {
		t.Error("Different service containers should keep their own catalog endpoints")
	}

	// Verify that services are independent
	container1.Logger.SetDebugMode(true)
	container2.Logger.SetDebugMode(false)

	// Both containers should work independently
	container1.Logger.Debug("Container 1 debug message")
	container2.Logger.Info("Container 2 info message")
}
