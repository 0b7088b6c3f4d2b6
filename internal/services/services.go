package services

import (
	"fmt"

	"tagsync/internal/api/musicbrainz"
	"tagsync/internal/config"
	"tagsync/internal/core/reconcile"
	"tagsync/internal/core/tags"
	"tagsync/internal/interfaces"
	"tagsync/internal/shared"
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config           *config.Config
	Store            *tags.Store
	Catalog          *musicbrainz.Client
	Engine           *reconcile.Engine
	Logger           interfaces.LoggerService
	WarningCollector interfaces.WarningCollectorService
}

// NewServiceContainer creates a new service container with all services
// initialized. The change notifier and manual matcher are supplied by the
// caller because their implementations live with the user interface; both
// may be nil.
func NewServiceContainer(cfg *config.Config, notifier interfaces.ChangeNotifier, matcher interfaces.ManualMatcher, debug bool) *ServiceContainer {
	// Create logger first as other services may need it
	logger := NewConsoleLogger()
	logger.SetDebugMode(debug)

	// Create warning collector
	warningCollector := shared.NewWarningCollector(cfg.WarningBehavior != "silent")

	// Create tag store
	store := tags.NewStore(cfg.MirrorAttributes, debug)
	store.SetWarningSink(warningCollector)

	// Create catalog client
	catalog := musicbrainz.NewClientWithConfig(catalogConfig(cfg, debug))

	// Create reconciliation engine
	engineConfig := reconcile.DefaultConfig()
	if cfg.CoverSize >= 0 {
		engineConfig.PreferredCoverSize = uint(cfg.CoverSize)
	}
	if cfg.Parallelism > 0 {
		engineConfig.Parallelism = cfg.Parallelism
	}
	engineConfig.Debug = debug
	engine := reconcile.NewEngine(store, store, catalog, notifier, matcher, warningCollector, engineConfig)

	return &ServiceContainer{
		Config:           cfg,
		Store:            store,
		Catalog:          catalog,
		Engine:           engine,
		Logger:           logger,
		WarningCollector: warningCollector,
	}
}

// catalogConfig maps the file configuration onto the catalog client's
// configuration. Empty endpoints keep the client defaults.
func catalogConfig(cfg *config.Config, debug bool) musicbrainz.Config {
	clientConfig := musicbrainz.DefaultConfig()
	clientConfig.Contact = cfg.Contact
	if cfg.ServiceURL != "" {
		clientConfig.BaseURL = cfg.ServiceURL
	}
	if cfg.CoverURL != "" {
		clientConfig.CoverURL = cfg.CoverURL
	}
	clientConfig.Debug = debug
	return clientConfig
}

// ConsoleLogger implementation
type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debugMode: false}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf("⚠️ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf("❌ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if cl.debugMode {
		fmt.Printf("🐛 DEBUG: "+message+"\n", args...)
	}
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf("✅ "+message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}
