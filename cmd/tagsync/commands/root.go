package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tagsync/internal/config"
	"tagsync/internal/interfaces"
	"tagsync/internal/services"
	"tagsync/internal/shared"
)

// cliHooks are the command line implementations of the engine's outward
// interfaces: a change log standing in for a library indexer, and a capture
// slot for match sessions the interactive flow resolves after the engine
// returns.
type cliHooks struct {
	changes  *changeLog
	sessions *sessionCapture
}

// changeLog collects changed-file notifications during a run.
type changeLog struct {
	mu    sync.Mutex
	paths []string
}

func (cl *changeLog) NotifyChanged(path string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.paths = append(cl.paths, path)
}

func (cl *changeLog) Count() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.paths)
}

// sessionCapture keeps the most recent unresolved match session.
type sessionCapture struct {
	mu      sync.Mutex
	session *interfaces.MatchSession
}

func (sc *sessionCapture) HandleUnresolved(ctx context.Context, session *interfaces.MatchSession) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.session = session
}

// take returns the captured session and clears the slot.
func (sc *sessionCapture) take() *interfaces.MatchSession {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	session := sc.session
	sc.session = nil
	return session
}

// resolveConfig returns the config file path from the --config flag, or the
// default location, together with the configuration loaded from it.
func resolveConfig(cmd *cobra.Command) (string, *config.Config) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile = config.DefaultConfigPath()
	}
	cfg := config.DefaultConfig()
	if shared.FileExists(configFile) {
		if err := config.LoadConfig(configFile, cfg); err != nil {
			shared.ColorWarning.Printf("⚠️ Failed to load config from %s: %v\n", configFile, err)
		}
	}
	return configFile, cfg
}

// initConfigAndServices loads the configuration and builds the service
// container together with the CLI-side engine hooks. Debug logging turns on
// through the --debug flag or the DEBUG environment variable.
func initConfigAndServices(cmd *cobra.Command) (*config.Config, *services.ServiceContainer, *cliHooks) {
	debug, _ := cmd.Flags().GetBool("debug")
	debug = debug || shared.IsDebugMode()
	_, cfg := resolveConfig(cmd)

	hooks := &cliHooks{changes: &changeLog{}, sessions: &sessionCapture{}}
	container := services.NewServiceContainer(cfg, hooks.changes, hooks.sessions, debug)
	return cfg, container, hooks
}

// acquireLibraryLock serializes tag-writing commands across processes. The
// lock file lives next to the configuration.
func acquireLibraryLock() (*flock.Flock, error) {
	lockPath := filepath.Join(filepath.Dir(config.DefaultConfigPath()), "tagsync.lock")
	if err := config.CreateDirIfNotExists(filepath.Dir(lockPath)); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another tagsync instance is writing to the library")
	}
	return lock, nil
}

// reportRun prints the warning summary and the number of changed files
// after a mutating command.
func reportRun(container *services.ServiceContainer, hooks *cliHooks) {
	if container.WarningCollector.HasWarnings() {
		container.WarningCollector.PrintSummary()
	}
	if n := hooks.changes.Count(); n > 0 {
		shared.ColorSuccess.Printf("📁 %d file(s) updated\n", n)
	}
}
