// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"switchyard-cli/internal/activation"
	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/config"
	"switchyard-cli/internal/discovery"
	"switchyard-cli/internal/notify"
	"switchyard-cli/internal/registry"
	"switchyard-cli/internal/supervise"
)

// App wires the router's services for one invocation. All command
// handlers build an App first and delegate through it; no state crosses
// invocation boundaries.
type App struct {
	Config       *config.Config
	Store        *registry.Store
	Resolver     *branch.Resolver
	Activation   *activation.Engine
	Discovery    *discovery.Engine
	Supervisor   *supervise.Supervisor
	Policy       supervise.TimeoutPolicy
	Logger       *log.Logger
	InvocationID string
}

// newApp loads configuration and constructs the service graph.
func newApp() (*App, error) {
	cfg, err := config.LoadWith(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		verbose = true
	}

	logger := newLogger()
	store := registry.NewStore(cfg.WorkspaceRoot, cfg.RouterRoot, registry.WithLogger(logger))

	// The central config triplet can override the keyword lists and the
	// ignored-module set per workspace.
	if opCfg, err := store.LoadOperationalConfig(); err == nil {
		if len(opCfg.LongRunningKeywords) > 0 {
			cfg.Supervise.LongRunningKeywords = opCfg.LongRunningKeywords
		}
		if len(opCfg.LongBoundedCommands) > 0 {
			cfg.Supervise.LongBoundedCommands = opCfg.LongBoundedCommands
		}
		if len(opCfg.IgnoredModules) > 0 {
			cfg.Discovery.IgnoredModules = opCfg.IgnoredModules
		}
	}

	resolver := branch.NewResolver(cfg.WorkspaceRoot, store, cfg.Discovery.IgnoredModules)
	invocationID := uuid.NewString()
	notifier := notify.NewHTTPNotifier(cfg.Notify.SinkURL,
		time.Duration(cfg.Notify.TimeoutSeconds)*time.Second, logger)

	return &App{
		Config:       cfg,
		Store:        store,
		Resolver:     resolver,
		Activation:   activation.NewEngine(store),
		Discovery:    discovery.NewEngine(store, resolver, cfg, logger),
		Supervisor:   supervise.NewSupervisor(invocationID, notifier, logger),
		Policy:       supervise.NewTimeoutPolicy(cfg.Supervise),
		Logger:       logger,
		InvocationID: invocationID,
	}, nil
}

// newLogger builds the invocation logger. Warnings and errors always
// reach the structured log; --verbose adds info, --debug adds debug.
func newLogger() *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.InfoLevel
	}
	if debugFlag {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
		Prefix:          "switchyard",
	})
}
