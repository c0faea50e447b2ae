// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/config"
	"switchyard-cli/internal/registry"
)

type (
	// Result is the merged outcome of discovering one branch.
	Result struct {
		// BranchName is the branch that was interrogated.
		BranchName string
		// EntryPoint is the module used for runtime introspection.
		EntryPoint string
		// Commands is the merged command set: runtime results first (the
		// authoritative method), then source-only additions.
		Commands []string
		// RuntimeCommands is the set from help introspection.
		RuntimeCommands []string
		// SourceCommands is the set from the static scan.
		SourceCommands []string
		// SourceFiles are the module files the static scan read.
		SourceFiles []string
		// Classification is cli, library, or unknown.
		Classification string
	}

	// RegisterOutcome summarizes a registration pass.
	RegisterOutcome struct {
		// NewRecords are the records assigned IDs this pass.
		NewRecords []registry.CommandRecord
		// Existing is the count of already-registered commands.
		Existing int
	}

	// Engine runs discovery and registration for branches.
	Engine struct {
		store    *registry.Store
		resolver *branch.Resolver
		cfg      *config.Config
		logger   *log.Logger
		now      func() time.Time
	}
)

// NewEngine creates a discovery Engine.
func NewEngine(store *registry.Store, resolver *branch.Resolver, cfg *config.Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: store, resolver: resolver, cfg: cfg, logger: logger, now: time.Now}
}

// Discover interrogates one branch with both methods and merges the
// results. A branch that yields zero commands is a recognized outcome:
// the result carries an empty set and Register will not touch the
// registry for it.
func (e *Engine) Discover(ctx context.Context, rec registry.BranchRecord) (Result, error) {
	result := Result{BranchName: rec.Name}

	entryPoint, err := e.resolver.EntryPoint(rec)
	if err == nil {
		result.EntryPoint = entryPoint
		result.RuntimeCommands = IntrospectHelp(ctx, entryPoint,
			e.cfg.Discovery.HelpFlag,
			time.Duration(e.cfg.Discovery.HelpTimeoutSeconds)*time.Second)
		result.Classification = ClassifyEntryPoint(entryPoint)
	} else {
		// Discovery can still scan source; dispatch would fail later.
		result.Classification = ClassUnknown
	}

	scan := ScanSource(rec.RootPath, e.cfg.Discovery.ScanExtensions, e.cfg.Discovery.IgnoredModules)
	result.SourceCommands = scan.Commands
	result.SourceFiles = scan.Files

	result.Commands = MergeCommandSets(result.RuntimeCommands, result.SourceCommands)
	return result, nil
}

// MergeCommandSets unions the two methods, runtime first. Runtime is
// authoritative on conflicts, which for a set union means its ordering
// wins; source-scan commands not seen at runtime are appended in their
// sorted order.
func MergeCommandSets(runtime, source []string) []string {
	seen := make(map[string]bool, len(runtime))
	merged := make([]string, 0, len(runtime)+len(source))
	for _, c := range runtime {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	for _, c := range source {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	return merged
}

// Register persists a discovery result: every (branch, command) pair not
// already present in the branch registry gets a fresh global ID and a
// CommandRecord; existing pairs keep theirs. Central bookkeeping
// (module classification, source files, statistics) is updated in the
// same pass. A result with zero commands mutates nothing.
func (e *Engine) Register(result Result) (RegisterOutcome, error) {
	var outcome RegisterOutcome
	if len(result.Commands) == 0 {
		return outcome, nil
	}

	records, err := e.store.LoadBranchRegistry(result.BranchName)
	if err != nil {
		return outcome, err
	}

	for _, command := range result.Commands {
		key := registry.CommandKey(result.BranchName, command)
		if _, ok := records[key]; ok {
			outcome.Existing++
			continue
		}
		id, err := e.store.NextGlobalID()
		if err != nil {
			return outcome, fmt.Errorf("failed to assign global id for %s: %w", key, err)
		}
		rec := registry.CommandRecord{
			GlobalID:     id,
			CommandName:  command,
			BranchName:   result.BranchName,
			ModulePath:   result.EntryPoint,
			RegisteredAt: e.now(),
			Active:       true,
		}
		records[key] = rec
		outcome.NewRecords = append(outcome.NewRecords, rec)
	}

	if len(outcome.NewRecords) > 0 {
		if err := e.store.SaveBranchRegistry(result.BranchName, records); err != nil {
			return outcome, err
		}
	}

	central, err := e.store.LoadCentralRegistry()
	if err != nil {
		return outcome, err
	}
	central.Modules[result.BranchName] = registry.BranchModuleInfo{
		Classification: result.Classification,
		EntryPointPath: result.EntryPoint,
		LastScanned:    e.now(),
	}
	central.SourceFiles[result.BranchName] = result.SourceFiles
	central.Statistics.TotalCommands += len(outcome.NewRecords)
	central.Statistics.TotalBranches = len(central.Modules)
	if err := e.store.SaveCentralRegistry(central); err != nil {
		return outcome, err
	}

	e.logger.Info("discovery registered",
		"branch", result.BranchName,
		"new", len(outcome.NewRecords),
		"existing", outcome.Existing)
	return outcome, nil
}
