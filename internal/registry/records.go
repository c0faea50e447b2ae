// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"strings"
	"time"
)

// BranchStatus is the lifecycle state of a branch.
type BranchStatus string

const (
	// StatusActive marks a branch that is routable.
	StatusActive BranchStatus = "active"
	// StatusInactive marks a branch that exists but is not in use.
	StatusInactive BranchStatus = "inactive"
	// StatusArchived marks a branch kept only for history.
	StatusArchived BranchStatus = "archived"
)

type (
	// BranchRecord identifies one branch in the workspace.
	BranchRecord struct {
		// Name is the short lowercase token, unique in the directory.
		Name string `json:"name"`
		// DisplayName is the canonical uppercase form.
		DisplayName string `json:"display_name"`
		// Handle is the symbolic form, always "@" + Name.
		Handle string `json:"handle"`
		// RootPath is the absolute branch directory.
		RootPath string `json:"root_path"`
		// EntryPointPath is the absolute entry point file, typically
		// {root}/apps/{name}. Empty when undiscovered.
		EntryPointPath string `json:"entry_point_path,omitempty"`
		// Status is active, inactive, or archived.
		Status BranchStatus `json:"status"`
		// CreatedAt is when the branch was added to the directory.
		CreatedAt time.Time `json:"created_at"`
		// LastActiveAt is the last recorded activity.
		LastActiveAt time.Time `json:"last_active_at"`
	}

	// DirectoryMetadata is the header of the branch directory document.
	DirectoryMetadata struct {
		// Version is the document schema version.
		Version string `json:"version"`
		// LastUpdated is the last rewrite time.
		LastUpdated time.Time `json:"last_updated"`
		// TotalBranches is the branch count at last write.
		TotalBranches int `json:"total_branches"`
	}

	// BranchDirectory is the persisted mapping of branch names to records.
	// External tools own insertions; the router only reads it.
	BranchDirectory struct {
		Metadata DirectoryMetadata `json:"metadata"`
		Branches []BranchRecord    `json:"branches"`
	}

	// CommandRecord is one discovered command in one branch.
	CommandRecord struct {
		// GlobalID is the monotonic integer unique across the system.
		GlobalID int `json:"global_id"`
		// CommandName is the verb, unique within a branch.
		CommandName string `json:"command_name"`
		// BranchName is the owning branch.
		BranchName string `json:"branch_name"`
		// ModulePath is the absolute file of the entry point or a more
		// specific module.
		ModulePath string `json:"module_path"`
		// RegisteredAt is when the command was first registered.
		RegisteredAt time.Time `json:"registered_at"`
		// Active reports whether the command is currently exposed.
		Active bool `json:"active"`
	}

	// ActivatedCommand is one shortcut mapping.
	ActivatedCommand struct {
		// ShortcutPhrase is 1-4 space-separated lowercase tokens, unique
		// across the entire activation set.
		ShortcutPhrase string `json:"shortcut_phrase"`
		// TargetBranch is the branch the shortcut dispatches to.
		TargetBranch string `json:"target_branch"`
		// TargetCommandName is the command verb passed to the branch.
		TargetCommandName string `json:"target_command_name"`
		// TargetModulePath is the absolute module file to spawn.
		TargetModulePath string `json:"target_module_path"`
		// Description is free text shown in listings.
		Description string `json:"description,omitempty"`
	}

	// CentralStatistics aggregates counters on the central registry.
	CentralStatistics struct {
		// TotalCommands is the number of registered commands system-wide.
		TotalCommands int `json:"total_commands"`
		// TotalBranches is the number of branches with registrations.
		TotalBranches int `json:"total_branches"`
		// AutoHealingCount counts registry files repaired after corruption.
		AutoHealingCount int `json:"auto_healing_count"`
	}

	// CentralRegistry is the central registry document. It owns the global
	// ID counter and bookkeeping shared across branches.
	CentralRegistry struct {
		Version     string                   `json:"version"`
		Created     time.Time                `json:"created"`
		LastUpdated time.Time                `json:"last_updated"`
		// Commands is an aggregate view keyed "{branch}:{command}"; may be
		// empty when per-branch registries are authoritative.
		Commands map[string]CommandRecord `json:"commands"`
		// Modules holds per-branch metadata (classification, entry point).
		Modules map[string]BranchModuleInfo `json:"modules"`
		// Statistics holds system-wide counters.
		Statistics CentralStatistics `json:"statistics"`
		// SourceFiles is bookkeeping of scanned files per branch.
		SourceFiles map[string][]string `json:"source_files"`
		// GlobalIDCounter is the last assigned global command ID.
		GlobalIDCounter int `json:"global_id_counter"`
	}

	// BranchModuleInfo is per-branch metadata recorded at scan time.
	BranchModuleInfo struct {
		// Classification is "cli", "library", or "unknown".
		Classification string `json:"classification"`
		// EntryPointPath is the entry point used for runtime introspection.
		EntryPointPath string `json:"entry_point_path,omitempty"`
		// LastScanned is when discovery last ran for the branch.
		LastScanned time.Time `json:"last_scanned"`
	}
)

// RegistryVersion is the schema version written to new documents.
const RegistryVersion = "1.0"

// CommandKey builds the per-branch registry key "{branch}:{command}".
func CommandKey(branch, command string) string {
	return branch + ":" + command
}

// SplitCommandKey splits a "{branch}:{command}" key. It returns an error
// for keys that do not contain a separator.
func SplitCommandKey(key string) (branch, command string, err error) {
	branch, command, ok := strings.Cut(key, ":")
	if !ok || branch == "" || command == "" {
		return "", "", fmt.Errorf("malformed command key %q", key)
	}
	return branch, command, nil
}

// NewCentralRegistry returns a schema-valid empty central registry.
func NewCentralRegistry(now time.Time) *CentralRegistry {
	return &CentralRegistry{
		Version:     RegistryVersion,
		Created:     now,
		LastUpdated: now,
		Commands:    map[string]CommandRecord{},
		Modules:     map[string]BranchModuleInfo{},
		SourceFiles: map[string][]string{},
	}
}

// Backfill repairs structural gaps (missing maps, empty version) without
// touching data that parsed successfully. It returns true when anything
// was filled in.
func (r *CentralRegistry) Backfill(now time.Time) bool {
	changed := false
	if r.Version == "" {
		r.Version = RegistryVersion
		changed = true
	}
	if r.Created.IsZero() {
		r.Created = now
		changed = true
	}
	if r.Commands == nil {
		r.Commands = map[string]CommandRecord{}
		changed = true
	}
	if r.Modules == nil {
		r.Modules = map[string]BranchModuleInfo{}
		changed = true
	}
	if r.SourceFiles == nil {
		r.SourceFiles = map[string][]string{}
		changed = true
	}
	return changed
}

// NewBranchDirectory returns a schema-valid empty branch directory.
func NewBranchDirectory(now time.Time) *BranchDirectory {
	return &BranchDirectory{
		Metadata: DirectoryMetadata{Version: RegistryVersion, LastUpdated: now},
		Branches: []BranchRecord{},
	}
}

// Lookup returns the record for a branch name (case-insensitive) or false.
func (d *BranchDirectory) Lookup(name string) (BranchRecord, bool) {
	for _, b := range d.Branches {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return BranchRecord{}, false
}

// LookupByPath returns the record whose root path matches the given
// absolute path, or false.
func (d *BranchDirectory) LookupByPath(absPath string) (BranchRecord, bool) {
	for _, b := range d.Branches {
		if b.RootPath == absPath {
			return b, true
		}
	}
	return BranchRecord{}, false
}
