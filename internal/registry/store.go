// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Well-known file names in the registry tree.
const (
	branchDirectoryFile = "BRANCH_DIRECTORY.json"
	centralRegistryFile = "registry.json"
	branchRegistryFile  = "registry.json"
	branchActiveFile    = "active.json"
)

// Store reads and writes the persisted registry tree. A Store is created
// per invocation; it holds no cross-invocation caches, so every load sees
// the filesystem's current state.
type Store struct {
	workspaceRoot string
	routerRoot    string
	logger        *log.Logger
	now           func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for heal reporting.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store rooted at the given workspace and router roots.
func NewStore(workspaceRoot, routerRoot string, opts ...Option) *Store {
	s := &Store{
		workspaceRoot: workspaceRoot,
		routerRoot:    routerRoot,
		logger:        log.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkspaceRoot returns the configured workspace root.
func (s *Store) WorkspaceRoot() string { return s.workspaceRoot }

// RouterRoot returns the configured router root.
func (s *Store) RouterRoot() string { return s.routerRoot }

// BranchDirectoryPath returns the path of the branch directory document.
func (s *Store) BranchDirectoryPath() string {
	return filepath.Join(s.workspaceRoot, branchDirectoryFile)
}

// CentralDir returns the central registry directory.
func (s *Store) CentralDir() string {
	return filepath.Join(s.routerRoot, "central")
}

// CentralRegistryPath returns the path of the central registry document.
func (s *Store) CentralRegistryPath() string {
	return filepath.Join(s.CentralDir(), centralRegistryFile)
}

// BranchCommandsDir returns the per-branch registry directory.
func (s *Store) BranchCommandsDir(branch string) string {
	return filepath.Join(s.routerRoot, "commands", branch)
}

// BranchRegistryPath returns the per-branch discovered-command file.
func (s *Store) BranchRegistryPath(branch string) string {
	return filepath.Join(s.BranchCommandsDir(branch), branchRegistryFile)
}

// BranchActivationsPath returns the per-branch activated-shortcut file.
func (s *Store) BranchActivationsPath(branch string) string {
	return filepath.Join(s.BranchCommandsDir(branch), branchActiveFile)
}

// LoadBranchDirectory loads the workspace branch directory. A missing or
// corrupt file yields a schema-valid empty directory; corruption is healed
// on disk and counted.
func (s *Store) LoadBranchDirectory() (*BranchDirectory, error) {
	dir := NewBranchDirectory(s.now())
	healed, err := s.loadOrHeal(s.BranchDirectoryPath(), dir, func() any {
		return NewBranchDirectory(s.now())
	})
	if err != nil {
		return nil, err
	}
	if healed {
		dir = NewBranchDirectory(s.now())
	}
	if dir.Branches == nil {
		dir.Branches = []BranchRecord{}
	}
	return dir, nil
}

// LoadCentralRegistry loads the central registry, creating an empty one in
// memory if the file is missing. Missing keys are backfilled.
func (s *Store) LoadCentralRegistry() (*CentralRegistry, error) {
	reg := NewCentralRegistry(s.now())
	healed, err := s.loadOrHeal(s.CentralRegistryPath(), reg, func() any {
		r := NewCentralRegistry(s.now())
		r.Statistics.AutoHealingCount = 1
		return r
	})
	if err != nil {
		return nil, err
	}
	if healed {
		reg = NewCentralRegistry(s.now())
		reg.Statistics.AutoHealingCount = 1
		return reg, nil
	}
	reg.Backfill(s.now())
	return reg, nil
}

// SaveCentralRegistry writes the central registry atomically, stamping
// last_updated.
func (s *Store) SaveCentralRegistry(reg *CentralRegistry) error {
	reg.LastUpdated = s.now()
	return s.writeJSON(s.CentralRegistryPath(), reg)
}

// LoadBranchRegistry loads the per-branch discovered-command map. A
// missing file yields an empty map.
func (s *Store) LoadBranchRegistry(branch string) (map[string]CommandRecord, error) {
	records := map[string]CommandRecord{}
	healed, err := s.loadOrHeal(s.BranchRegistryPath(branch), &records, func() any {
		return map[string]CommandRecord{}
	})
	if err != nil {
		return nil, err
	}
	if healed || records == nil {
		records = map[string]CommandRecord{}
	}
	return records, nil
}

// SaveBranchRegistry writes the per-branch discovered-command map
// atomically.
func (s *Store) SaveBranchRegistry(branch string, records map[string]CommandRecord) error {
	return s.writeJSON(s.BranchRegistryPath(branch), records)
}

// LoadBranchActivations loads the per-branch activated-shortcut map. A
// missing file yields an empty map.
func (s *Store) LoadBranchActivations(branch string) (map[string]ActivatedCommand, error) {
	records := map[string]ActivatedCommand{}
	healed, err := s.loadOrHeal(s.BranchActivationsPath(branch), &records, func() any {
		return map[string]ActivatedCommand{}
	})
	if err != nil {
		return nil, err
	}
	if healed || records == nil {
		records = map[string]ActivatedCommand{}
	}
	return records, nil
}

// SaveBranchActivations merges the given records into the branch's
// activation file and writes it atomically. Entries the caller did not
// touch are preserved. A record mapped to the zero ActivatedCommand value
// is removed, which is how deactivation is expressed.
func (s *Store) SaveBranchActivations(branch string, records map[string]ActivatedCommand) error {
	existing, err := s.LoadBranchActivations(branch)
	if err != nil {
		return err
	}
	for phrase, rec := range records {
		if rec == (ActivatedCommand{}) {
			delete(existing, phrase)
			continue
		}
		existing[phrase] = rec
	}
	return s.writeJSON(s.BranchActivationsPath(branch), existing)
}

// ReplaceBranchActivations overwrites the branch's activation file with
// exactly the given records. Used by rename, where removal of the old
// phrase and insertion of the new one must land in one write.
func (s *Store) ReplaceBranchActivations(branch string, records map[string]ActivatedCommand) error {
	return s.writeJSON(s.BranchActivationsPath(branch), records)
}

// ActivationBranches lists branches that have a commands directory, in
// sorted order. Branches without an active.json read as empty maps.
func (s *Store) ActivationBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.routerRoot, "commands"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list commands directory: %w", err)
	}
	var branches []string
	for _, e := range entries {
		if e.IsDir() {
			branches = append(branches, e.Name())
		}
	}
	sort.Strings(branches)
	return branches, nil
}

// NextGlobalID assigns the next global command ID: it loads the central
// counter, increments it, persists the new value atomically, and returns
// it. The read-modify-write runs under an advisory file lock so that
// concurrent invocations never return the same ID.
func (s *Store) NextGlobalID() (int, error) {
	lock, err := acquireIDLock(s.CentralDir())
	if err != nil {
		return 0, fmt.Errorf("failed to acquire registry lock: %w", err)
	}
	defer lock.Release()

	reg, err := s.LoadCentralRegistry()
	if err != nil {
		return 0, err
	}
	reg.GlobalIDCounter++
	if err := s.SaveCentralRegistry(reg); err != nil {
		return 0, err
	}
	return reg.GlobalIDCounter, nil
}

// loadOrHeal unmarshals path into out. Missing files leave out untouched
// and return (false, nil). Corrupt files are replaced on disk with the
// empty structure from makeEmpty, the heal is logged and counted, and
// (true, nil) is returned so the caller can reset its in-memory value.
func (s *Store) loadOrHeal(path string, out any, makeEmpty func() any) (healed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err == nil {
		return false, nil
	}

	s.logger.Error("registry file corrupt, auto-healing", "path", path)
	if werr := s.writeJSON(path, makeEmpty()); werr != nil {
		return false, fmt.Errorf("failed to heal %s: %w", path, werr)
	}
	s.recordHeal(path)
	return true, nil
}

// recordHeal bumps the central auto-healing counter. Healing the central
// registry itself already embeds the bump in its replacement structure, so
// that path is skipped here.
func (s *Store) recordHeal(path string) {
	if path == s.CentralRegistryPath() {
		return
	}
	reg, err := s.LoadCentralRegistry()
	if err != nil {
		s.logger.Error("failed to record heal in central registry", "error", err)
		return
	}
	reg.Statistics.AutoHealingCount++
	if err := s.SaveCentralRegistry(reg); err != nil {
		s.logger.Error("failed to record heal in central registry", "error", err)
	}
}

// writeJSON marshals v and writes it atomically: temp sibling, fsync,
// rename over the target. Parent directories are created as needed.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %s over %s: %w", tmpPath, path, err)
	}
	return nil
}
