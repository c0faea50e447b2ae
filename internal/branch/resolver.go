// SPDX-License-Identifier: MPL-2.0

package branch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"switchyard-cli/internal/registry"
)

// Reserved symbolic tokens.
const (
	// WorkspaceHandle resolves to the configured workspace root.
	WorkspaceHandle = "@"
	// AllSentinel is carried through preprocessing verbatim so receiving
	// branches can interpret it as "every branch".
	AllSentinel = "@all"
)

// coreParentMarker is the well-known parent directory whose children are
// branch roots ({workspace}/core/{name}). Paths under it yield the next
// segment as the branch name.
const coreParentMarker = "core"

// ResolutionKind distinguishes what a symbolic target resolved to.
type ResolutionKind int

const (
	// KindBranch is a concrete branch record.
	KindBranch ResolutionKind = iota
	// KindWorkspace is the reserved "@" workspace-root handle.
	KindWorkspace
	// KindAll is the "@all" sentinel.
	KindAll
)

type (
	// Resolution is the answer to a Resolve call.
	Resolution struct {
		// Kind says which of the fields below is meaningful.
		Kind ResolutionKind
		// Branch is set for KindBranch.
		Branch registry.BranchRecord
		// Path is the workspace root for KindWorkspace.
		Path string
	}

	// NotFoundError reports a symbolic name that resolves to nothing.
	NotFoundError struct {
		Target string
	}

	// NoEntryPointError reports a branch whose apps/ directory holds no
	// invokable file.
	NoEntryPointError struct {
		Branch string
		Root   string
	}

	// DirectorySource loads the persisted branch directory.
	DirectorySource interface {
		LoadBranchDirectory() (*registry.BranchDirectory, error)
	}

	// Resolver maps symbolic names to canonical branch records. The
	// directory is loaded lazily at first lookup and cached for the
	// lifetime of the resolver (one invocation).
	Resolver struct {
		workspaceRoot  string
		ignoredModules []string
		source         DirectorySource
		dir            *registry.BranchDirectory
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("branch not found: %s", e.Target)
}

// Error implements the error interface.
func (e *NoEntryPointError) Error() string {
	return fmt.Sprintf("branch %s has no entry point under %s", e.Branch, filepath.Join(e.Root, "apps"))
}

// NewResolver creates a Resolver over the given workspace root and
// directory source. ignoredModules are base-name prefixes skipped during
// entry-point discovery.
func NewResolver(workspaceRoot string, source DirectorySource, ignoredModules []string) *Resolver {
	return &Resolver{
		workspaceRoot:  workspaceRoot,
		ignoredModules: ignoredModules,
		source:         source,
	}
}

// directory loads the branch directory once.
func (r *Resolver) directory() (*registry.BranchDirectory, error) {
	if r.dir != nil {
		return r.dir, nil
	}
	dir, err := r.source.LoadBranchDirectory()
	if err != nil {
		return nil, err
	}
	r.dir = dir
	return dir, nil
}

// Resolve maps any recognized symbolic form to a Resolution.
//
// Priority order: reserved handles, registry lookup (name or handle),
// filesystem fallback ({workspace}/core/{name}, then {workspace}/{name}),
// then NotFoundError.
func (r *Resolver) Resolve(target string) (Resolution, error) {
	switch target {
	case WorkspaceHandle:
		return Resolution{Kind: KindWorkspace, Path: r.workspaceRoot}, nil
	case AllSentinel:
		return Resolution{Kind: KindAll}, nil
	}

	name := strings.ToLower(strings.TrimPrefix(target, "@"))
	if name == "" {
		return Resolution{}, &NotFoundError{Target: target}
	}

	if dir, err := r.directory(); err == nil {
		if rec, ok := dir.Lookup(name); ok {
			return Resolution{Kind: KindBranch, Branch: rec}, nil
		}
	}

	if rec, ok := r.fallback(name); ok {
		return Resolution{Kind: KindBranch, Branch: rec}, nil
	}

	return Resolution{}, &NotFoundError{Target: target}
}

// LookupByName returns the record for a bare branch name.
func (r *Resolver) LookupByName(name string) (registry.BranchRecord, error) {
	res, err := r.Resolve(strings.ToLower(name))
	if err != nil {
		return registry.BranchRecord{}, err
	}
	if res.Kind != KindBranch {
		return registry.BranchRecord{}, &NotFoundError{Target: name}
	}
	return res.Branch, nil
}

// LookupByHandle returns the record for an "@name" handle.
func (r *Resolver) LookupByHandle(handle string) (registry.BranchRecord, error) {
	if !strings.HasPrefix(handle, "@") {
		return registry.BranchRecord{}, &NotFoundError{Target: handle}
	}
	return r.LookupByName(strings.TrimPrefix(handle, "@"))
}

// LookupByPath returns the record whose root contains the given absolute
// path. Registry records win; otherwise the branch name is extracted from
// the path and resolved through the normal chain.
func (r *Resolver) LookupByPath(absPath string) (registry.BranchRecord, error) {
	if dir, err := r.directory(); err == nil {
		if rec, ok := dir.LookupByPath(absPath); ok {
			return rec, nil
		}
	}
	return r.LookupByName(NameFromPath(absPath))
}

// Normalize maps any recognized form (@name, name, /abs/path) to the
// canonical uppercase display name.
func (r *Resolver) Normalize(arg string) (string, error) {
	if filepath.IsAbs(arg) {
		rec, err := r.LookupByPath(filepath.Clean(arg))
		if err != nil {
			return "", err
		}
		return DisplayName(rec.Name), nil
	}
	res, err := r.Resolve(arg)
	if err != nil {
		return "", err
	}
	switch res.Kind {
	case KindBranch:
		return DisplayName(res.Branch.Name), nil
	case KindAll:
		return strings.ToUpper(strings.TrimPrefix(AllSentinel, "@")), nil
	default:
		return DisplayName(filepath.Base(r.workspaceRoot)), nil
	}
}

// EntryPoint returns the branch's entry point, resolving it on demand
// when the record does not carry one: {root}/apps/{name} (any extension)
// first, then the first non-infrastructure file in apps/.
func (r *Resolver) EntryPoint(rec registry.BranchRecord) (string, error) {
	if rec.EntryPointPath != "" {
		return rec.EntryPointPath, nil
	}
	appsDir := filepath.Join(rec.RootPath, "apps")
	entries, err := os.ReadDir(appsDir)
	if err != nil {
		return "", &NoEntryPointError{Branch: rec.Name, Root: rec.RootPath}
	}

	// Standard layout: apps/{name} with an implementation-defined
	// extension.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if strings.EqualFold(base, rec.Name) {
			return filepath.Join(appsDir, e.Name()), nil
		}
	}

	// Non-standard branch: first implementation file that is not
	// infrastructure.
	for _, e := range entries {
		if e.IsDir() || r.isIgnored(e.Name()) {
			continue
		}
		return filepath.Join(appsDir, e.Name()), nil
	}

	return "", &NoEntryPointError{Branch: rec.Name, Root: rec.RootPath}
}

// isIgnored reports whether a module file name matches the ignored set.
func (r *Resolver) isIgnored(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ignored := range r.ignoredModules {
		if strings.EqualFold(base, ignored) || strings.HasPrefix(strings.ToLower(base), strings.ToLower(ignored)) {
			return true
		}
	}
	return false
}

// fallback probes the two well-known parent directories for a branch that
// is not in the registry. The resulting record is ad-hoc and never
// persisted.
func (r *Resolver) fallback(name string) (registry.BranchRecord, bool) {
	candidates := []string{
		filepath.Join(r.workspaceRoot, coreParentMarker, name),
		filepath.Join(r.workspaceRoot, name),
	}
	for _, root := range candidates {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		return registry.BranchRecord{
			Name:        name,
			DisplayName: DisplayName(name),
			Handle:      "@" + name,
			RootPath:    root,
			Status:      registry.StatusActive,
		}, true
	}
	return registry.BranchRecord{}, false
}

// NameFromPath extracts a branch name from a filesystem path: the segment
// after a known parent marker when present, otherwise the final directory
// name. Comparison is case-insensitive.
func NameFromPath(path string) string {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i, seg := range segments {
		if strings.EqualFold(seg, coreParentMarker) && i+1 < len(segments) {
			return strings.ToLower(segments[i+1])
		}
	}
	return strings.ToLower(segments[len(segments)-1])
}

// DisplayName is the canonical uppercase form of a branch name.
func DisplayName(name string) string {
	return strings.ToUpper(name)
}
