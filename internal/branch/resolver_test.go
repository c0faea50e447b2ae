// SPDX-License-Identifier: MPL-2.0

package branch_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/registry"
)

// staticDirectory is a DirectorySource backed by an in-memory document.
type staticDirectory struct {
	dir *registry.BranchDirectory
}

func (s *staticDirectory) LoadBranchDirectory() (*registry.BranchDirectory, error) {
	return s.dir, nil
}

func newTestResolver(t *testing.T, ws string, branches ...registry.BranchRecord) *branch.Resolver {
	t.Helper()
	dir := registry.NewBranchDirectory(time.Now())
	dir.Branches = branches
	return branch.NewResolver(ws, &staticDirectory{dir: dir}, []string{"__main__", "__init__"})
}

func TestResolveReservedHandles(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, "/ws")

	res, err := r.Resolve("@")
	if err != nil {
		t.Fatalf("Resolve(@) error = %v", err)
	}
	if res.Kind != branch.KindWorkspace || res.Path != "/ws" {
		t.Errorf("Resolve(@) = %+v, want workspace /ws", res)
	}

	res, err = r.Resolve("@all")
	if err != nil {
		t.Fatalf("Resolve(@all) error = %v", err)
	}
	if res.Kind != branch.KindAll {
		t.Errorf("Resolve(@all).Kind = %v, want KindAll", res.Kind)
	}
}

func TestResolveRegistryBranch(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, "/ws", registry.BranchRecord{
		Name: "flow", Handle: "@flow", RootPath: "/ws/core/flow", Status: registry.StatusActive,
	})

	for _, target := range []string{"@flow", "flow", "FLOW"} {
		res, err := r.Resolve(target)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", target, err)
		}
		if res.Kind != branch.KindBranch || res.Branch.RootPath != "/ws/core/flow" {
			t.Errorf("Resolve(%q) = %+v, want branch /ws/core/flow", target, res)
		}
	}
}

func TestResolveFallbackDirectories(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, "core", "flow"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(ws, "seed"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := newTestResolver(t, ws)

	res, err := r.Resolve("@flow")
	if err != nil {
		t.Fatalf("Resolve(@flow) error = %v", err)
	}
	if want := filepath.Join(ws, "core", "flow"); res.Branch.RootPath != want {
		t.Errorf("fallback RootPath = %q, want %q", res.Branch.RootPath, want)
	}

	res, err = r.Resolve("seed")
	if err != nil {
		t.Fatalf("Resolve(seed) error = %v", err)
	}
	if want := filepath.Join(ws, "seed"); res.Branch.RootPath != want {
		t.Errorf("fallback RootPath = %q, want %q", res.Branch.RootPath, want)
	}
}

func TestResolveUnknownIsNotFound(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, "/nonexistent-ws")

	_, err := r.Resolve("@nope")
	var nf *branch.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Resolve(@nope) error = %v, want NotFoundError", err)
	}
	if nf.Target != "@nope" {
		t.Errorf("NotFoundError.Target = %q, want %q", nf.Target, "@nope")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, "/ws", registry.BranchRecord{
		Name: "flow", Handle: "@flow", RootPath: "/ws/core/flow",
	})

	tests := []struct {
		arg  string
		want string
	}{
		{"@flow", "FLOW"},
		{"flow", "FLOW"},
		{"/ws/core/flow", "FLOW"},
	}
	for _, tt := range tests {
		got, err := r.Normalize(tt.arg)
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", tt.arg, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/ws/core/flow", "flow"},
		{"/ws/core/flow/apps/flow", "flow"},
		{"/ws/seed", "seed"},
		{"/ws/Core/Flow", "flow"},
	}
	for _, tt := range tests {
		if got := branch.NameFromPath(tt.path); got != tt.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEntryPointStandardLayout(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	apps := filepath.Join(ws, "core", "flow", "apps")
	if err := os.MkdirAll(apps, 0o755); err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(apps, "flow.py")
	if err := os.WriteFile(entry, []byte("#!/usr/bin/env python3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := newTestResolver(t, ws)
	got, err := r.EntryPoint(registry.BranchRecord{Name: "flow", RootPath: filepath.Join(ws, "core", "flow")})
	if err != nil {
		t.Fatalf("EntryPoint() error = %v", err)
	}
	if got != entry {
		t.Errorf("EntryPoint() = %q, want %q", got, entry)
	}
}

func TestEntryPointNonStandardSkipsInfrastructure(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	apps := filepath.Join(ws, "seed", "apps")
	if err := os.MkdirAll(apps, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(apps, "__init__.py"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	impl := filepath.Join(apps, "runner.py")
	if err := os.WriteFile(impl, []byte("print()\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := newTestResolver(t, ws)
	got, err := r.EntryPoint(registry.BranchRecord{Name: "seed", RootPath: filepath.Join(ws, "seed")})
	if err != nil {
		t.Fatalf("EntryPoint() error = %v", err)
	}
	if got != impl {
		t.Errorf("EntryPoint() = %q, want %q", got, impl)
	}
}

func TestEntryPointMissingAppsDir(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, t.TempDir())
	_, err := r.EntryPoint(registry.BranchRecord{Name: "ghost", RootPath: "/nonexistent"})
	var noEntry *branch.NoEntryPointError
	if !errors.As(err, &noEntry) {
		t.Fatalf("EntryPoint() error = %v, want NoEntryPointError", err)
	}
}

func TestResolveRoundTripInvariant(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, "/ws", registry.BranchRecord{
		Name: "flow", Handle: "@flow", RootPath: "/ws/core/flow",
	})

	res, err := r.Resolve("@flow")
	if err != nil {
		t.Fatal(err)
	}
	fromPath, err := r.Normalize(res.Branch.RootPath)
	if err != nil {
		t.Fatal(err)
	}
	fromHandle, err := r.Normalize("@flow")
	if err != nil {
		t.Fatal(err)
	}
	if fromPath != fromHandle {
		t.Errorf("normalize(resolve(@flow).root) = %q, normalize(@flow) = %q; want equal", fromPath, fromHandle)
	}
}
