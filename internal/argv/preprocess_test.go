// SPDX-License-Identifier: MPL-2.0

package argv_test

import (
	"reflect"
	"testing"
	"time"

	"switchyard-cli/internal/argv"
	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/registry"
)

type staticDirectory struct {
	dir *registry.BranchDirectory
}

func (s *staticDirectory) LoadBranchDirectory() (*registry.BranchDirectory, error) {
	return s.dir, nil
}

func testResolver() *branch.Resolver {
	dir := registry.NewBranchDirectory(time.Now())
	dir.Branches = []registry.BranchRecord{
		{Name: "flow", Handle: "@flow", RootPath: "/ws/core/flow"},
		{Name: "seed", Handle: "@seed", RootPath: "/ws/seed"},
	}
	return branch.NewResolver("/ws", &staticDirectory{dir: dir}, nil)
}

func TestPreprocessRewritesHandles(t *testing.T) {
	t.Parallel()

	got := argv.Preprocess([]string{"create", "@seed", "Title"}, testResolver())
	want := []string{"create", "/ws/seed", "Title"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %v, want %v", got, want)
	}
}

func TestPreprocessSubpath(t *testing.T) {
	t.Parallel()

	got := argv.Preprocess([]string{"@seed/imports/data.csv"}, testResolver())
	want := []string{"/ws/seed/imports/data.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %v, want %v", got, want)
	}
}

func TestPreprocessPreservesSentinelPosition(t *testing.T) {
	t.Parallel()

	got := argv.Preprocess([]string{"audit", "@all", "@flow"}, testResolver())
	want := []string{"audit", "@all", "/ws/core/flow"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %v, want %v", got, want)
	}
	if got[1] != "@all" {
		t.Errorf("sentinel moved or rewritten: %v", got)
	}
}

func TestPreprocessWorkspaceHandle(t *testing.T) {
	t.Parallel()

	got := argv.Preprocess([]string{"@"}, testResolver())
	want := []string{"/ws"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %v, want %v", got, want)
	}
}

func TestPreprocessUnknownNamePassesThrough(t *testing.T) {
	t.Parallel()

	got := argv.Preprocess([]string{"@mystery", "x"}, testResolver())
	want := []string{"@mystery", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %v, want %v", got, want)
	}
}

func TestPreprocessIgnoresPlainTokens(t *testing.T) {
	t.Parallel()

	in := []string{"create", "--title", "Hello @flow", "a@b"}
	got := argv.Preprocess(in, testResolver())
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Preprocess() = %v, want unchanged %v", got, in)
	}
}

func TestPreprocessIdempotent(t *testing.T) {
	t.Parallel()

	r := testResolver()
	inputs := [][]string{
		{"@flow", "create", "@seed", "Title"},
		{"@seed/imports", "audit", "@all"},
		{"@mystery", "plain", "@"},
		{},
	}
	for _, in := range inputs {
		once := argv.Preprocess(in, r)
		twice := argv.Preprocess(once, r)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Preprocess not idempotent: once=%v twice=%v", once, twice)
		}
	}
}
