// SPDX-License-Identifier: MPL-2.0

package activation_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"switchyard-cli/internal/activation"
	"switchyard-cli/internal/registry"
)

func newEngine(t *testing.T) (*activation.Engine, *registry.Store) {
	t.Helper()
	root := t.TempDir()
	store := registry.NewStore(filepath.Join(root, "ws"), filepath.Join(root, "router"))
	return activation.NewEngine(store), store
}

func TestActivateAndLookup(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/ws/core/flow/apps/flow", "plan create", "create a plan"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	rec, err := engine.Lookup("plan create")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if rec.TargetBranch != "flow" || rec.TargetCommandName != "create" {
		t.Errorf("Lookup() = %+v, want flow/create", rec)
	}
}

func TestActivateDuplicateAcrossBranchesFails(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/m1", "plan create", ""); err != nil {
		t.Fatal(err)
	}

	err := engine.Activate("seed", "create", "/m2", "plan create", "")
	var dup *activation.DuplicatePhraseError
	if !errors.As(err, &dup) {
		t.Fatalf("Activate() duplicate error = %v, want DuplicatePhraseError", err)
	}
	if dup.OwningBranch != "flow" {
		t.Errorf("DuplicatePhraseError.OwningBranch = %q, want %q", dup.OwningBranch, "flow")
	}
}

func TestActivateRefusesReservedTokens(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	for _, phrase := range []string{"scan", "list deep", "run fast"} {
		err := engine.Activate("flow", "x", "/m", phrase, "")
		var invalid *activation.InvalidPhraseError
		if !errors.As(err, &invalid) {
			t.Errorf("Activate(%q) error = %v, want InvalidPhraseError", phrase, err)
		}
	}
}

func TestActivateRefusesLongPhrases(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	err := engine.Activate("flow", "x", "/m", "one two three four five", "")
	var invalid *activation.InvalidPhraseError
	if !errors.As(err, &invalid) {
		t.Errorf("Activate(5 words) error = %v, want InvalidPhraseError", err)
	}
}

func TestDeactivate(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/m", "plan create", ""); err != nil {
		t.Fatal(err)
	}
	if err := engine.Deactivate("plan create"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	_, err := engine.Lookup("plan create")
	var nf *activation.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Lookup() after deactivate = %v, want NotFoundError", err)
	}

	if err := engine.Deactivate("plan create"); !errors.As(err, &nf) {
		t.Errorf("Deactivate() twice = %v, want NotFoundError", err)
	}
}

func TestRenameIsAtomicRewrite(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)

	if err := engine.Activate("flow", "create", "/m", "plan create", "desc"); err != nil {
		t.Fatal(err)
	}
	if err := engine.Activate("flow", "list", "/m", "plan show", ""); err != nil {
		t.Fatal(err)
	}

	if err := engine.Rename("plan create", "plan new"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	records, err := store.LoadBranchActivations("flow")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := records["plan create"]; ok {
		t.Error("old phrase survived rename")
	}
	rec, ok := records["plan new"]
	if !ok {
		t.Fatal("new phrase missing after rename")
	}
	if rec.ShortcutPhrase != "plan new" || rec.Description != "desc" {
		t.Errorf("renamed record = %+v, want phrase updated and description kept", rec)
	}
	if _, ok := records["plan show"]; !ok {
		t.Error("untouched activation lost during rename")
	}
}

func TestRenameToExistingPhraseFails(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/m", "plan create", ""); err != nil {
		t.Fatal(err)
	}
	if err := engine.Activate("seed", "audit", "/m2", "seed audit", ""); err != nil {
		t.Fatal(err)
	}

	err := engine.Rename("plan create", "seed audit")
	var dup *activation.DuplicatePhraseError
	if !errors.As(err, &dup) {
		t.Errorf("Rename() onto existing phrase = %v, want DuplicatePhraseError", err)
	}
}

func TestPhrasesGloballyUnique(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	phrases := []string{"plan create", "plan show", "seed audit", "docs build"}
	branches := []string{"flow", "flow", "seed", "docs"}
	for i, p := range phrases {
		if err := engine.Activate(branches[i], "cmd", "/m", p, ""); err != nil {
			t.Fatal(err)
		}
	}

	all, err := engine.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, rec := range all {
		if seen[rec.ShortcutPhrase] {
			t.Errorf("phrase %q appears twice in union", rec.ShortcutPhrase)
		}
		seen[rec.ShortcutPhrase] = true
	}
	if len(all) != len(phrases) {
		t.Errorf("ListAll() = %d activations, want %d", len(all), len(phrases))
	}
}

func TestListForBranch(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/m", "plan create", ""); err != nil {
		t.Fatal(err)
	}
	if err := engine.Activate("seed", "audit", "/m2", "seed audit", ""); err != nil {
		t.Fatal(err)
	}

	flowOnly, err := engine.ListForBranch("flow")
	if err != nil {
		t.Fatal(err)
	}
	if len(flowOnly) != 1 || flowOnly[0].ShortcutPhrase != "plan create" {
		t.Errorf("ListForBranch(flow) = %+v, want the plan create activation", flowOnly)
	}
}

func TestMatchProgressive(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)

	if err := engine.Activate("flow", "create", "/ws/core/flow/apps/flow", "plan create", ""); err != nil {
		t.Fatal(err)
	}
	if err := engine.Activate("flow", "status", "/ws/core/flow/apps/flow", "plan", ""); err != nil {
		t.Fatal(err)
	}

	// Two-word phrase wins over the one-word fallback, and the remainder
	// becomes the tail.
	match, ok, err := engine.MatchProgressive("plan", []string{"create", "@seed", "Title"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("MatchProgressive() found no match")
	}
	if match.Activation.TargetCommandName != "create" {
		t.Errorf("matched command = %q, want %q", match.Activation.TargetCommandName, "create")
	}
	if want := []string{"@seed", "Title"}; !reflect.DeepEqual(match.Tail, want) {
		t.Errorf("Tail = %v, want %v", match.Tail, want)
	}

	// One-word fallback.
	match, ok, err = engine.MatchProgressive("plan", []string{"xyz"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok || match.Activation.TargetCommandName != "status" {
		t.Errorf("fallback match = %+v ok=%v, want plan -> status", match, ok)
	}

	// No match at any length.
	_, ok, err = engine.MatchProgressive("nonesuch", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("MatchProgressive(nonesuch) matched, want no match")
	}
}
