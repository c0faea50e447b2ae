// SPDX-License-Identifier: MPL-2.0

package activation

import (
	"fmt"
	"sort"
	"strings"

	"switchyard-cli/internal/registry"
)

// MaxPhraseTokens caps shortcut phrases at four words. The bound is a
// fixed design choice that also caps progressive-match lookup cost.
const MaxPhraseTokens = 4

// reservedTokens are internal router subcommand names. A phrase whose
// first token collides with one of these could never be routed, so
// activation refuses them.
var reservedTokens = map[string]bool{
	"scan": true, "activate": true, "list": true, "edit": true,
	"remove": true, "refresh": true, "systems": true, "run": true,
	"help": true, "config": true, "version": true, "completion": true,
}

type (
	// DuplicatePhraseError reports an activation conflict, naming the
	// branch that already owns the phrase.
	DuplicatePhraseError struct {
		Phrase        string
		OwningBranch  string
		OwningCommand string
	}

	// NotFoundError reports a phrase with no activation.
	NotFoundError struct {
		Phrase string
	}

	// InvalidPhraseError reports a phrase outside the 1-4 lowercase-token
	// shape, or one that shadows an internal subcommand.
	InvalidPhraseError struct {
		Phrase string
		Reason string
	}

	// Engine performs activation operations against the registry store.
	Engine struct {
		store *registry.Store
	}
)

// Error implements the error interface.
func (e *DuplicatePhraseError) Error() string {
	return fmt.Sprintf("shortcut %q is already activated for branch %s (command %s)",
		e.Phrase, e.OwningBranch, e.OwningCommand)
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no activation for shortcut %q", e.Phrase)
}

// Error implements the error interface.
func (e *InvalidPhraseError) Error() string {
	return fmt.Sprintf("invalid shortcut phrase %q: %s", e.Phrase, e.Reason)
}

// NewEngine creates an activation Engine over the store.
func NewEngine(store *registry.Store) *Engine {
	return &Engine{store: store}
}

// NormalizePhrase lowercases and collapses whitespace in a phrase.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// ValidatePhrase checks the 1-4 token shape and the reserved-token rule.
func ValidatePhrase(phrase string) error {
	tokens := strings.Fields(phrase)
	if len(tokens) == 0 {
		return &InvalidPhraseError{Phrase: phrase, Reason: "empty"}
	}
	if len(tokens) > MaxPhraseTokens {
		return &InvalidPhraseError{Phrase: phrase, Reason: fmt.Sprintf("more than %d words", MaxPhraseTokens)}
	}
	if reservedTokens[tokens[0]] {
		return &InvalidPhraseError{Phrase: phrase, Reason: fmt.Sprintf("%q is a reserved router command", tokens[0])}
	}
	for _, tok := range tokens {
		if tok != strings.ToLower(tok) {
			return &InvalidPhraseError{Phrase: phrase, Reason: "phrases are lowercase"}
		}
	}
	return nil
}

// Activate maps a phrase to a (branch, command) target. The phrase must
// be unique across the entire activation set; on conflict the error
// names the owning branch.
func (e *Engine) Activate(branchName, commandName, modulePath, phrase, description string) error {
	phrase = NormalizePhrase(phrase)
	if err := ValidatePhrase(phrase); err != nil {
		return err
	}
	if existing, owner, err := e.findPhrase(phrase); err != nil {
		return err
	} else if owner != "" {
		return &DuplicatePhraseError{Phrase: phrase, OwningBranch: owner, OwningCommand: existing.TargetCommandName}
	}

	return e.store.SaveBranchActivations(branchName, map[string]registry.ActivatedCommand{
		phrase: {
			ShortcutPhrase:    phrase,
			TargetBranch:      branchName,
			TargetCommandName: commandName,
			TargetModulePath:  modulePath,
			Description:       description,
		},
	})
}

// Deactivate removes a phrase wherever it lives.
func (e *Engine) Deactivate(phrase string) error {
	phrase = NormalizePhrase(phrase)
	_, owner, err := e.findPhrase(phrase)
	if err != nil {
		return err
	}
	if owner == "" {
		return &NotFoundError{Phrase: phrase}
	}
	return e.store.SaveBranchActivations(owner, map[string]registry.ActivatedCommand{
		phrase: {},
	})
}

// Lookup returns the activation for a phrase.
func (e *Engine) Lookup(phrase string) (registry.ActivatedCommand, error) {
	phrase = NormalizePhrase(phrase)
	rec, owner, err := e.findPhrase(phrase)
	if err != nil {
		return registry.ActivatedCommand{}, err
	}
	if owner == "" {
		return registry.ActivatedCommand{}, &NotFoundError{Phrase: phrase}
	}
	return rec, nil
}

// Rename changes a phrase in place: one atomic rewrite of the owning
// branch's activation file removes the old phrase and adds the new one,
// so no intermediate state exists on disk.
func (e *Engine) Rename(oldPhrase, newPhrase string) error {
	oldPhrase = NormalizePhrase(oldPhrase)
	newPhrase = NormalizePhrase(newPhrase)
	if err := ValidatePhrase(newPhrase); err != nil {
		return err
	}

	rec, owner, err := e.findPhrase(oldPhrase)
	if err != nil {
		return err
	}
	if owner == "" {
		return &NotFoundError{Phrase: oldPhrase}
	}
	if newPhrase != oldPhrase {
		if conflict, conflictOwner, err := e.findPhrase(newPhrase); err != nil {
			return err
		} else if conflictOwner != "" {
			return &DuplicatePhraseError{Phrase: newPhrase, OwningBranch: conflictOwner, OwningCommand: conflict.TargetCommandName}
		}
	}

	records, err := e.store.LoadBranchActivations(owner)
	if err != nil {
		return err
	}
	delete(records, oldPhrase)
	rec.ShortcutPhrase = newPhrase
	records[newPhrase] = rec
	return e.store.ReplaceBranchActivations(owner, records)
}

// ListAll returns every activation, sorted by phrase.
func (e *Engine) ListAll() ([]registry.ActivatedCommand, error) {
	all, err := e.loadAll()
	if err != nil {
		return nil, err
	}
	var out []registry.ActivatedCommand
	for _, rec := range all {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortcutPhrase < out[j].ShortcutPhrase })
	return out, nil
}

// ListForBranch returns the activations targeting one branch, sorted by
// phrase.
func (e *Engine) ListForBranch(branchName string) ([]registry.ActivatedCommand, error) {
	all, err := e.ListAll()
	if err != nil {
		return nil, err
	}
	var out []registry.ActivatedCommand
	for _, rec := range all {
		if strings.EqualFold(rec.TargetBranch, branchName) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// loadAll unions every per-branch activation file into one map. This is
// the single-pass scan every uniqueness check and lookup rides on.
func (e *Engine) loadAll() (map[string]registry.ActivatedCommand, error) {
	branches, err := e.store.ActivationBranches()
	if err != nil {
		return nil, err
	}
	all := map[string]registry.ActivatedCommand{}
	for _, b := range branches {
		records, err := e.store.LoadBranchActivations(b)
		if err != nil {
			return nil, err
		}
		for phrase, rec := range records {
			all[phrase] = rec
		}
	}
	return all, nil
}

// findPhrase locates a phrase across all activation files, returning the
// record and the branch whose file holds it ("" when absent).
func (e *Engine) findPhrase(phrase string) (registry.ActivatedCommand, string, error) {
	branches, err := e.store.ActivationBranches()
	if err != nil {
		return registry.ActivatedCommand{}, "", err
	}
	for _, b := range branches {
		records, err := e.store.LoadBranchActivations(b)
		if err != nil {
			return registry.ActivatedCommand{}, "", err
		}
		if rec, ok := records[phrase]; ok {
			return rec, b, nil
		}
	}
	return registry.ActivatedCommand{}, "", nil
}
