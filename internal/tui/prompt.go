// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"github.com/charmbracelet/huh"
)

type (
	// ConfirmOptions configures a yes/no prompt.
	ConfirmOptions struct {
		// Title is the question to display.
		Title string
		// Description provides additional context below the title.
		Description string
		// Default is the preselected answer.
		Default bool
	}

	// InputOptions configures a free-text prompt.
	InputOptions struct {
		// Title is the prompt displayed above the input.
		Title string
		// Description provides additional context below the title.
		Description string
		// Placeholder is shown while the input is empty.
		Placeholder string
		// Validate rejects bad values before the form returns.
		Validate func(string) error
	}

	// ChooseOption is one selectable entry.
	ChooseOption struct {
		// Label is the text shown to the user.
		Label string
		// Value is returned when the entry is picked.
		Value string
	}

	// ChooseOptions configures a single-select prompt.
	ChooseOptions struct {
		// Title is the prompt displayed above the list.
		Title string
		// Options are the selectable entries.
		Options []ChooseOption
	}
)

// Confirm prompts the user to confirm an action. Returns the choice, or
// an error when the form is cancelled.
func Confirm(opts ConfirmOptions) (bool, error) {
	result := opts.Default

	confirm := huh.NewConfirm().
		Title(opts.Title).
		Description(opts.Description).
		Value(&result)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, err
	}
	return result, nil
}

// Input prompts for one line of text.
func Input(opts InputOptions) (string, error) {
	var result string

	input := huh.NewInput().
		Title(opts.Title).
		Description(opts.Description).
		Placeholder(opts.Placeholder).
		Value(&result)
	if opts.Validate != nil {
		input = input.Validate(opts.Validate)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", err
	}
	return result, nil
}

// Choose prompts for one entry out of a list and returns its value.
func Choose(opts ChooseOptions) (string, error) {
	var result string

	options := make([]huh.Option[string], len(opts.Options))
	for i, o := range opts.Options {
		options[i] = huh.NewOption(o.Label, o.Value)
	}

	sel := huh.NewSelect[string]().
		Title(opts.Title).
		Options(options...).
		Value(&result)

	if err := huh.NewForm(huh.NewGroup(sel)).Run(); err != nil {
		return "", err
	}
	return result, nil
}
