package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user dismisses a prompt.
var ErrAborted = huh.ErrUserAborted

// Confirm asks a yes/no question. Closed stdin or an aborted prompt counts
// as "no" and is reported through the error.
func Confirm(title, description string, defaultYes bool) (bool, error) {
	confirm := defaultYes
	prompt := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm)
	if description != "" {
		prompt = prompt.Description(description)
	}

	if err := prompt.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}

// PromptModelName asks for a model name such as "llama3:8b".
func PromptModelName(title string) (string, error) {
	var name string
	input := huh.NewInput().
		Title(title).
		Placeholder("llama3:8b").
		Value(&name).
		Validate(ValidateModelName)

	if err := input.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// ValidateModelName rejects empty names and names with whitespace.
func ValidateModelName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("model name is required")
	}
	if strings.ContainsAny(s, " \t") {
		return errors.New("model name cannot contain spaces")
	}
	if strings.HasSuffix(s, ":") {
		return errors.New("tag cannot be empty")
	}
	return nil
}
