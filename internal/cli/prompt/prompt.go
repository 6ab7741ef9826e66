// Package prompt provides interactive terminal prompts for nfs4d commands.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user gave up on a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err != nil && IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Confirm asks a yes/no question. An empty answer picks defaultYes.
func Confirm(label string, defaultYes bool) (bool, error) {
	choices := "y/N"
	if defaultYes {
		choices = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, choices),
		IsConfirm: true,
	}

	result, err := p.Run()
	if err != nil {
		switch {
		case errors.Is(err, promptui.ErrInterrupt):
			return false, ErrAborted
		case errors.Is(err, promptui.ErrAbort):
			// promptui reports "n" as ErrAbort
			return false, nil
		case result == "":
			return defaultYes, nil
		}
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(result))
	return answer == "y" || answer == "yes", nil
}

// ConfirmWithForce skips the question when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

// Select shows items and returns the chosen one.
func Select(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "* {{ . | green }}",
		},
	}

	_, result, err := p.Run()
	return result, wrapError(err)
}

// Input asks for free text, offering defaultValue.
func Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{Label: label, Default: defaultValue}
	result, err := p.Run()
	return result, wrapError(err)
}

// InputPort asks for a TCP port between 1 and 65535.
func InputPort(label string, defaultValue int) (int, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  strconv.Itoa(defaultValue),
		Validate: validatePort,
	}

	result, err := p.Run()
	if err != nil {
		return 0, wrapError(err)
	}
	return strconv.Atoi(result)
}

func validatePort(input string) error {
	port, err := strconv.Atoi(input)
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be a valid port (1-65535)")
	}
	return nil
}
