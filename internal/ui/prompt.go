package ui

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(label string) (bool, error)
}

// PromptConfirmer asks on the terminal with promptui.
type PromptConfirmer struct{}

// Confirm returns true only for an explicit yes. Answering no, or pressing
// enter, is not an error.
func (PromptConfirmer) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// StaticConfirmer answers every question with the same value.
type StaticConfirmer bool

func (s StaticConfirmer) Confirm(string) (bool, error) {
	return bool(s), nil
}
