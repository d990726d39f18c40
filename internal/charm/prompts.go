package charm

import (
	"github.com/charmbracelet/huh"
)

func NewBranchPrompt(title string, output *bool) *huh.Group {
	return huh.NewGroup(huh.NewConfirm().
		Title(title).
		Affirmative("Yes.").
		Negative("No.").
		Value(output))
}

func NewInputPrompt(title, description string, output *string) *huh.Group {
	return huh.NewGroup(huh.NewInput().
		Title(title).
		Description(description).
		Value(output))
}

// RunForm runs the groups as a single form. Callers must only call it on an
// interactive terminal.
func RunForm(groups ...*huh.Group) error {
	return huh.NewForm(groups...).
		WithTheme(huh.ThemeBase()).
		WithShowHelp(false).
		Run()
}
