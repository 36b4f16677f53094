package components

import (
	"slices"

	tea "charm.land/bubbletea/v2"

	"github.com/takallem/takallem/internal/ui/theme"
)

// Button is a single action such as "Try again" or "Finish lecture". Enter
// presses it, and so does any of its shortcut keys.
type Button struct {
	Label    string
	Disabled bool
	Keys     []string
	OnPress  func() tea.Cmd
}

// NewButton creates a button that runs onPress.
func NewButton(label string, onPress func() tea.Cmd, keys ...string) Button {
	return Button{Label: label, Keys: keys, OnPress: onPress}
}

// Update presses the button on enter or a shortcut key.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if b.Disabled || b.OnPress == nil {
		return b, nil
	}
	k, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return b, nil
	}
	if key := k.String(); key == "enter" || slices.Contains(b.Keys, key) {
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button, with its first shortcut when it has one.
func (b Button) View() string {
	label := "  ▸ " + b.Label + " "
	if len(b.Keys) > 0 {
		label += "(" + b.Keys[0] + ") "
	}
	if b.Disabled {
		return theme.ButtonInactive.Render(label)
	}
	return theme.ButtonActive.Render(label)
}
