package components

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// Toast is a transient error banner. Each Show starts a new generation so
// a dismissal scheduled for an older message leaves a newer one alone.
type Toast struct {
	Text       string
	generation int
}

// ToastExpiredMsg dismisses the toast if it is still showing the same
// generation.
type ToastExpiredMsg struct {
	Generation int
}

// Show replaces the current text and schedules its dismissal.
func (t *Toast) Show(text string, d time.Duration) tea.Cmd {
	t.generation++
	t.Text = text
	gen := t.generation
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Generation: gen}
	})
}

// Expire clears the toast when msg belongs to the current generation.
func (t *Toast) Expire(msg ToastExpiredMsg) {
	if msg.Generation == t.generation {
		t.Text = ""
	}
}

// Visible reports whether a message is showing.
func (t Toast) Visible() bool { return t.Text != "" }
