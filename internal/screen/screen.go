package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/takallem/takallem/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Leaver is an optional interface for screens with work to finish before
// they are popped. When handled is true the screen pops itself once done.
type Leaver interface {
	Leave() (cmd tea.Cmd, handled bool)
}

// Resumer is an optional interface for screens that refresh when they come
// back to the top of the stack.
type Resumer interface {
	Resume() tea.Cmd
}
