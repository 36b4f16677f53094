// Package theme is the palette and the shared lipgloss styles: sand and
// teal on ink, with Arabic script set off from the English around it.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#E0A458") // sand
	Secondary = lipgloss.Color("#2A9D8F") // teal
	Accent    = lipgloss.Color("#E76F51") // terracotta
	Success   = lipgloss.Color("#52B788")
	Error     = lipgloss.Color("#E63946")
	Text      = lipgloss.Color("#F1FAEE")
	TextDim   = lipgloss.Color("#8D99AE")
	BgDark    = lipgloss.Color("#101820") // ink
	BgCard    = lipgloss.Color("#1D2D3A")
	Border    = lipgloss.Color("#34495E")
)

// Text.
var (
	Title  = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Body   = lipgloss.NewStyle().Foreground(Text)
	Hint   = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Script = lipgloss.NewStyle().Foreground(Primary).Bold(true)
)

// Menus and module lists. Locked modules sit past curr_module.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Locked     = lipgloss.NewStyle().Foreground(Border)
)

// Answer verdicts and status cells.
var (
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Widgets.
var (
	Toast = lipgloss.NewStyle().Foreground(Text).Background(Error).Bold(true).Padding(0, 2)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(BgDark).Bold(true).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().Foreground(TextDim).Background(BgCard).Padding(0, 2)
)
