// Package requests shows the recent calls made to the service.
package requests

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/store"
	"github.com/takallem/takallem/internal/ui/layout"
	"github.com/takallem/takallem/internal/ui/theme"
)

// Limit is how many requests the screen loads.
const Limit = 50

type requestsLoadedMsg struct {
	Events []store.RequestEvent
	Err    error
}

// RequestsScreen lists recent service calls, newest first.
type RequestsScreen struct {
	eventRepo store.EventRepo
	events    []store.RequestEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*RequestsScreen)(nil)
var _ screen.KeyHintProvider = (*RequestsScreen)(nil)

// New creates a RequestsScreen.
func New(eventRepo store.EventRepo) *RequestsScreen {
	return &RequestsScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *RequestsScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		if repo == nil {
			return requestsLoadedMsg{}
		}
		events, err := repo.QueryRequests(context.Background(), store.QueryOpts{Limit: Limit})
		return requestsLoadedMsg{Events: events, Err: err}
	}
}

func (s *RequestsScreen) Title() string {
	return "Requests"
}

func (s *RequestsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RequestsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case requestsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *RequestsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading requests...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No requests recorded yet.")
	}

	var lines []string
	for i, e := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := "---"
		if e.Status > 0 {
			status = fmt.Sprintf("%d", e.Status)
		}
		line := fmt.Sprintf("%s%s  %-6s %-40s %s %5dms",
			prefix, e.Timestamp.Local().Format("Jan 02 15:04:05"), e.Method, e.Route, status, e.LatencyMs)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == s.selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case !e.Success:
			style = style.Foreground(theme.Error)
		}
		lines = append(lines, style.Render(line))

		if s.expanded[i] {
			dim := lipgloss.NewStyle().Foreground(theme.TextDim)
			if e.ErrorMessage != "" {
				lines = append(lines, dim.Render("      error: "+e.ErrorMessage))
			}
			if e.IdempotencyKey != "" {
				lines = append(lines, dim.Render("      idempotency key: "+e.IdempotencyKey))
			}
			lines = append(lines, dim.Render(fmt.Sprintf("      sequence %d", e.Sequence)))
		}
	}

	// Keep the selected row on screen.
	start := 0
	if visible := height - 2; visible > 0 && len(lines) > visible {
		start = min(s.rowOffset(), len(lines)-visible)
		lines = lines[start : start+visible]
	}

	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

// rowOffset returns the rendered line index of the selected event.
func (s *RequestsScreen) rowOffset() int {
	row := 0
	for i := 0; i < s.selected; i++ {
		row++
		if s.expanded[i] {
			row += 1
			if s.events[i].ErrorMessage != "" {
				row++
			}
			if s.events[i].IdempotencyKey != "" {
				row++
			}
		}
	}
	return row
}
