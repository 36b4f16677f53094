package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
	"github.com/takallem/takallem/internal/ui/theme"
)

type modulesLoadedMsg struct {
	Modules []course.Module
	Err     error
}

// HomeScreen lists the modules of the current course. Modules beyond the
// learner's frontier are locked.
type HomeScreen struct {
	deps     *shared.Deps
	progress course.CourseProgress
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen from what is already in session state.
func New(deps *shared.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	if mods := deps.State.Modules(); len(mods) > 0 {
		h.rebuild(mods)
		h.loaded = true
	}
	return h
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "c", Description: "Courses"},
		{Key: "h", Description: "Requests"},
		{Key: "Ctrl+O", Description: "Sign out"},
	}
}

// Init refreshes the module list; the progress record may have moved on
// since it was last fetched.
func (h *HomeScreen) Init() tea.Cmd {
	client, state := h.deps.Client(), h.deps.State
	return func() tea.Msg {
		mods, err := shared.LoadModules(context.Background(), client, state)
		return modulesLoadedMsg{Modules: mods, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case modulesLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			if api.IsAuth(msg.Err) || len(h.menu.Items) > 0 {
				return h, shared.Fail(msg.Err)
			}
			h.errMsg = shared.Message(msg.Err)
			return h, nil
		}
		h.errMsg = ""
		h.rebuild(msg.Modules)
		return h, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "c":
			return h, router.Push(h.deps.Screens.Courses())
		case "h":
			return h, router.Push(h.deps.Screens.Requests())
		case "r":
			if h.errMsg != "" {
				h.loaded = false
				return h, h.Init()
			}
		}
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

// rebuild lays the modules out by unit and section and puts the cursor on
// the frontier module.
func (h *HomeScreen) rebuild(mods []course.Module) {
	h.progress, _ = h.deps.State.Progress()

	var items []components.MenuItem
	current := -1
	for _, u := range course.GroupModules(mods) {
		for _, sec := range u.Sections {
			heading := u.Name
			if sec.Name != "" {
				heading += " · " + sec.Name
			}
			items = append(items, components.MenuItem{Label: heading, Heading: true})
			for _, m := range sec.Modules {
				m := m
				state := course.StateOf(m, h.progress)
				item := components.MenuItem{
					Label:  fmt.Sprintf("%2d. %s", m.Number, m.Title),
					Detail: stateLabel(state),
					Action: func() tea.Cmd {
						return router.Push(h.deps.Screens.Module(m))
					},
				}
				if state == course.ModuleLocked {
					item.Disabled = true
				}
				if state == course.ModuleCurrent {
					current = len(items)
				}
				items = append(items, item)
			}
		}
	}

	h.menu = components.NewMenu(items)
	h.menu.Select(current)
}

func stateLabel(s course.ModuleState) string {
	switch s {
	case course.ModuleDone:
		return "✓"
	case course.ModuleCurrent:
		return "● up next"
	default:
		return "locked"
	}
}

func (h *HomeScreen) View(width, height int) string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s\n\npress r to retry", h.errMsg))
	}
	if !h.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading modules...")
	}

	cw := min(width-4, 72)
	var b strings.Builder

	title := string(h.progress.CourseName)
	if d := h.progress.DialectOrDefault(); d != "" {
		title += " (" + string(d) + ")"
	}
	b.WriteString(theme.Title.Render(title) + "\n")
	b.WriteString(components.ModuleProgress(h.progress.CurrModule, h.progress.TotalModules, cw).View() + "\n")
	if h.progress.Completed() {
		b.WriteString(theme.Correct.Render("Mabrook! You finished this course.") + "\n")
	}
	b.WriteString("\n")

	listHeight := height - lipgloss.Height(b.String()) - 1
	b.WriteString(window(h.menu.View(), h.menu.Selected, listHeight))

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(b.String()))
}

// window keeps the selected line of a rendered list visible within height
// lines.
func window(list string, selected, height int) string {
	lines := strings.Split(strings.TrimRight(list, "\n"), "\n")
	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return strings.Join(lines[start:start+height], "\n")
}

// Resume closes whatever module was open and refreshes the list.
func (h *HomeScreen) Resume() tea.Cmd {
	h.deps.State.Close()
	if mods := h.deps.State.Modules(); len(mods) > 0 {
		h.rebuild(mods)
	}
	return h.Init()
}
