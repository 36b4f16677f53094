// Package courses lists the catalogue and enrolls the learner in a course.
package courses

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/enroll"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
	"github.com/takallem/takallem/internal/ui/theme"
)

type catalogueLoadedMsg struct {
	Languages []course.LanguageOption
	Err       error
}

type enrolledMsg struct {
	Result enroll.Result
	Err    error
}

// CoursesScreen shows every course grouped by language.
type CoursesScreen struct {
	deps      *shared.Deps
	languages []course.LanguageOption
	menu      components.Menu
	loaded    bool
	busy      bool
	errMsg    string
}

var _ screen.Screen = (*CoursesScreen)(nil)
var _ screen.KeyHintProvider = (*CoursesScreen)(nil)

// New creates a CoursesScreen.
func New(deps *shared.Deps) *CoursesScreen {
	return &CoursesScreen{deps: deps}
}

func (s *CoursesScreen) Title() string {
	return "Choose a course"
}

func (s *CoursesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Enroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CoursesScreen) Init() tea.Cmd {
	client := s.deps.Client()
	return func() tea.Msg {
		langs, err := client.Languages(context.Background())
		return catalogueLoadedMsg{Languages: langs, Err: err}
	}
}

func (s *CoursesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogueLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = shared.Message(msg.Err)
			if api.IsAuth(msg.Err) {
				return s, shared.Fail(msg.Err)
			}
			return s, nil
		}
		s.languages = msg.Languages
		s.menu = components.NewMenu(s.menuItems())
		return s, nil

	case enrolledMsg:
		s.busy = false
		if msg.Result.User != nil {
			s.deps.State.SetUser(*msg.Result.User)
		}
		if msg.Result.Progress != nil {
			s.deps.State.SetProgress(*msg.Result.Progress)
		}
		if msg.Err != nil {
			return s, shared.Fail(msg.Err)
		}
		return s, router.Reset(s.deps.Screens.Start())

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CoursesScreen) menuItems() []components.MenuItem {
	enrolled := map[course.CourseName]bool{}
	if u, ok := s.deps.State.User(); ok {
		for _, p := range u.CourseProgresses {
			enrolled[p.CourseName] = true
		}
	}

	var items []components.MenuItem
	for _, lang := range s.languages {
		items = append(items, components.MenuItem{Label: string(lang.Language), Heading: true})
		for _, c := range lang.Courses {
			c := c
			detail := fmt.Sprintf("%d modules", c.TotalModules)
			if enrolled[c.CourseName] {
				detail += " · enrolled"
			}
			items = append(items, components.MenuItem{
				Label:  string(c.CourseName),
				Detail: detail,
				Action: func() tea.Cmd { return s.choose(c, enrolled[c.CourseName]) },
			})
		}
	}
	return items
}

// choose enrolls in c, or only switches to it when a progress record for
// it already exists.
func (s *CoursesScreen) choose(c course.Course, enrolled bool) tea.Cmd {
	u, ok := s.deps.State.User()
	if !ok {
		return shared.Toast("Sign in again to choose a course.")
	}
	s.busy = true
	client := s.deps.Client()
	return func() tea.Msg {
		ctx := context.Background()
		if enrolled {
			user, err := client.SetCurrentCourse(ctx, c.CourseName)
			res := enroll.Result{User: user}
			if err != nil {
				err = &enroll.ChainError{Step: enroll.StepSetCourse, Err: err}
			}
			return enrolledMsg{Result: res, Err: err}
		}
		res, err := enroll.SelectCourse(ctx, client, u.ID, c)
		return enrolledMsg{Result: res, Err: err}
	}
}

func (s *CoursesScreen) View(width, height int) string {
	if s.errMsg != "" && len(s.languages) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading courses...")
	}
	if len(s.languages) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No courses are available yet.")
	}

	content := theme.Title.Render("Which course would you like to take?") + "\n\n" + s.menu.View()
	if s.busy {
		content += "\n" + theme.Hint.Render("Enrolling...")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
