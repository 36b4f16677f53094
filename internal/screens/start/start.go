// Package start restores the learner's course after sign-in or launch.
package start

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/auth"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/session"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
	"github.com/takallem/takallem/internal/ui/theme"
)

const tickInterval = 100 * time.Millisecond

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// Destination is where the learner lands once bootstrapping finishes.
type Destination int

const (
	ToCourses Destination = iota + 1
	ToHome
)

func (d Destination) String() string {
	switch d {
	case ToCourses:
		return "courses"
	case ToHome:
		return "home"
	}
	return fmt.Sprintf("destination(%d)", int(d))
}

// Bootstrap loads the user, their progress in the current course and the
// module list into state. A user without a course, or whose progress record
// is gone, is sent to course selection; in the latter case the stale current
// course is cleared first.
func Bootstrap(ctx context.Context, c *api.Client, state *session.State, now time.Time) (Destination, error) {
	if err := auth.Check(c.Token(), now); err != nil {
		return 0, &api.AuthError{Err: err}
	}

	u, err := c.Me(ctx)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	state.SetUser(*u)
	if !u.HasCurrentCourse() {
		return ToCourses, nil
	}

	p, err := c.GetProgress(ctx, u.ID, *u.CurrentCourse)
	if errors.Is(err, api.ErrNotFound) {
		cleared, err := c.ClearCurrentCourse(ctx)
		if err != nil {
			return 0, fmt.Errorf("clear current course: %w", err)
		}
		state.SetUser(*cleared)
		state.ClearProgress()
		return ToCourses, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	state.SetProgress(p)

	if _, err := shared.LoadModules(ctx, c, state); err != nil {
		return 0, fmt.Errorf("load modules: %w", err)
	}
	return ToHome, nil
}

type tickMsg time.Time

type bootstrappedMsg struct {
	Dest Destination
	Err  error
}

// StartScreen shows a spinner while Bootstrap runs, then replaces itself.
type StartScreen struct {
	deps    *shared.Deps
	frame   int
	loading bool
	errMsg  string
	retry   components.Button
}

var _ screen.Screen = (*StartScreen)(nil)
var _ screen.KeyHintProvider = (*StartScreen)(nil)

// New creates a StartScreen.
func New(deps *shared.Deps) *StartScreen {
	return &StartScreen{deps: deps}
}

func (s *StartScreen) Title() string {
	return "Welcome"
}

func (s *StartScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Ctrl+O", Description: "Sign out"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *StartScreen) Init() tea.Cmd {
	return s.load()
}

func (s *StartScreen) load() tea.Cmd {
	s.loading = true
	s.errMsg = ""
	client, state := s.deps.Client(), s.deps.State
	run := func() tea.Msg {
		dest, err := Bootstrap(context.Background(), client, state, time.Now())
		return bootstrappedMsg{Dest: dest, Err: err}
	}
	return tea.Batch(run, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *StartScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !s.loading {
			return s, nil
		}
		s.frame++
		return s, tick()

	case bootstrappedMsg:
		s.loading = false
		if msg.Err != nil {
			if api.IsAuth(msg.Err) {
				return s, shared.Fail(msg.Err)
			}
			s.errMsg = shared.Message(msg.Err)
			s.retry = components.NewButton("Try again", s.load, "r")
			return s, nil
		}
		if msg.Dest == ToCourses {
			return s, router.Replace(s.deps.Screens.Courses())
		}
		return s, router.Replace(s.deps.Screens.Home())

	case tea.KeyPressMsg:
		if s.loading || s.errMsg == "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.retry, cmd = s.retry.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StartScreen) View(width, height int) string {
	var lines []string
	if s.errMsg != "" {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Could not load your course"),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Render(s.errMsg),
			"",
			s.retry.View(),
		)
	} else {
		name := "learner"
		if u, ok := s.deps.State.User(); ok {
			name = u.DisplayName()
		}
		lines = append(lines,
			theme.Title.Render("Ahlan, "+name+"!"),
			"",
			lipgloss.NewStyle().Foreground(theme.Secondary).
				Render(spinnerFrames[s.frame%len(spinnerFrames)]+" Loading your course..."),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
