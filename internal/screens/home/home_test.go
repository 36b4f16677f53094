package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/api/apitest"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/session"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

var modules = []course.Module{
	{ID: 1, Number: 1, Unit: "Unit 1", Section: "Letters", Title: "Alif", Resource: &course.Resource{ID: 11}},
	{ID: 2, Number: 2, Unit: "Unit 1", Section: "Letters", Title: "Ba", Resource: &course.Resource{ID: 12}},
	{ID: 3, Number: 3, Unit: "Unit 1", Section: "Letters", Title: "Ta", Resource: &course.Resource{ID: 13}},
}

func newScreen(t *testing.T, currModule int) (*HomeScreen, *apitest.Server, *[]course.Module) {
	t.Helper()
	srv := apitest.New(t)
	srv.Modules[course.CourseBeginnerArabic] = modules
	c, err := api.New(srv.URL, api.WithToken(apitest.Token))
	require.NoError(t, err)

	state := session.New()
	state.SignIn(apitest.Token, srv.CurrentUser())
	state.SetProgress(course.CourseProgress{ID: 7, CourseName: course.CourseBeginnerArabic, CurrModule: currModule, TotalModules: 3})

	opened := &[]course.Module{}
	deps := shared.NewDeps(config.DefaultConfig(), state, c)
	deps.Screens.Module = func(m course.Module) screen.Screen {
		*opened = append(*opened, m)
		return &stubScreen{title: m.Title}
	}
	deps.Screens.Courses = func() screen.Screen { return &stubScreen{title: "courses"} }

	h := New(deps)
	_, cmd := h.Update(h.Init()())
	assert.Nil(t, cmd)
	return h, srv, opened
}

func TestModulesLockedBeyondFrontier(t *testing.T) {
	h, _, _ := newScreen(t, 2)

	require.Len(t, h.menu.Items, 4)
	assert.True(t, h.menu.Items[0].Heading)
	assert.Equal(t, "✓", h.menu.Items[1].Detail)
	assert.Equal(t, "● up next", h.menu.Items[2].Detail)
	assert.True(t, h.menu.Items[3].Disabled)
	assert.Equal(t, 2, h.menu.Selected, "cursor starts on the frontier module")
}

func TestEnterOpensModule(t *testing.T) {
	h, _, opened := newScreen(t, 2)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Ba", push.Screen.Title())
	require.Len(t, *opened, 1)
	assert.Equal(t, 12, (*opened)[0].ResourceID())
}

func TestLockedModuleCannotBeOpened(t *testing.T) {
	h, _, opened := newScreen(t, 2)

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, h.menu.Selected)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "Ba", (*opened)[0].Title)
}

func TestResumeClosesModuleAndReloads(t *testing.T) {
	h, srv, _ := newScreen(t, 1)
	h.deps.State.Open(1, &course.Resource{ID: 11})

	p, _ := h.deps.State.Progress()
	p.CurrModule = 2
	h.deps.State.SetProgress(p)

	cmd := h.Resume()
	require.NotNil(t, cmd)
	_, active := h.deps.State.Active()
	assert.False(t, active)
	assert.Equal(t, 2, h.menu.Selected, "menu rebuilt from the new progress")

	h.Update(cmd())
	assert.Equal(t, []string{"GET /modules/{course}", "GET /modules/{course}"}, srv.Routes())
}

func TestCompletedCourse(t *testing.T) {
	h, _, _ := newScreen(t, 4)
	view := h.View(100, 30)
	assert.True(t, strings.Contains(view, "Mabrook"), "completion message shown")
	assert.Contains(t, view, "3/3 modules")
}

func TestShortcutsPushScreens(t *testing.T) {
	h, _, _ := newScreen(t, 1)
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "courses", push.Screen.Title())
}
