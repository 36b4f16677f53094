package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/courses"
	"github.com/takallem/takallem/internal/screens/home"
	"github.com/takallem/takallem/internal/screens/login"
	"github.com/takallem/takallem/internal/screens/module"
	"github.com/takallem/takallem/internal/screens/requests"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/screens/start"
	"github.com/takallem/takallem/internal/session"
	"github.com/takallem/takallem/internal/store"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
)

// SnapshotHistory is how many progress snapshots are kept in the store.
const SnapshotHistory = 200

// Options holds dependencies for the TUI.
type Options struct {
	Config config.Config

	// Client is the anonymous service client. A signed-in copy is derived
	// from it when credentials are available.
	Client *api.Client

	// The repos are optional; without them nothing is persisted.
	CredentialRepo store.CredentialRepo
	SnapshotRepo   store.SnapshotRepo
	EventRepo      store.EventRepo

	// Saved are the stored credentials to resume from, if any.
	Saved *store.Credentials
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	deps      *shared.Deps
	anonymous *api.Client
	toast     *components.Toast
	width     int
	height    int
}

// newAppModel wires the screens together and picks the first one: start
// when credentials were saved, login otherwise.
func newAppModel(opts Options) AppModel {
	state := session.New()
	deps := shared.NewDeps(opts.Config, state, opts.Client)
	deps.Credentials = opts.CredentialRepo
	deps.Events = opts.EventRepo
	deps.Screens = shared.Screens{
		Login:    func() screen.Screen { return login.New(deps, savedEmail(deps)) },
		Start:    func() screen.Screen { return start.New(deps) },
		Courses:  func() screen.Screen { return courses.New(deps) },
		Home:     func() screen.Screen { return home.New(deps) },
		Module:   func(m course.Module) screen.Screen { return module.New(deps, m) },
		Requests: func() screen.Screen { return requests.New(deps.Events) },
	}

	if opts.SnapshotRepo != nil {
		state.Observe(snapshotter(opts.SnapshotRepo))
	}

	var first screen.Screen
	if opts.Saved != nil && opts.Saved.Token != "" {
		deps.SetClient(opts.Client.WithToken(opts.Saved.Token))
		first = deps.Screens.Start()
	} else {
		first = deps.Screens.Login()
	}

	return AppModel{
		router:    router.New(first),
		deps:      deps,
		anonymous: opts.Client,
		toast:     &components.Toast{},
	}
}

// snapshotter saves every progress value the state accepts. Failures are
// logged; the service stays the source of truth.
func snapshotter(repo store.SnapshotRepo) session.ProgressObserver {
	return func(userID int, p course.CourseProgress) {
		ctx := context.Background()
		if err := repo.Save(ctx, userID, p); err != nil {
			log.Printf("warning: save progress snapshot: %v", err)
			return
		}
		if err := repo.Prune(ctx, SnapshotHistory); err != nil {
			log.Printf("warning: prune progress snapshots: %v", err)
		}
	}
}

func savedEmail(deps *shared.Deps) string {
	if deps.Credentials == nil {
		return ""
	}
	c, err := deps.Credentials.Load(context.Background())
	if err != nil || c == nil {
		return ""
	}
	return c.Email
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case shared.ToastMsg:
		return m, m.toast.Show(msg.Text, m.deps.Config.ToastDuration)

	case components.ToastExpiredMsg:
		m.toast.Expire(msg)
		return m, nil

	case shared.SignOutMsg:
		return m, m.signOut(msg.Reason)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+o":
			if _, ok := m.deps.State.User(); ok {
				return m, m.signOut("")
			}
		case "esc":
			if m.router.Depth() > 1 {
				if l, ok := m.router.Active().(screen.Leaver); ok {
					if cmd, handled := l.Leave(); handled {
						return m, cmd
					}
				}
				return m, router.Pop()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// signOut drops everything known about the learner and returns to login.
func (m AppModel) signOut(reason string) tea.Cmd {
	if reason != "" {
		log.Printf("signing out: %s", reason)
	}
	m.deps.State.Clear()
	if m.deps.Credentials != nil {
		if err := m.deps.Credentials.Delete(context.Background()); err != nil {
			log.Printf("warning: delete credentials: %v", err)
		}
	}
	m.deps.SetClient(m.anonymous)

	cmds := []tea.Cmd{router.Reset(m.deps.Screens.Login())}
	if reason != "" {
		cmds = append(cmds, shared.Toast("You have been signed out. Please sign in again."))
	}
	return tea.Batch(cmds...)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	toast := ""
	if m.toast.Visible() {
		toast = layout.RenderToast(m.toast.Text, m.width)
	}

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if toast != "" {
		contentHeight -= lipgloss.Height(toast)
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, toast, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// status is the right side of the header: who is signed in and where.
func (m AppModel) status() string {
	u, ok := m.deps.State.User()
	if !ok {
		return ""
	}
	parts := []string{u.DisplayName()}
	if p, ok := m.deps.State.Progress(); ok {
		name := string(p.CourseName)
		if d := p.DialectOrDefault(); d != "" && p.HasDialect() {
			name += " · " + string(d)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "  ")
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Client == nil {
		return fmt.Errorf("no service client configured")
	}

	logPath := opts.Config.LogFile
	if logPath == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		logPath = p
	}
	f, err := tea.LogToFile(logPath, "takallem")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
