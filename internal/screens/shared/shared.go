// Package shared holds what every screen needs: the service client, the
// session state, the local store and a way to build other screens without
// importing them.
package shared

import (
	"context"
	"errors"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/session"
	"github.com/takallem/takallem/internal/store"
)

// Screens builds screens on demand. The root model fills it in so screens
// can navigate to each other without import cycles.
type Screens struct {
	Login    func() screen.Screen
	Start    func() screen.Screen
	Courses  func() screen.Screen
	Home     func() screen.Screen
	Module   func(m course.Module) screen.Screen
	Requests func() screen.Screen
}

// Deps is shared by every screen of one TUI run.
type Deps struct {
	Config config.Config
	State  *session.State

	// Credentials and Events may be nil when no store is open.
	Credentials store.CredentialRepo
	Events      store.EventRepo

	Screens Screens

	mu     sync.RWMutex
	client *api.Client
}

// NewDeps returns Deps using client until SetClient replaces it.
func NewDeps(cfg config.Config, state *session.State, client *api.Client) *Deps {
	return &Deps{Config: cfg, State: state, client: client}
}

// Client returns the current service client.
func (d *Deps) Client() *api.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client
}

// SetClient swaps the service client, typically after signing in or out.
func (d *Deps) SetClient(c *api.Client) {
	d.mu.Lock()
	d.client = c
	d.mu.Unlock()
}

// ToastMsg shows a transient error banner.
type ToastMsg struct {
	Text string
}

// SignOutMsg tears the session down and returns to the login screen.
type SignOutMsg struct {
	Reason string
}

// Toast returns a command that shows text in the error banner.
func Toast(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text} }
}

// Fail turns an error into the matching user-visible reaction: a sign-out
// for authentication failures and a toast for everything else.
func Fail(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	if api.IsAuth(err) {
		return func() tea.Msg { return SignOutMsg{Reason: err.Error()} }
	}
	return Toast(Message(err))
}

// Message is the text shown for err.
func Message(err error) string {
	var verr *media.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if apiErr != nil {
		return "Something went wrong. Please try again."
	}
	return err.Error()
}

// LoadModules fetches the module list for the course in progress and stores
// it in state. The dialect-specific listing is used once a dialect is set.
func LoadModules(ctx context.Context, c *api.Client, state *session.State) ([]course.Module, error) {
	p, ok := state.Progress()
	if !ok {
		return nil, errors.New("no course selected")
	}
	var d course.Dialect
	if p.HasDialect() {
		d = *p.Dialect
	}
	mods, err := c.Modules(ctx, p.CourseName, d)
	if err != nil {
		return nil, err
	}
	state.SetModules(mods)
	return mods, nil
}
