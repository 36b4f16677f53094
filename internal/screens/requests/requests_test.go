package requests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/takallem/takallem/internal/store"
)

type fakeEvents struct {
	events []store.RequestEvent
	err    error
	opts   store.QueryOpts
}

func (f *fakeEvents) AppendRequest(context.Context, store.RequestEventData) error { return nil }

func (f *fakeEvents) QueryRequests(_ context.Context, opts store.QueryOpts) ([]store.RequestEvent, error) {
	f.opts = opts
	return f.events, f.err
}

func sampleEvents() []store.RequestEvent {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []store.RequestEvent{
		{ID: 2, Sequence: 2, Timestamp: now, RequestEventData: store.RequestEventData{
			Method: "PUT", Route: "/user-course-progress/problem-counter/clear/{id}", Status: 503,
			LatencyMs: 40, ErrorMessage: "Database unavailable", IdempotencyKey: "a1b2",
		}},
		{ID: 1, Sequence: 1, Timestamp: now.Add(-time.Minute), RequestEventData: store.RequestEventData{
			Method: "GET", Route: "/user/me", Status: 200, LatencyMs: 12, Success: true,
		}},
	}
}

func load(t *testing.T, repo store.EventRepo) *RequestsScreen {
	t.Helper()
	s := New(repo)
	s.Update(s.Init()())
	return s
}

func TestLoadsRecentRequests(t *testing.T) {
	repo := &fakeEvents{events: sampleEvents()}
	s := load(t, repo)

	if repo.opts.Limit != Limit {
		t.Errorf("limit = %d, want %d", repo.opts.Limit, Limit)
	}
	view := s.View(120, 30)
	for _, want := range []string{"/user/me", "problem-counter/clear", "503", "200"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Database unavailable") {
		t.Error("details shown before expanding")
	}
}

func TestExpandShowsDetails(t *testing.T) {
	s := load(t, &fakeEvents{events: sampleEvents()})

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view := s.View(120, 30)
	if !strings.Contains(view, "Database unavailable") || !strings.Contains(view, "a1b2") {
		t.Errorf("expanded row missing details:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	if got := s.rowOffset(); got != 4 {
		t.Errorf("rowOffset = %d, want 4", got)
	}
}

func TestEmptyAndFailedLoads(t *testing.T) {
	if view := load(t, nil).View(80, 20); !strings.Contains(view, "No requests recorded") {
		t.Errorf("nil repo view = %q", view)
	}
	s := load(t, &fakeEvents{err: errors.New("disk I/O error")})
	if view := s.View(80, 20); !strings.Contains(view, "disk I/O error") {
		t.Errorf("error view = %q", view)
	}
}
