package session

import (
	"sync"

	"github.com/takallem/takallem/internal/course"
)

// Phase is where the learner is in the app, derived from what the state holds.
type Phase int

const (
	PhaseSignedOut      Phase = iota // No token
	PhaseChoosingCourse              // Signed in without a current course or progress
	PhaseHome                        // Progress loaded, no module open
	PhaseInModule                    // A resource is open
)

func (p Phase) String() string {
	switch p {
	case PhaseSignedOut:
		return "signed-out"
	case PhaseChoosingCourse:
		return "choosing-course"
	case PhaseHome:
		return "home"
	case PhaseInModule:
		return "in-module"
	}
	return "unknown"
}

// Active is the module the learner has open.
type Active struct {
	// ModuleNumber is the 1-based module number the resource was opened
	// from. The frontier guard compares it against curr_module.
	ModuleNumber int
	Resource     *course.Resource
}

// ProgressObserver is notified with every progress value the state accepts.
type ProgressObserver func(userID int, p course.CourseProgress)

// State is everything the client knows about the signed-in learner. It is
// passed explicitly to the screens and controllers that need it and torn down
// with Clear on sign-out.
type State struct {
	mu sync.RWMutex

	token    string
	user     *course.User
	progress *course.CourseProgress
	modules  []course.Module
	active   *Active

	observers []ProgressObserver
}

// New returns an empty, signed-out state.
func New() *State {
	return &State{}
}

// Observe registers fn to be called after each SetProgress.
func (s *State) Observe(fn ProgressObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// SignIn stores a token and the user it belongs to. Anything cached for a
// previous user is dropped.
func (s *State) SignIn(token string, u course.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ID != u.ID {
		s.progress, s.modules, s.active = nil, nil, nil
	}
	s.token = token
	s.user = &u
}

// Token returns the bearer token, empty when signed out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetUser replaces the cached user, e.g. after a user mutation.
func (s *State) SetUser(u course.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// User returns the signed-in user.
func (s *State) User() (course.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return course.User{}, false
	}
	return *s.user, true
}

// SetProgress replaces the cached progress with one the service returned.
func (s *State) SetProgress(p course.CourseProgress) {
	s.mu.Lock()
	cp := p.Clone()
	if s.progress != nil && s.progress.CourseName != p.CourseName {
		s.modules, s.active = nil, nil
	}
	s.progress = &cp
	observers := append([]ProgressObserver(nil), s.observers...)
	userID := 0
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(userID, p.Clone())
	}
}

// Progress returns a copy of the cached progress.
func (s *State) Progress() (course.CourseProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.progress == nil {
		return course.CourseProgress{}, false
	}
	return s.progress.Clone(), true
}

// ClearProgress forgets the current course, e.g. after the service reports no
// progress for it.
func (s *State) ClearProgress() {
	s.mu.Lock()
	s.progress, s.modules, s.active = nil, nil, nil
	s.mu.Unlock()
}

// SetModules replaces the cached module list.
func (s *State) SetModules(mods []course.Module) {
	s.mu.Lock()
	s.modules = append([]course.Module(nil), mods...)
	s.mu.Unlock()
}

// Modules returns the cached module list.
func (s *State) Modules() []course.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]course.Module(nil), s.modules...)
}

// Module returns the cached module numbered n.
func (s *State) Module(n int) (course.Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modules {
		if m.Number == n {
			return m, true
		}
	}
	return course.Module{}, false
}

// Open marks a resource as the active module.
func (s *State) Open(moduleNumber int, r *course.Resource) {
	s.mu.Lock()
	s.active = &Active{ModuleNumber: moduleNumber, Resource: r}
	s.mu.Unlock()
}

// Close drops the active module.
func (s *State) Close() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// Active returns the open module, if any.
func (s *State) Active() (Active, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return Active{}, false
	}
	return *s.active, true
}

// Phase derives the learner's phase from the state.
func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.token == "":
		return PhaseSignedOut
	case s.progress == nil:
		return PhaseChoosingCourse
	case s.active == nil:
		return PhaseHome
	default:
		return PhaseInModule
	}
}

// Clear tears down everything, including the token. Observers stay
// registered.
func (s *State) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.progress = nil
	s.modules = nil
	s.active = nil
	s.mu.Unlock()
}
