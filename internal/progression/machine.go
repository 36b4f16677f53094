package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/takallem/takallem/internal/course"
)

// ErrBusy is returned when an advance is requested while another mutation
// sequence is still in flight.
var ErrBusy = errors.New("progress update already in flight")

// Machine applies one strategy to one module. It never changes counters
// locally; progress only moves when the service confirms a mutation.
type Machine struct {
	mut          Mutator
	strategy     Strategy
	moduleNumber int

	mu       sync.Mutex
	progress course.CourseProgress
	inFlight bool
}

// NewMachine creates a Machine for the module numbered moduleNumber.
func NewMachine(mut Mutator, strategy Strategy, progress course.CourseProgress, moduleNumber int) *Machine {
	return &Machine{
		mut:          mut,
		strategy:     strategy,
		moduleNumber: moduleNumber,
		progress:     progress,
	}
}

// Progress returns the last confirmed progress.
func (m *Machine) Progress() course.CourseProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// ModuleNumber returns the module this machine drives.
func (m *Machine) ModuleNumber() int { return m.moduleNumber }

// Strategy returns the per-kind strategy.
func (m *Machine) Strategy() Strategy { return m.strategy }

// Frontier reports whether this module is still the learner's current one.
func (m *Machine) Frontier() bool {
	return IsFrontier(m.Progress(), m.moduleNumber)
}

// Busy reports whether a mutation sequence is in flight.
func (m *Machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Complete evaluates the strategy's completion predicate.
func (m *Machine) Complete(pos Position) bool {
	return m.strategy.Complete(m.fill(pos))
}

// Advance runs the strategy's plan for pos. On failure the progress applied by
// earlier steps is kept and the outcome is OutcomeStay.
func (m *Machine) Advance(ctx context.Context, pos Position) (Outcome, error) {
	if !m.begin() {
		return OutcomeStay, ErrBusy
	}
	defer m.end()

	plan := m.strategy.Plan(m.fill(pos))
	p, err := Execute(ctx, m.mut, m.Progress(), plan.Steps)
	m.set(p)
	if err != nil {
		return OutcomeStay, err
	}
	return plan.Outcome, nil
}

// CreditWord records a correct vocab answer. The counter is only incremented
// when the service reports the word as newly covered, and never beyond the
// threshold for a batch of problemCount problems.
func (m *Machine) CreditWord(ctx context.Context, word string, problemCount int) (bool, error) {
	if !m.begin() {
		return false, ErrBusy
	}
	defer m.end()

	p := m.Progress()
	added, err := m.mut.AddCoveredWord(ctx, p.ID, word)
	if err != nil {
		return false, fmt.Errorf("add covered word: %w", err)
	}
	if !added {
		return false, nil
	}

	m.mu.Lock()
	if m.progress.CoveredWords == nil {
		m.progress.CoveredWords = map[string]int{}
	}
	m.progress.CoveredWords[word]++
	counter := m.progress.ProblemCounter
	m.mu.Unlock()

	if counter >= Threshold(problemCount) {
		return true, nil
	}
	next, err := m.mut.IncrementProblemCounter(ctx, p.ID)
	if err != nil {
		return true, fmt.Errorf("increment problem counter: %w", err)
	}
	m.set(next)
	return true, nil
}

func (m *Machine) fill(pos Position) Position {
	pos.Progress = m.Progress()
	pos.ModuleNumber = m.moduleNumber
	return pos
}

func (m *Machine) set(p course.CourseProgress) {
	m.mu.Lock()
	m.progress = p
	m.mu.Unlock()
}

func (m *Machine) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return false
	}
	m.inFlight = true
	return true
}

func (m *Machine) end() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
}
