package progression

import (
	"context"
	"errors"
	"sync"

	"github.com/takallem/takallem/internal/course"
)

// ErrFakeUnavailable is returned by FakeMutator for injected failures that
// carry no error of their own.
var ErrFakeUnavailable = errors.New("fake mutator: unavailable")

// FakeMutator is an in-memory Mutator for tests. It applies the service's
// counter semantics to a single progress record and records every call.
type FakeMutator struct {
	mu       sync.Mutex
	progress course.CourseProgress
	failures map[Op]error
	failWord error

	// Calls lists the operations in the order they were issued.
	Calls []Op
	// Words lists the words passed to AddCoveredWord.
	Words []string
}

// NewFakeMutator creates a FakeMutator holding p.
func NewFakeMutator(p course.CourseProgress) *FakeMutator {
	p = p.Clone()
	if p.CoveredWords == nil {
		p.CoveredWords = map[string]int{}
	}
	return &FakeMutator{progress: p, failures: map[Op]error{}}
}

// FailOn makes the next call of op fail with err.
func (f *FakeMutator) FailOn(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrFakeUnavailable
	}
	f.failures[op] = err
}

// FailAddWord makes the next AddCoveredWord fail.
func (f *FakeMutator) FailAddWord(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrFakeUnavailable
	}
	f.failWord = err
}

// Progress returns the server-side progress.
func (f *FakeMutator) Progress() course.CourseProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress.Clone()
}

// CallCount returns the number of counter mutations issued.
func (f *FakeMutator) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

func (f *FakeMutator) IncrementModule(_ context.Context, _ int) (course.CourseProgress, error) {
	return f.mutate(OpIncrementModule, func(p *course.CourseProgress) { p.CurrModule++ })
}

func (f *FakeMutator) IncrementProblemCounter(_ context.Context, _ int) (course.CourseProgress, error) {
	return f.mutate(OpIncrementCounter, func(p *course.CourseProgress) { p.ProblemCounter++ })
}

func (f *FakeMutator) ClearProblemCounter(_ context.Context, _ int) (course.CourseProgress, error) {
	return f.mutate(OpClearCounter, func(p *course.CourseProgress) { p.ProblemCounter = 0 })
}

func (f *FakeMutator) IncrementVocabSet(_ context.Context, _ int, limit int) (course.CourseProgress, error) {
	return f.mutate(OpIncrementVocabSet, func(p *course.CourseProgress) {
		p.CurrentVocabProblemSet = NextVocabSet(p.CurrentVocabProblemSet, limit)
	})
}

func (f *FakeMutator) ClearVocabSet(_ context.Context, _ int) (course.CourseProgress, error) {
	return f.mutate(OpClearVocabSet, func(p *course.CourseProgress) { p.CurrentVocabProblemSet = 1 })
}

func (f *FakeMutator) ClearCoveredWords(_ context.Context, _ int) (course.CourseProgress, error) {
	return f.mutate(OpClearCoveredWords, func(p *course.CourseProgress) { p.CoveredWords = map[string]int{} })
}

func (f *FakeMutator) AddCoveredWord(_ context.Context, _ int, word string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Words = append(f.Words, word)
	if err := f.failWord; err != nil {
		f.failWord = nil
		return false, err
	}
	if _, ok := f.progress.CoveredWords[word]; ok {
		return false, nil
	}
	f.progress.CoveredWords[word] = 1
	return true, nil
}

func (f *FakeMutator) mutate(op Op, fn func(*course.CourseProgress)) (course.CourseProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
	if err, ok := f.failures[op]; ok {
		delete(f.failures, op)
		return course.CourseProgress{}, err
	}
	fn(&f.progress)
	return f.progress.Clone(), nil
}
