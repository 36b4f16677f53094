// Package exercise holds the per-resource controllers. A controller reads a
// resource and the learner's progress, decides which problem is current,
// grades or checks answers, and drives a progression.Machine when the learner
// presses Next.
package exercise

import (
	"context"
	"errors"
	"fmt"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/enroll"
	"github.com/takallem/takallem/internal/media"
	"github.com/takallem/takallem/internal/progression"
)

var (
	// ErrUnknownResourceType is returned by ForResource for resource types
	// this client has no controller for. Screens render a visible fallback.
	ErrUnknownResourceType = errors.New("unknown resource type")

	// ErrUnanswered is returned by Next before the current problem has an
	// answer.
	ErrUnanswered = errors.New("answer the current problem first")

	// ErrNotPassed is returned by Next on gated kinds until the current
	// problem has been passed.
	ErrNotPassed = errors.New("pass the current problem first")

	// ErrAnswered is returned when a problem that only takes one answer is
	// answered again.
	ErrAnswered = errors.New("problem already answered")
)

// Service is the remote API as seen by controllers.
type Service interface {
	progression.Mutator
	enroll.Service
	Grade(ctx context.Context, s api.Submission) (*api.GradeResult, error)
	Explain(ctx context.Context, req api.ExplainRequest) (string, error)
	FetchMedia(ctx context.Context, ref string, maxBytes int64) (media.File, error)
}

var _ Service = (*api.Client)(nil)

// Env is what a controller is built from.
type Env struct {
	Service      Service
	User         course.User
	Progress     course.CourseProgress
	ModuleNumber int

	// MaxUploadBytes bounds learner uploads and fetched reference media.
	MaxUploadBytes int64
}

// Kind identifies a controller family.
type Kind int

const (
	KindLecture Kind = iota + 1
	KindDialect
	KindChoice
	KindVocabChoice
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindLecture:
		return "lecture"
	case KindDialect:
		return "dialect"
	case KindChoice:
		return "choice"
	case KindVocabChoice:
		return "vocab-choice"
	case KindUpload:
		return "upload"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Controller is implemented by every controller.
type Controller interface {
	Kind() Kind
	Resource() *course.Resource
	ModuleNumber() int

	// Progress returns the last progress the service confirmed.
	Progress() course.CourseProgress

	// Ready is nil when the controller can render. An error wrapping
	// progression.ErrOutOfBounds means the cached progress points outside
	// the content and the screen should keep showing a loading state.
	Ready() error
}

// Route maps a resource type to its controller family.
func Route(t course.ResourceType) (Kind, error) {
	switch t {
	case course.InfoLecture, course.LetterSpeakingLecture, course.LetterWritingLecture, course.VocabLecture:
		return KindLecture, nil
	case course.DialectSelection:
		return KindDialect, nil
	case course.LetterRecognitionProblemSet, course.DiscriminationProblemSet, course.ReadingComprehensionMCQ:
		return KindChoice, nil
	case course.VocabReadingProblemSets, course.VocabListeningProblemSets:
		return KindVocabChoice, nil
	case course.LetterPronunciationProblem, course.WordPronunciationProblemSet,
		course.LetterWritingProblemSet, course.LetterJoiningProblemSet,
		course.DictationProblemSet, course.VocabSpeakingProblemSets:
		return KindUpload, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownResourceType, t)
}

// ForResource builds the controller for r. Unknown types return an error
// wrapping ErrUnknownResourceType.
func ForResource(r *course.Resource, env Env) (Controller, error) {
	if r == nil {
		return nil, errors.New("no resource")
	}
	kind, err := Route(r.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLecture:
		return NewLecture(r, env), nil
	case KindDialect:
		return NewDialectPick(r, env), nil
	case KindChoice:
		return NewChoice(r, env), nil
	case KindVocabChoice:
		return NewVocabChoice(r, env), nil
	default:
		return NewUpload(r, env)
	}
}

// fixedSet is the shared cursor logic of fixed-length problem sets, where
// problem_counter is the index of the current problem.
type fixedSet struct {
	machine *progression.Machine
	tracker *progression.Tracker
	gated   bool
	ready   error
}

func newFixedSet(env Env, strategy progression.Strategy, length int, gated bool) fixedSet {
	p := env.Progress
	fs := fixedSet{
		machine: progression.NewMachine(env.Service, strategy, p, env.ModuleNumber),
		gated:   gated,
	}
	if err := progression.CheckBounds(p.ProblemCounter, length); err != nil {
		fs.ready = err
		fs.tracker = progression.NewTracker(length, 0, false)
		return fs
	}
	fs.tracker = progression.NewTracker(length, p.ProblemCounter, gated)
	return fs
}

func (f *fixedSet) ModuleNumber() int { return f.machine.ModuleNumber() }
func (f *fixedSet) Progress() course.CourseProgress { return f.machine.Progress() }
func (f *fixedSet) Ready() error { return f.ready }
func (f *fixedSet) Busy() bool { return f.machine.Busy() }
func (f *fixedSet) Frontier() bool { return f.machine.Frontier() }
func (f *fixedSet) Index() int { return f.tracker.Index() }
func (f *fixedSet) Len() int { return f.tracker.Len() }
func (f *fixedSet) Statuses() []progression.Status { return f.tracker.Statuses() }
func (f *fixedSet) Strategy() progression.Strategy { return f.machine.Strategy() }

func (f *fixedSet) position() progression.Position {
	return progression.Position{
		Index:      f.tracker.Index(),
		Length:     f.tracker.Len(),
		AllCorrect: f.tracker.AllCorrect(),
	}
}

// Complete reports whether the set's completion predicate holds.
func (f *fixedSet) Complete() bool { return f.machine.Complete(f.position()) }

func (f *fixedSet) canAdvance() error {
	if f.ready != nil {
		return f.ready
	}
	st := f.tracker.StatusAt(f.tracker.Index())
	if f.gated && st != progression.Correct {
		return ErrNotPassed
	}
	if st == progression.Current {
		return ErrUnanswered
	}
	return nil
}

func (f *fixedSet) next(ctx context.Context) (progression.Outcome, error) {
	if err := f.canAdvance(); err != nil {
		return progression.OutcomeStay, err
	}
	out, err := f.machine.Advance(ctx, f.position())
	if err != nil {
		return out, err
	}
	p := f.machine.Progress()
	switch out {
	case progression.OutcomeNextProblem:
		if err := progression.CheckBounds(p.ProblemCounter, f.tracker.Len()); err != nil {
			f.ready = err
			return out, nil
		}
		f.tracker.MoveTo(p.ProblemCounter)
	case progression.OutcomeRestartSet:
		if err := progression.CheckBounds(p.ProblemCounter, f.tracker.Len()); err != nil {
			f.ready = err
			return out, nil
		}
		f.tracker.Reset(p.ProblemCounter)
	}
	return out, nil
}
