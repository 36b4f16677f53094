package progression

import (
	"context"
	"errors"
	"fmt"

	"github.com/takallem/takallem/internal/course"
)

// ErrOutOfBounds means the cached counter points outside the problem set.
// Screens render a loading placeholder instead of indexing.
var ErrOutOfBounds = errors.New("problem counter out of range")

// Mutator issues the remote progress mutations. Every method returns the
// progress as the service reports it after the change.
type Mutator interface {
	IncrementModule(ctx context.Context, progressID int) (course.CourseProgress, error)
	IncrementProblemCounter(ctx context.Context, progressID int) (course.CourseProgress, error)
	ClearProblemCounter(ctx context.Context, progressID int) (course.CourseProgress, error)
	IncrementVocabSet(ctx context.Context, progressID, limit int) (course.CourseProgress, error)
	ClearVocabSet(ctx context.Context, progressID int) (course.CourseProgress, error)
	ClearCoveredWords(ctx context.Context, progressID int) (course.CourseProgress, error)

	// AddCoveredWord adds word if absent and reports whether it was new.
	AddCoveredWord(ctx context.Context, progressID int, word string) (bool, error)
}

// Op is a single remote progress mutation.
type Op int

const (
	OpIncrementModule Op = iota + 1
	OpIncrementCounter
	OpClearCounter
	OpIncrementVocabSet
	OpClearVocabSet
	OpClearCoveredWords
)

func (o Op) String() string {
	switch o {
	case OpIncrementModule:
		return "increment-module"
	case OpIncrementCounter:
		return "increment-counter"
	case OpClearCounter:
		return "clear-counter"
	case OpIncrementVocabSet:
		return "increment-vocab-set"
	case OpClearVocabSet:
		return "clear-vocab-set"
	case OpClearCoveredWords:
		return "clear-covered-words"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Step is one mutation in a plan. Limit is only used by OpIncrementVocabSet.
type Step struct {
	Op    Op
	Limit int
}

// Outcome tells the controller what to do locally once a plan succeeded.
type Outcome int

const (
	OutcomeStay        Outcome = iota // Nothing changes locally
	OutcomeNextProblem                // Move the cursor one forward
	OutcomeRestartSet                 // Reset statuses, cursor to 0
	OutcomeNextBatch                  // Load the next vocab batch, cursor to 0
	OutcomeHome                       // Leave the exercise
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNextProblem:
		return "next-problem"
	case OutcomeRestartSet:
		return "restart-set"
	case OutcomeNextBatch:
		return "next-batch"
	case OutcomeHome:
		return "home"
	default:
		return "stay"
	}
}

// Plan is the ordered mutation sequence for one advance.
type Plan struct {
	Steps   []Step
	Outcome Outcome
}

// Ops lists the plan's operations in order.
func (p Plan) Ops() []Op {
	ops := make([]Op, len(p.Steps))
	for i, s := range p.Steps {
		ops[i] = s.Op
	}
	return ops
}

// StepError reports which step of a sequence failed. Steps before it have
// already been applied by the service.
type StepError struct {
	Step  Step
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Execute runs steps strictly in order, stopping at the first failure. It
// returns the progress reported by the last successful step (or p when none
// ran) so the caller can keep what the service already applied.
func Execute(ctx context.Context, m Mutator, p course.CourseProgress, steps []Step) (course.CourseProgress, error) {
	cur := p
	for i, s := range steps {
		next, err := apply(ctx, m, cur.ID, s)
		if err != nil {
			return cur, &StepError{Step: s, Index: i, Err: err}
		}
		cur = next
	}
	return cur, nil
}

func apply(ctx context.Context, m Mutator, id int, s Step) (course.CourseProgress, error) {
	switch s.Op {
	case OpIncrementModule:
		return m.IncrementModule(ctx, id)
	case OpIncrementCounter:
		return m.IncrementProblemCounter(ctx, id)
	case OpClearCounter:
		return m.ClearProblemCounter(ctx, id)
	case OpIncrementVocabSet:
		return m.IncrementVocabSet(ctx, id, s.Limit)
	case OpClearVocabSet:
		return m.ClearVocabSet(ctx, id)
	case OpClearCoveredWords:
		return m.ClearCoveredWords(ctx, id)
	default:
		return course.CourseProgress{}, fmt.Errorf("unknown op %s", s.Op)
	}
}

// IsFrontier reports whether moduleNumber is the learner's current module.
// Only the frontier module may advance curr_module.
func IsFrontier(p course.CourseProgress, moduleNumber int) bool {
	return p.CurrModule == moduleNumber
}

// CheckBounds returns ErrOutOfBounds unless 0 <= counter < length.
func CheckBounds(counter, length int) error {
	if counter < 0 || counter >= length {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfBounds, counter, length)
	}
	return nil
}

// Threshold is the number of distinct credited words that completes a vocab
// exercise.
func Threshold(problemCount int) int {
	return problemCount * 2
}

// NextVocabSet returns the batch after current, wrapping to 1 at limit.
func NextVocabSet(current, limit int) int {
	if limit <= 0 || current >= limit || current < 1 {
		return 1
	}
	return current + 1
}
