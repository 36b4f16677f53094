package exercise

import (
	"context"
	"fmt"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/progression"
)

// Choice drives the multiple-choice sets (letter recognition, discrimination,
// reading comprehension). Answers are checked locally and a missed problem
// may be tried again until it is correct. Next is allowed after any answer;
// a set that ends with a miss is cleared and started again.
type Choice struct {
	fixedSet
	resource *course.Resource
	selected string
}

var _ Controller = (*Choice)(nil)

// NewChoice builds a Choice controller.
func NewChoice(r *course.Resource, env Env) *Choice {
	return &Choice{
		fixedSet: newFixedSet(env, progression.FixedSet{}, len(r.Problems), false),
		resource: r,
	}
}

func (c *Choice) Kind() Kind { return KindChoice }
func (c *Choice) Resource() *course.Resource { return c.resource }

// Current returns the problem under the cursor.
func (c *Choice) Current() (course.Problem, bool) {
	if c.ready != nil {
		return course.Problem{}, false
	}
	return c.resource.Problems[c.tracker.Index()], true
}

// Selected returns the learner's answer to the current problem, or "".
func (c *Choice) Selected() string { return c.selected }

// Answer checks choice against the current problem.
func (c *Choice) Answer(choice string) (bool, error) {
	p, ok := c.Current()
	if !ok {
		return false, c.ready
	}
	if c.tracker.StatusAt(c.tracker.Index()) == progression.Correct {
		return false, ErrAnswered
	}
	if !contains(p.AnswerChoices, choice) {
		return false, fmt.Errorf("%q is not one of the choices", choice)
	}
	c.selected = choice
	correct := choice == p.CorrectChoice()
	c.tracker.Record(correct)
	return correct, nil
}

// Next advances the set. See progression.FixedSet for the calls it makes.
func (c *Choice) Next(ctx context.Context) (progression.Outcome, error) {
	out, err := c.next(ctx)
	if err == nil && out != progression.OutcomeStay {
		c.selected = ""
	}
	return out, err
}

// VocabChoice drives the rotating vocab sets (reading, listening). Correct
// answers credit the word through the covered-words gate; the cursor inside a
// batch is local and batches rotate on the service.
type VocabChoice struct {
	machine  *progression.Machine
	tracker  *progression.Tracker
	resource *course.Resource
	batch    *course.ProblemSet
	selected string
	ready    error
}

var _ Controller = (*VocabChoice)(nil)

// AnswerResult is the outcome of a vocab answer.
type AnswerResult struct {
	Correct bool

	// Credited is set when the word was newly covered and counted.
	Credited bool
}

// NewVocabChoice builds a VocabChoice controller on the learner's current
// batch.
func NewVocabChoice(r *course.Resource, env Env) *VocabChoice {
	v := &VocabChoice{
		machine:  progression.NewMachine(env.Service, progression.VocabRotation{}, env.Progress, env.ModuleNumber),
		resource: r,
	}
	v.load(env.Progress.CurrentVocabProblemSet)
	return v
}

func (v *VocabChoice) Kind() Kind { return KindVocabChoice }
func (v *VocabChoice) Resource() *course.Resource { return v.resource }
func (v *VocabChoice) ModuleNumber() int { return v.machine.ModuleNumber() }
func (v *VocabChoice) Progress() course.CourseProgress { return v.machine.Progress() }
func (v *VocabChoice) Ready() error { return v.ready }
func (v *VocabChoice) Busy() bool { return v.machine.Busy() }
func (v *VocabChoice) Index() int { return v.tracker.Index() }
func (v *VocabChoice) Len() int { return v.tracker.Len() }
func (v *VocabChoice) Statuses() []progression.Status { return v.tracker.Statuses() }
func (v *VocabChoice) Selected() string { return v.selected }

// Batch returns the active batch.
func (v *VocabChoice) Batch() *course.ProblemSet { return v.batch }

// Credited returns the credited word count and the count that completes the
// exercise.
func (v *VocabChoice) Credited() (int, int) {
	return v.machine.Progress().ProblemCounter, progression.Threshold(v.problemCount())
}

// Complete reports whether enough distinct words have been credited.
func (v *VocabChoice) Complete() bool { return v.machine.Complete(v.position()) }

// Current returns the problem under the cursor.
func (v *VocabChoice) Current() (course.Problem, bool) {
	if v.ready != nil || v.tracker.Exhausted() {
		return course.Problem{}, false
	}
	return v.batch.Problems[v.tracker.Index()], true
}

// Answer checks choice and, when correct, credits the word. The local status
// is recorded even if crediting fails.
func (v *VocabChoice) Answer(ctx context.Context, choice string) (AnswerResult, error) {
	p, ok := v.Current()
	if !ok {
		return AnswerResult{}, v.ready
	}
	if v.selected != "" {
		return AnswerResult{}, ErrAnswered
	}
	if !contains(p.AnswerChoices, choice) {
		return AnswerResult{}, fmt.Errorf("%q is not one of the choices", choice)
	}
	v.selected = choice
	res := AnswerResult{Correct: choice == p.CorrectChoice()}
	v.tracker.Record(res.Correct)
	if !res.Correct {
		return res, nil
	}
	credited, err := v.machine.CreditWord(ctx, choice, v.problemCount())
	res.Credited = credited
	return res, err
}

// Next moves to the next problem or, at the end of a batch, either rotates to
// the next batch or finishes the exercise.
func (v *VocabChoice) Next(ctx context.Context) (progression.Outcome, error) {
	if v.ready != nil {
		return progression.OutcomeStay, v.ready
	}
	if v.selected == "" {
		return progression.OutcomeStay, ErrUnanswered
	}
	out, err := v.machine.Advance(ctx, v.position())
	if err != nil {
		return out, err
	}
	v.selected = ""
	switch out {
	case progression.OutcomeNextProblem:
		v.tracker.MoveTo(v.tracker.Index() + 1)
	case progression.OutcomeNextBatch:
		v.load(v.machine.Progress().CurrentVocabProblemSet)
	}
	return out, nil
}

func (v *VocabChoice) load(n int) {
	batch, ok := v.resource.BatchAt(n)
	if !ok || len(batch.Problems) == 0 {
		v.ready = fmt.Errorf("%w: vocab set %d of %d", progression.ErrOutOfBounds, n, len(v.resource.ProblemSets))
		v.tracker = progression.NewTracker(0, 0, false)
		return
	}
	v.ready = nil
	v.batch = batch
	v.tracker = progression.NewTracker(len(batch.Problems), 0, false)
}

func (v *VocabChoice) position() progression.Position {
	return progression.Position{
		Index:        v.tracker.Index(),
		Length:       v.tracker.Len(),
		AllCorrect:   v.tracker.AllCorrect(),
		ProblemCount: v.problemCount(),
		SetLimit:     v.setLimit(),
	}
}

// problemCount is the count the completion threshold derives from. It is
// the same for every batch: the resource's count, else the smallest batch.
func (v *VocabChoice) problemCount() int {
	if v.resource.ProblemCount > 0 {
		return v.resource.ProblemCount
	}
	n := 0
	for _, ps := range v.resource.ProblemSets {
		c := ps.ProblemCount
		if c == 0 {
			c = len(ps.Problems)
		}
		if c > 0 && (n == 0 || c < n) {
			n = c
		}
	}
	return n
}

func (v *VocabChoice) setLimit() int {
	switch {
	case v.resource.SetLimit > 0:
		return v.resource.SetLimit
	case v.batch != nil && v.batch.SetLimit > 0:
		return v.batch.SetLimit
	}
	return len(v.resource.ProblemSets)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
