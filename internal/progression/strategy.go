package progression

import "github.com/takallem/takallem/internal/course"

// Position is what a strategy sees when the learner presses Next.
type Position struct {
	Progress     course.CourseProgress
	ModuleNumber int

	// Index and Length locate the cursor in the active set or batch.
	Index  int
	Length int

	// AllCorrect is the tracker's completion predicate.
	AllCorrect bool

	// ProblemCount is the resource-wide vocab count; SetLimit is the number
	// of batches.
	ProblemCount int
	SetLimit     int
}

// AtEnd reports whether the cursor is on the last problem.
func (p Position) AtEnd() bool { return p.Index >= p.Length-1 }

// Frontier reports whether the position's module is the learner's current one.
func (p Position) Frontier() bool { return IsFrontier(p.Progress, p.ModuleNumber) }

// Strategy supplies the per-kind completion predicate and advance sequence.
type Strategy interface {
	Name() string
	Complete(pos Position) bool
	Plan(pos Position) Plan
}

// FixedSet drives fixed-length sets where problem_counter is the cursor.
type FixedSet struct{}

func (FixedSet) Name() string { return "fixed-set" }

func (FixedSet) Complete(pos Position) bool { return pos.AllCorrect }

func (s FixedSet) Plan(pos Position) Plan {
	if s.Complete(pos) {
		steps := []Step{{Op: OpClearCounter}}
		if pos.Frontier() {
			steps = append(steps, Step{Op: OpIncrementModule})
		}
		return Plan{Steps: steps, Outcome: OutcomeHome}
	}
	if pos.AtEnd() {
		return Plan{Steps: []Step{{Op: OpClearCounter}}, Outcome: OutcomeRestartSet}
	}
	return Plan{Steps: []Step{{Op: OpIncrementCounter}}, Outcome: OutcomeNextProblem}
}

// VocabRotation drives the threshold/rotating vocab sets. problem_counter
// counts distinct credited words; the cursor inside a batch is local.
type VocabRotation struct{}

func (VocabRotation) Name() string { return "vocab-rotation" }

func (VocabRotation) Complete(pos Position) bool {
	return pos.ProblemCount > 0 && pos.Progress.ProblemCounter >= Threshold(pos.ProblemCount)
}

func (s VocabRotation) Plan(pos Position) Plan {
	if !pos.AtEnd() {
		return Plan{Outcome: OutcomeNextProblem}
	}
	if s.Complete(pos) {
		steps := []Step{
			{Op: OpClearCounter},
			{Op: OpClearCoveredWords},
			{Op: OpClearVocabSet},
		}
		if pos.Frontier() {
			steps = append(steps, Step{Op: OpIncrementModule})
		}
		return Plan{Steps: steps, Outcome: OutcomeHome}
	}
	return Plan{
		Steps:   []Step{{Op: OpIncrementVocabSet, Limit: pos.SetLimit}},
		Outcome: OutcomeNextBatch,
	}
}

// FrontierOnly is used by lectures and single-problem resources: finishing
// only ever advances curr_module, and only from the frontier.
type FrontierOnly struct {
	// RequirePass makes completion depend on AllCorrect.
	RequirePass bool
}

func (FrontierOnly) Name() string { return "frontier-only" }

func (s FrontierOnly) Complete(pos Position) bool {
	return !s.RequirePass || pos.AllCorrect
}

func (s FrontierOnly) Plan(pos Position) Plan {
	if !s.Complete(pos) {
		return Plan{Outcome: OutcomeStay}
	}
	if pos.Frontier() {
		return Plan{Steps: []Step{{Op: OpIncrementModule}}, Outcome: OutcomeHome}
	}
	return Plan{Outcome: OutcomeHome}
}
