package progression

// Status is the per-problem state shown in the progress bar.
type Status int

const (
	Unanswered Status = iota
	Current
	Correct
	Incorrect
)

func (s Status) String() string {
	switch s {
	case Current:
		return "current"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

// Tracker holds the ephemeral status of every problem in the active set and
// the cursor pointing at the problem being answered. Correct is sticky.
type Tracker struct {
	statuses []Status
	index    int
}

// NewTracker builds a tracker for a set of length problems with the cursor at
// index. When seedPassed is set, problems before the cursor are treated as
// already passed; gated kinds only move the cursor past a passed problem.
func NewTracker(length, index int, seedPassed bool) *Tracker {
	t := &Tracker{statuses: make([]Status, length), index: index}
	for i := range t.statuses {
		switch {
		case i < index && seedPassed:
			t.statuses[i] = Correct
		case i == index:
			t.statuses[i] = Current
		}
	}
	return t
}

// Len returns the number of problems.
func (t *Tracker) Len() int { return len(t.statuses) }

// Index returns the cursor.
func (t *Tracker) Index() int { return t.index }

// AtEnd reports whether the cursor is on the last problem.
func (t *Tracker) AtEnd() bool { return t.index == len(t.statuses)-1 }

// Exhausted reports whether the cursor has moved past the last problem.
func (t *Tracker) Exhausted() bool { return t.index >= len(t.statuses) }

// Statuses returns a copy of the status sequence.
func (t *Tracker) Statuses() []Status {
	out := make([]Status, len(t.statuses))
	copy(out, t.statuses)
	return out
}

// StatusAt returns the status of problem i.
func (t *Tracker) StatusAt(i int) Status {
	if i < 0 || i >= len(t.statuses) {
		return Unanswered
	}
	return t.statuses[i]
}

// Record marks the problem under the cursor. A problem already correct stays
// correct.
func (t *Tracker) Record(correct bool) {
	if t.Exhausted() || t.index < 0 {
		return
	}
	if t.statuses[t.index] == Correct {
		return
	}
	if correct {
		t.statuses[t.index] = Correct
	} else {
		t.statuses[t.index] = Incorrect
	}
}

// MoveTo places the cursor on problem i.
func (t *Tracker) MoveTo(i int) {
	if !t.Exhausted() && t.index >= 0 && t.statuses[t.index] == Current {
		t.statuses[t.index] = Unanswered
	}
	t.index = i
	if i >= 0 && i < len(t.statuses) && t.statuses[i] != Correct {
		t.statuses[i] = Current
	}
}

// Reset clears every status and puts the cursor on problem i.
func (t *Tracker) Reset(i int) {
	for k := range t.statuses {
		t.statuses[k] = Unanswered
	}
	t.index = -1
	t.MoveTo(i)
}

// AllCorrect reports whether every problem has been answered correctly.
// It is the completion predicate for fixed-length sets.
func (t *Tracker) AllCorrect() bool {
	if len(t.statuses) == 0 {
		return false
	}
	for _, s := range t.statuses {
		if s != Correct {
			return false
		}
	}
	return true
}
