package progression

import (
	"testing"
)

func countStatus(ss []Status, want Status) int {
	n := 0
	for _, s := range ss {
		if s == want {
			n++
		}
	}
	return n
}

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		index      int
		seedPassed bool
		want       []Status
	}{
		{"fresh set", 3, 0, false, []Status{Current, Unanswered, Unanswered}},
		{"resumed ungated", 3, 2, false, []Status{Unanswered, Unanswered, Current}},
		{"resumed gated", 3, 2, true, []Status{Correct, Correct, Current}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(tt.length, tt.index, tt.seedPassed)
			got := tr.Statuses()
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("status[%d] = %s, want %s (all: %v)", i, got[i], tt.want[i], got)
				}
			}
			if n := countStatus(got, Current); n != 1 {
				t.Errorf("expected exactly one current, got %d", n)
			}
		})
	}
}

func TestTrackerCorrectIsSticky(t *testing.T) {
	tr := NewTracker(2, 0, false)
	tr.Record(true)
	tr.Record(false)
	if tr.StatusAt(0) != Correct {
		t.Fatalf("expected correct to stick, got %s", tr.StatusAt(0))
	}

	tr.MoveTo(1)
	tr.MoveTo(0)
	if tr.StatusAt(0) != Correct {
		t.Fatalf("revisiting must not revert correct, got %s", tr.StatusAt(0))
	}
	if tr.StatusAt(1) != Unanswered {
		t.Errorf("left-behind current should become unanswered, got %s", tr.StatusAt(1))
	}
}

func TestTrackerAllCorrect(t *testing.T) {
	tr := NewTracker(5, 0, false)
	for i := 0; i < 4; i++ {
		tr.Record(true)
		tr.MoveTo(i + 1)
	}
	tr.Record(false)
	if tr.AllCorrect() {
		t.Fatal("set with an incorrect problem must not be complete")
	}
	tr.Record(true)
	if !tr.AllCorrect() {
		t.Fatalf("expected all correct, got %v", tr.Statuses())
	}
	for i, s := range tr.Statuses() {
		if s != Correct {
			t.Errorf("problem %d: expected correct, got %s", i, s)
		}
	}
}

func TestTrackerEmptyIsNotComplete(t *testing.T) {
	if NewTracker(0, 0, false).AllCorrect() {
		t.Error("empty set must not count as complete")
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(3, 0, false)
	tr.Record(true)
	tr.MoveTo(1)
	tr.Record(false)

	tr.Reset(0)
	want := []Status{Current, Unanswered, Unanswered}
	got := tr.Statuses()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after reset: %v, want %v", got, want)
		}
	}
}

func TestTrackerExhausted(t *testing.T) {
	tr := NewTracker(2, 1, true)
	if !tr.AtEnd() {
		t.Error("expected cursor at end")
	}
	tr.MoveTo(2)
	if !tr.Exhausted() {
		t.Error("expected exhausted")
	}
	if n := countStatus(tr.Statuses(), Current); n != 0 {
		t.Errorf("exhausted set should have no current, got %d", n)
	}
}
