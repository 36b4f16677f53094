package module

import (
	"time"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/exercise"
	"github.com/takallem/takallem/internal/progression"
)

// resourceLoadedMsg is sent when the module's resource has been fetched.
type resourceLoadedMsg struct {
	Resource *course.Resource
	Err      error
}

// advancedMsg is sent when Next (or a dialect choice) has finished.
type advancedMsg struct {
	Outcome progression.Outcome
	Err     error
}

// vocabAnsweredMsg is sent when a vocab answer has been checked and, if
// correct, credited.
type vocabAnsweredMsg struct {
	Choice int
	Result exercise.AnswerResult
	Err    error
}

// gradedMsg is sent when an upload has been graded.
type gradedMsg struct {
	Result *api.GradeResult
	Err    error
}

// explainedMsg carries the tutor's answer to a follow-up question.
type explainedMsg struct {
	Answer string
	Err    error
}

// spinnerTickMsg animates the busy indicator.
// leftMsg is sent when the progress saved on leave has been recorded.
type leftMsg struct {
	Err error
}

type spinnerTickMsg time.Time
