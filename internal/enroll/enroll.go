// Package enroll runs the one-shot mutation chains for choosing a course and
// choosing a dialect. Each step waits for the previous one and a failure stops
// the chain; steps that already succeeded are not rolled back.
package enroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/progression"
)

// ErrNotFrontier is returned by SelectDialect when the dialect module has
// already been passed. No calls are made; the caller just goes home.
var ErrNotFrontier = errors.New("dialect already chosen for this course")

// Service is the part of the remote API the chains use.
type Service interface {
	SetCurrentCourse(ctx context.Context, name course.CourseName) (*course.User, error)
	AddLanguageLearning(ctx context.Context, lang course.Language) (*course.User, error)
	CreateProgress(ctx context.Context, req api.CreateProgressRequest) (course.CourseProgress, error)
	IncrementModule(ctx context.Context, progressID int) (course.CourseProgress, error)
	SetCurrentDialect(ctx context.Context, d course.Dialect) (*course.User, error)
	SetProgressDialect(ctx context.Context, progressID int, name course.CourseName, d course.Dialect) (course.CourseProgress, error)
}

var _ Service = (*api.Client)(nil)

// Step names one call of a chain.
type Step int

const (
	StepSetCourse Step = iota + 1
	StepAddLanguage
	StepCreateProgress
	StepIncrementModule
	StepSetUserDialect
	StepSetProgressDialect
)

func (s Step) String() string {
	switch s {
	case StepSetCourse:
		return "set current course"
	case StepAddLanguage:
		return "add language"
	case StepCreateProgress:
		return "create progress"
	case StepIncrementModule:
		return "increment module"
	case StepSetUserDialect:
		return "set current dialect"
	case StepSetProgressDialect:
		return "set progress dialect"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ChainError reports the step that stopped a chain.
type ChainError struct {
	Step Step
	Err  error
}

func (e *ChainError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *ChainError) Unwrap() error { return e.Err }

// Result holds whatever the chain got back before it finished or stopped.
// Nil fields were not reached.
type Result struct {
	User     *course.User
	Progress *course.CourseProgress

	// Completed lists the steps that succeeded, in order.
	Completed []Step
}

// SelectCourse enrolls userID in c: set the current course, add the course
// language to the user's list, then create the progress record.
func SelectCourse(ctx context.Context, svc Service, userID int, c course.Course) (Result, error) {
	var res Result

	u, err := svc.SetCurrentCourse(ctx, c.CourseName)
	if err != nil {
		return res, &ChainError{Step: StepSetCourse, Err: err}
	}
	res.User = u
	res.Completed = append(res.Completed, StepSetCourse)

	u, err = svc.AddLanguageLearning(ctx, c.Language)
	if err != nil {
		return res, &ChainError{Step: StepAddLanguage, Err: err}
	}
	res.User = u
	res.Completed = append(res.Completed, StepAddLanguage)

	p, err := svc.CreateProgress(ctx, api.CreateProgressRequest{
		UserID:         userID,
		Course:         c.CourseName,
		DefaultDialect: c.DefaultDialect,
		TotalModules:   c.TotalModules,
	})
	if err != nil {
		return res, &ChainError{Step: StepCreateProgress, Err: err}
	}
	res.Progress = &p
	res.Completed = append(res.Completed, StepCreateProgress)
	return res, nil
}

// SelectDialect records d for the course in progress. It only runs from the
// frontier: the module is passed first, then the user's dialect and the
// progress dialect are set.
func SelectDialect(ctx context.Context, svc Service, p course.CourseProgress, moduleNumber int, d course.Dialect) (Result, error) {
	var res Result
	if !progression.IsFrontier(p, moduleNumber) {
		return res, ErrNotFrontier
	}
	if d == "" {
		return res, errors.New("no dialect selected")
	}

	next, err := svc.IncrementModule(ctx, p.ID)
	if err != nil {
		return res, &ChainError{Step: StepIncrementModule, Err: err}
	}
	res.Progress = &next
	res.Completed = append(res.Completed, StepIncrementModule)

	u, err := svc.SetCurrentDialect(ctx, d)
	if err != nil {
		return res, &ChainError{Step: StepSetUserDialect, Err: err}
	}
	res.User = u
	res.Completed = append(res.Completed, StepSetUserDialect)

	next, err = svc.SetProgressDialect(ctx, p.ID, p.CourseName, d)
	if err != nil {
		return res, &ChainError{Step: StepSetProgressDialect, Err: err}
	}
	res.Progress = &next
	res.Completed = append(res.Completed, StepSetProgressDialect)
	return res, nil
}
