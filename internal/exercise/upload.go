package exercise

import (
	"context"
	"errors"
	"fmt"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
	"github.com/takallem/takallem/internal/progression"
)

// Upload drives the graded kinds where the learner submits a photo of their
// handwriting or a recording. Next is gated on passing the current problem.
type Upload struct {
	fixedSet
	resource *course.Resource
	env      Env
	grade    api.GradeKind
	problems []course.Problem

	result   *api.GradeResult
	sub      api.Submission
	feedback []string
}

var _ Controller = (*Upload)(nil)

// NewUpload builds an Upload controller. Vocab speaking picks its batch by
// the progress dialect and the learner's gender.
func NewUpload(r *course.Resource, env Env) (*Upload, error) {
	u := &Upload{resource: r, env: env}

	strategy := progression.Strategy(progression.FixedSet{})
	switch r.Type {
	case course.LetterWritingProblemSet:
		u.grade, u.problems = api.GradeLetterWriting, r.Problems
	case course.LetterJoiningProblemSet:
		u.grade, u.problems = api.GradeLetterJoining, r.Problems
	case course.DictationProblemSet:
		u.grade, u.problems = api.GradeDictation, r.Problems
	case course.WordPronunciationProblemSet:
		u.grade, u.problems = api.GradeWordPronunciation, r.Problems
	case course.LetterPronunciationProblem:
		u.grade = api.GradeLetterPronunciation
		u.problems = []course.Problem{{
			ID:        r.ID,
			Question:  r.Question,
			Letter:    r.Letter,
			WordAudio: r.LetterAudio,
		}}
		strategy = progression.FrontierOnly{RequirePass: true}
	case course.VocabSpeakingProblemSets:
		u.grade = api.GradeSpeaking
		set, ok := r.SpeakingSet(env.Progress.DialectOrDefault(), env.User.Gender)
		if ok {
			u.problems = set.Problems
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownResourceType, r.Type)
	}

	if _, single := strategy.(progression.FrontierOnly); single {
		u.fixedSet = fixedSet{
			machine: progression.NewMachine(env.Service, strategy, env.Progress, env.ModuleNumber),
			tracker: progression.NewTracker(1, 0, false),
			gated:   true,
		}
		return u, nil
	}
	u.fixedSet = newFixedSet(env, strategy, len(u.problems), true)
	if r.Type == course.VocabSpeakingProblemSets && len(u.problems) == 0 {
		u.ready = fmt.Errorf("%w: no speaking set for %s", progression.ErrOutOfBounds, env.Progress.DialectOrDefault())
	}
	return u, nil
}

func (u *Upload) Kind() Kind { return KindUpload }
func (u *Upload) Resource() *course.Resource { return u.resource }

// GradeKind returns the grading endpoint family.
func (u *Upload) GradeKind() api.GradeKind { return u.grade }

// Expects returns the kind of file the learner has to provide.
func (u *Upload) Expects() media.Kind { return u.grade.Upload() }

// Current returns the problem under the cursor.
func (u *Upload) Current() (course.Problem, bool) {
	if u.ready != nil || u.tracker.Exhausted() {
		return course.Problem{}, false
	}
	return u.problems[u.tracker.Index()], true
}

// Result returns the last grading result for the current problem.
func (u *Upload) Result() *api.GradeResult { return u.result }

// Feedback returns the feedback shown so far for the current problem, oldest
// first, including explain answers.
func (u *Upload) Feedback() []string { return append([]string(nil), u.feedback...) }

// SubmitFile loads path, checks it locally and submits it for grading.
func (u *Upload) SubmitFile(ctx context.Context, path string) (*api.GradeResult, error) {
	f, err := media.Load(path, u.Expects(), u.env.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return u.Submit(ctx, f)
}

// Submit grades f against the current problem. A pass marks the problem
// correct, a fail marks it incorrect, and a retake advisory leaves it as is.
func (u *Upload) Submit(ctx context.Context, f media.File) (*api.GradeResult, error) {
	p, ok := u.Current()
	if !ok {
		return nil, u.ready
	}
	if !media.Accepts(u.Expects(), f.ContentType) {
		return nil, &media.ValidationError{Path: f.Name, Reason: fmt.Sprintf("expected %s, got %s", u.Expects(), f.ContentType)}
	}

	sub, err := u.submission(ctx, p)
	if err != nil {
		return nil, err
	}
	sub.Upload = f

	res, err := u.env.Service.Grade(ctx, sub)
	if err != nil {
		return nil, err
	}
	u.sub = sub
	u.result = res
	switch res.Kind {
	case api.ResultScored:
		u.tracker.Record(res.Passed())
		u.feedback = []string{res.Score.Message()}
	case api.ResultRetake:
		u.feedback = []string{res.Retake.CaptureTips}
	}
	return res, nil
}

// Explain asks the tutor a follow-up question about the last scored result.
func (u *Upload) Explain(ctx context.Context, query string) (string, error) {
	if u.result == nil || u.result.Kind != api.ResultScored {
		return "", errors.New("nothing to explain yet")
	}
	answer, err := u.env.Service.Explain(ctx, api.ExplainRequest{
		Submission: u.sub,
		Score:      u.result.Score,
		Query:      query,
		History:    u.Feedback(),
	})
	if err != nil {
		return "", err
	}
	u.feedback = append(u.feedback, answer)
	return answer, nil
}

// Next advances once the current problem has been passed.
func (u *Upload) Next(ctx context.Context) (progression.Outcome, error) {
	out, err := u.next(ctx)
	if err == nil && out != progression.OutcomeStay {
		u.result, u.feedback, u.sub = nil, nil, api.Submission{}
	}
	return out, err
}

// SavesOnLeave reports whether leaving now would record progress: a
// speaking set quit midway right after a pass.
func (u *Upload) SavesOnLeave() bool {
	if u.resource.Type != course.VocabSpeakingProblemSets || u.ready != nil {
		return false
	}
	i := u.tracker.Index()
	return i < u.tracker.Len()-1 && u.tracker.StatusAt(i) == progression.Correct
}

// Leave moves problem_counter past a passed problem so the set resumes on the
// next one. It does nothing unless SavesOnLeave holds.
func (u *Upload) Leave(ctx context.Context) error {
	if !u.SavesOnLeave() {
		return nil
	}
	_, err := u.Next(ctx)
	return err
}

func (u *Upload) submission(ctx context.Context, p course.Problem) (api.Submission, error) {
	prog := u.machine.Progress()
	sub := api.Submission{Kind: u.grade, Language: prog.Language}
	if prog.Dialect != nil {
		sub.Dialect = *prog.Dialect
	}

	switch u.grade {
	case api.GradeLetterWriting:
		sub.Letter = p.Letter
		if sub.Letter == "" {
			sub.Letter = p.Word
		}
		sub.Position = p.Position
		if p.ReferenceWriting == "" {
			return sub, &media.ValidationError{Reason: "reference image is missing", Err: media.ErrMissing}
		}
		ref, err := u.env.Service.FetchMedia(ctx, p.ReferenceWriting, u.env.MaxUploadBytes)
		if err != nil {
			return sub, fmt.Errorf("fetch reference image: %w", err)
		}
		sub.Reference = &ref
	case api.GradeLetterJoining:
		sub.LetterList = p.LetterList
		sub.TargetWord = p.Word
	case api.GradeDictation:
		sub.TargetWord = p.Word
	case api.GradeWordPronunciation:
		sub.Phrase = p.Word
	case api.GradeLetterPronunciation:
		sub.Letter = p.Letter
	case api.GradeSpeaking:
		sub.Question = p.Question
		sub.VocabWords = p.VocabWords
		sub.Dialect = prog.DialectOrDefault()
	}
	return sub, nil
}
