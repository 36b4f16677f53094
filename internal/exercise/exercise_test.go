package exercise

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/api/apitest"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
	"github.com/takallem/takallem/internal/progression"
)

const (
	putIncModule    = "PUT /user-course-progress/curr-module/increment/{id}"
	putIncCounter   = "PUT /user-course-progress/problem-counter/increment/{id}"
	putClearCounter = "PUT /user-course-progress/problem-counter/clear/{id}"
	putIncSet       = "PUT /user-course-progress/current-vocab-problem-set/increment"
	putClearSet     = "PUT /user-course-progress/current-vocab-problem-set/clear/{id}"
	putCovered      = "PUT /user-course-progress/covered-words"
	putClearCovered = "PUT /user-course-progress/covered-words/clear/{id}"
)

var (
	pngFile = media.File{Name: "mine.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nuser")}
	wavFile = media.File{Name: "take.wav", ContentType: "audio/wave", Data: []byte("RIFF\x00\x00\x00\x00WAVEfmt ")}
)

type fixture struct {
	srv    *apitest.Server
	client *api.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	c, err := api.New(srv.URL, api.WithToken(apitest.Token))
	require.NoError(t, err)
	return &fixture{srv: srv, client: c}
}

// env seeds progress on the fake service and returns an Env for module.
func (f *fixture) env(p course.CourseProgress, module int) Env {
	if p.ID == 0 {
		p.ID = 7
	}
	if p.CourseName == "" {
		p.CourseName = course.CourseBeginnerArabic
	}
	if p.Language == "" {
		p.Language = course.LanguageArabic
	}
	p = f.srv.AddProgress(p)
	return Env{
		Service:        f.client,
		User:           f.srv.CurrentUser(),
		Progress:       p,
		ModuleNumber:   module,
		MaxUploadBytes: 1 << 20,
	}
}

func recognitionSet(n int) *course.Resource {
	r := &course.Resource{ID: 30, Type: course.LetterRecognitionProblemSet, ProblemCount: n}
	for i := 0; i < n; i++ {
		r.Problems = append(r.Problems, course.Problem{
			ID:            i + 1,
			PartialWord:   "ـب",
			AnswerChoices: []string{"ب", "ت", "ث"},
			CorrectAnswer: "ب",
		})
	}
	return r
}

func TestRoute(t *testing.T) {
	tests := []struct {
		typ  course.ResourceType
		want Kind
	}{
		{course.InfoLecture, KindLecture},
		{course.LetterSpeakingLecture, KindLecture},
		{course.LetterWritingLecture, KindLecture},
		{course.VocabLecture, KindLecture},
		{course.DialectSelection, KindDialect},
		{course.LetterRecognitionProblemSet, KindChoice},
		{course.DiscriminationProblemSet, KindChoice},
		{course.ReadingComprehensionMCQ, KindChoice},
		{course.VocabReadingProblemSets, KindVocabChoice},
		{course.VocabListeningProblemSets, KindVocabChoice},
		{course.LetterPronunciationProblem, KindUpload},
		{course.WordPronunciationProblemSet, KindUpload},
		{course.LetterWritingProblemSet, KindUpload},
		{course.LetterJoiningProblemSet, KindUpload},
		{course.DictationProblemSet, KindUpload},
		{course.VocabSpeakingProblemSets, KindUpload},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, err := Route(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForResourceUnknownType(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 1}, 1)
	for _, typ := range []course.ResourceType{
		course.ReadingComprehensionWriting, course.UnitTest, course.FinalExam, "Karaoke Problem Set",
	} {
		_, err := ForResource(&course.Resource{ID: 1, Type: typ}, env)
		assert.ErrorIs(t, err, ErrUnknownResourceType, typ)
		assert.Contains(t, err.Error(), string(typ))
	}
	assert.Empty(t, f.srv.Calls())
}

func TestForResourceBuildsEveryKind(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 1, CurrentVocabProblemSet: 1}, 1)

	ctrl, err := ForResource(recognitionSet(3), env)
	require.NoError(t, err)
	assert.IsType(t, &Choice{}, ctrl)

	ctrl, err = ForResource(&course.Resource{Type: course.InfoLecture, Content: []string{"a"}}, env)
	require.NoError(t, err)
	assert.IsType(t, &Lecture{}, ctrl)

	ctrl, err = ForResource(&course.Resource{Type: course.DialectSelection}, env)
	require.NoError(t, err)
	assert.IsType(t, &DialectPick{}, ctrl)

	ctrl, err = ForResource(vocabResource(), env)
	require.NoError(t, err)
	assert.IsType(t, &VocabChoice{}, ctrl)

	ctrl, err = ForResource(&course.Resource{Type: course.DictationProblemSet, Problems: []course.Problem{{Word: "بيت"}}}, env)
	require.NoError(t, err)
	assert.IsType(t, &Upload{}, ctrl)
	assert.Equal(t, KindUpload, ctrl.Kind())
}

// Five problems, 0-3 right first time, 4 wrong then right.
func TestChoiceScenarioFrontier(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 3}, 3)
	c := NewChoice(recognitionSet(5), env)
	require.NoError(t, c.Ready())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		ok, err := c.Answer("ب")
		require.NoError(t, err)
		assert.True(t, ok)
		out, err := c.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, progression.OutcomeNextProblem, out)
		assert.Equal(t, i+1, c.Index())
	}

	ok, err := c.Answer("ت")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.Complete())

	ok, err = c.Answer("ب")
	require.NoError(t, err)
	assert.True(t, ok)

	want := []progression.Status{progression.Correct, progression.Correct, progression.Correct, progression.Correct, progression.Correct}
	assert.Equal(t, want, c.Statuses())
	assert.True(t, c.Complete())

	out, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)

	routes := f.srv.Routes()
	require.Len(t, routes, 6)
	assert.Equal(t, []string{putClearCounter, putIncModule}, routes[4:])

	p, _ := f.srv.ProgressOf(7)
	assert.Equal(t, 4, p.CurrModule)
	assert.Equal(t, 0, p.ProblemCounter)
	assert.Equal(t, p, c.Progress())
}

func TestChoiceRevisitDoesNotAdvanceModule(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 9}, 3)
	c := NewChoice(recognitionSet(2), env)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Answer("ب")
		require.NoError(t, err)
		_, err = c.Next(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{putIncCounter, putClearCounter}, f.srv.Routes())
	p, _ := f.srv.ProgressOf(7)
	assert.Equal(t, 9, p.CurrModule)
}

func TestChoiceRestartsIncompleteSet(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 3}, 3)
	c := NewChoice(recognitionSet(2), env)
	ctx := context.Background()

	_, err := c.Answer("ت")
	require.NoError(t, err)
	_, err = c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Answer("ب")
	require.NoError(t, err)

	out, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeRestartSet, out)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, []progression.Status{progression.Current, progression.Unanswered}, c.Statuses())
	assert.Empty(t, c.Selected())
	assert.Equal(t, []string{putIncCounter, putClearCounter}, f.srv.Routes())
}

func TestChoiceNeedsAnswer(t *testing.T) {
	f := newFixture(t)
	c := NewChoice(recognitionSet(2), f.env(course.CourseProgress{CurrModule: 1}, 1))

	_, err := c.Next(context.Background())
	assert.ErrorIs(t, err, ErrUnanswered)

	_, err = c.Answer("ج")
	assert.Error(t, err)

	_, err = c.Answer("ب")
	require.NoError(t, err)
	_, err = c.Answer("ت")
	assert.ErrorIs(t, err, ErrAnswered)
	assert.Empty(t, f.srv.Calls())
}

func TestChoiceOutOfBoundsShowsLoading(t *testing.T) {
	f := newFixture(t)
	c := NewChoice(recognitionSet(3), f.env(course.CourseProgress{CurrModule: 1, ProblemCounter: 5}, 1))

	assert.ErrorIs(t, c.Ready(), progression.ErrOutOfBounds)
	_, ok := c.Current()
	assert.False(t, ok)
	_, err := c.Answer("ب")
	assert.ErrorIs(t, err, progression.ErrOutOfBounds)
	_, err = c.Next(context.Background())
	assert.ErrorIs(t, err, progression.ErrOutOfBounds)
	assert.Empty(t, f.srv.Calls())
}

func TestChoiceResumesAtCounter(t *testing.T) {
	f := newFixture(t)
	c := NewChoice(recognitionSet(4), f.env(course.CourseProgress{CurrModule: 1, ProblemCounter: 2}, 1))

	assert.Equal(t, 2, c.Index())
	assert.Equal(t, []progression.Status{progression.Unanswered, progression.Unanswered, progression.Current, progression.Unanswered}, c.Statuses())
}

func TestChoiceStopsAtFailedStep(t *testing.T) {
	f := newFixture(t)
	f.srv.FailOn("/user-course-progress/curr-module/increment/{id}", http.StatusInternalServerError, "db down")
	env := f.env(course.CourseProgress{CurrModule: 2, ProblemCounter: 0}, 2)
	c := NewChoice(recognitionSet(1), env)

	_, err := c.Answer("ب")
	require.NoError(t, err)
	out, err := c.Next(context.Background())

	var stepErr *progression.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, progression.OpIncrementModule, stepErr.Step.Op)
	assert.Equal(t, progression.OutcomeStay, out)
	assert.Contains(t, err.Error(), "db down")

	// The clear went through and is kept.
	assert.Equal(t, 0, c.Progress().ProblemCounter)
	assert.Equal(t, 2, c.Progress().CurrModule)
	assert.False(t, c.Busy())
}

func TestLecturePagesThenAdvances(t *testing.T) {
	f := newFixture(t)
	r := &course.Resource{ID: 5, Type: course.InfoLecture, Content: []string{"one", "two", "three"}}
	l := NewLecture(r, f.env(course.CourseProgress{CurrModule: 1}, 1))
	ctx := context.Background()

	require.Len(t, l.Pages(), 3)
	for i := 0; i < 2; i++ {
		out, err := l.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, progression.OutcomeNextProblem, out)
	}
	assert.Empty(t, f.srv.Calls())
	l.Prev()
	_, idx := l.Page()
	assert.Equal(t, 1, idx)
	_, _ = l.Next(ctx)

	out, err := l.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)
	assert.Equal(t, []string{putIncModule}, f.srv.Routes())
	assert.Equal(t, 2, l.Progress().CurrModule)
}

func TestLectureRevisit(t *testing.T) {
	f := newFixture(t)
	r := &course.Resource{ID: 5, Type: course.LetterSpeakingLecture, Letter: "ع",
		Content: []string{"From the throat"}, LetterAudio: "/media/ain.mp3", WordAudios: []string{"/media/arab.mp3"}}
	l := NewLecture(r, f.env(course.CourseProgress{CurrModule: 4}, 1))

	page, _ := l.Page()
	assert.Equal(t, "ع", page.Title)
	assert.Equal(t, []string{"/media/ain.mp3", "/media/arab.mp3"}, page.Media)

	out, err := l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)
	assert.Empty(t, f.srv.Calls())
}

func TestVocabLecturePages(t *testing.T) {
	r := &course.Resource{Type: course.VocabLecture, VocabWords: []course.VocabWord{
		{Word: "kitab", Meaning: "book", VocabAudio: "/media/kitab.mp3"},
		{Word: "qalam", Meaning: "pen"},
	}}
	pages := lecturePages(r)
	require.Len(t, pages, 2)
	assert.Equal(t, "kitab", pages[0].Title)
	assert.Equal(t, []string{"/media/kitab.mp3"}, pages[0].Media)
	assert.Nil(t, pages[1].Media)

	assert.Len(t, lecturePages(&course.Resource{Type: course.InfoLecture}), 1, "empty lectures still have a page")
}

func TestDialectPick(t *testing.T) {
	f := newFixture(t)
	r := &course.Resource{Type: course.DialectSelection, Dialects: []course.DialectOption{
		{ID: 1, Dialect: course.DialectLevantine}, {ID: 2, Dialect: course.DialectEgyptian},
	}}
	d := NewDialectPick(r, f.env(course.CourseProgress{CurrModule: 2}, 2))
	require.True(t, d.Frontier())
	require.Len(t, d.Options(), 2)

	out, err := d.Choose(context.Background(), course.DialectEgyptian)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)
	assert.Equal(t, []string{
		putIncModule,
		"PUT /user/current-dialect/{dialect}",
		"PUT /user-course-progress/dialect",
	}, f.srv.Routes())

	p := d.Progress()
	assert.Equal(t, 3, p.CurrModule)
	assert.Equal(t, course.DialectEgyptian, p.DialectOrDefault())
	u, ok := d.User()
	require.True(t, ok)
	assert.Equal(t, course.DialectEgyptian, *u.CurrentDialect)
}

func TestDialectPickOffFrontier(t *testing.T) {
	f := newFixture(t)
	r := &course.Resource{Type: course.DialectSelection}
	d := NewDialectPick(r, f.env(course.CourseProgress{CurrModule: 8}, 2))

	out, err := d.Choose(context.Background(), course.DialectEgyptian)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)
	assert.Empty(t, f.srv.Calls())
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
