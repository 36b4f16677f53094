package exercise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/progression"
)

func vocabProblem(word, meaning string) course.Problem {
	return course.Problem{
		VocabWord:     &course.VocabWord{Word: word, Meaning: meaning},
		AnswerChoices: []string{"kitab", "qalam", "bayt", "shams"},
	}
}

// Two batches of two problems; the exercise needs four distinct words.
func vocabResource() *course.Resource {
	return &course.Resource{
		ID:       40,
		Type:     course.VocabReadingProblemSets,
		SetLimit: 2,
		ProblemSets: []course.ProblemSet{
			{ID: 1, SetNumber: 1, SetLimit: 2, ProblemCount: 2, Problems: []course.Problem{
				vocabProblem("kitab", "book"), vocabProblem("qalam", "pen"),
			}},
			{ID: 2, SetNumber: 2, SetLimit: 2, ProblemCount: 2, Problems: []course.Problem{
				vocabProblem("bayt", "house"), vocabProblem("kitab", "book"),
			}},
		},
	}
}

func TestVocabDedup(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 2}, 5)
	v := NewVocabChoice(vocabResource(), env)
	require.NoError(t, v.Ready())
	ctx := context.Background()

	res, err := v.Answer(ctx, "bayt")
	require.NoError(t, err)
	assert.Equal(t, AnswerResult{Correct: true, Credited: true}, res)
	_, err = v.Next(ctx)
	require.NoError(t, err)

	// kitab is new here too.
	res, err = v.Answer(ctx, "kitab")
	require.NoError(t, err)
	assert.True(t, res.Credited)
	n, threshold := v.Credited()
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, threshold)

	// Back to batch 1 via wraparound; kitab is already covered.
	out, err := v.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeNextBatch, out)
	assert.Equal(t, 1, v.Batch().SetNumber)

	res, err = v.Answer(ctx, "kitab")
	require.NoError(t, err)
	assert.Equal(t, AnswerResult{Correct: true, Credited: false}, res)
	n, _ = v.Credited()
	assert.Equal(t, 2, n, "a repeated word is not counted twice")

	assert.Equal(t, []string{
		putCovered, putIncCounter,
		putCovered, putIncCounter,
		putIncSet,
		putCovered,
	}, f.srv.Routes())
}

func TestVocabWrongAnswerCreditsNothing(t *testing.T) {
	f := newFixture(t)
	v := NewVocabChoice(vocabResource(), f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 1}, 5))

	res, err := v.Answer(context.Background(), "shams")
	require.NoError(t, err)
	assert.Equal(t, AnswerResult{}, res)
	assert.Equal(t, progression.Incorrect, v.Statuses()[0])
	assert.Empty(t, f.srv.Calls())

	_, err = v.Answer(context.Background(), "kitab")
	assert.ErrorIs(t, err, ErrAnswered)
}

func TestVocabRotationWraps(t *testing.T) {
	f := newFixture(t)
	v := NewVocabChoice(vocabResource(), f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 1}, 5))
	ctx := context.Background()

	sets := []int{}
	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			_, err := v.Answer(ctx, "shams")
			require.NoError(t, err)
			_, err = v.Next(ctx)
			require.NoError(t, err)
		}
		sets = append(sets, v.Progress().CurrentVocabProblemSet)
	}
	assert.Equal(t, []int{2, 1, 2, 1}, sets)
	assert.False(t, v.Complete())
}

func TestVocabThresholdCompletes(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{
		CurrModule:             5,
		CurrentVocabProblemSet: 1,
		ProblemCounter:         3,
		CoveredWords:           map[string]int{"bayt": 1, "shams": 1, "qamar": 1},
	}, 5)
	v := NewVocabChoice(vocabResource(), env)
	ctx := context.Background()

	_, err := v.Answer(ctx, "kitab")
	require.NoError(t, err)
	assert.True(t, v.Complete())

	out, err := v.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeNextProblem, out, "mid-batch only moves the cursor")

	// At the threshold a new word is added but not counted.
	res, err := v.Answer(ctx, "qalam")
	require.NoError(t, err)
	assert.True(t, res.Credited)
	n, threshold := v.Credited()
	assert.Equal(t, threshold, n)

	out, err = v.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.OutcomeHome, out)

	assert.Equal(t, []string{
		putCovered, putIncCounter,
		putCovered,
		putClearCounter, putClearCovered, putClearSet, putIncModule,
	}, f.srv.Routes())

	p, _ := f.srv.ProgressOf(7)
	assert.Equal(t, 6, p.CurrModule)
	assert.Equal(t, 0, p.ProblemCounter)
	assert.Equal(t, 1, p.CurrentVocabProblemSet)
	assert.Empty(t, p.CoveredWords)
}

func TestVocabThresholdSameForUnevenBatches(t *testing.T) {
	r := vocabResource()
	r.ProblemSets[1].ProblemCount = 3
	r.ProblemSets[1].Problems = append(r.ProblemSets[1].Problems, vocabProblem("shams", "sun"))

	f := newFixture(t)
	for _, set := range []int{1, 2} {
		v := NewVocabChoice(r, f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: set}, 5))
		_, threshold := v.Credited()
		assert.Equal(t, 4, threshold, "batch %d", set)
	}

	r.ProblemCount = 5
	v := NewVocabChoice(r, f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 2}, 5))
	_, threshold := v.Credited()
	assert.Equal(t, 10, threshold, "the resource count wins")
}

func TestVocabThresholdOffFrontier(t *testing.T) {
	f := newFixture(t)
	env := f.env(course.CourseProgress{CurrModule: 9, CurrentVocabProblemSet: 1, ProblemCounter: 4}, 5)
	v := NewVocabChoice(vocabResource(), env)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := v.Answer(ctx, "shams")
		require.NoError(t, err)
		_, err = v.Next(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{putClearCounter, putClearCovered, putClearSet}, f.srv.Routes())
}

func TestVocabBatchOutOfRange(t *testing.T) {
	f := newFixture(t)
	v := NewVocabChoice(vocabResource(), f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 3}, 5))

	assert.ErrorIs(t, v.Ready(), progression.ErrOutOfBounds)
	_, ok := v.Current()
	assert.False(t, ok)
	_, err := v.Next(context.Background())
	assert.ErrorIs(t, err, progression.ErrOutOfBounds)
}

func TestVocabNeedsAnswer(t *testing.T) {
	f := newFixture(t)
	v := NewVocabChoice(vocabResource(), f.env(course.CourseProgress{CurrModule: 5, CurrentVocabProblemSet: 1}, 5))
	_, err := v.Next(context.Background())
	assert.ErrorIs(t, err, ErrUnanswered)
}
