package api

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takallem/takallem/internal/api/apitest"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
)

var (
	pngFile = media.File{Name: "mine.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nuser")}
	refFile = media.File{Name: "ref.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nref")}
	wavFile = media.File{Name: "take.wav", ContentType: "audio/wav", Data: []byte("RIFF....WAVE")}
)

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ResultKind
		wantErr bool
	}{
		{"pass", `{"status":"pass","feedback":"Nice","mistake_tags":[]}`, ResultScored, false},
		{"fail with scores", `{"status":"fail","scores":{"overall":40},"feedback":"Dots"}`, ResultScored, false},
		{"retake", `{"capture_tips":"Use more light"}`, ResultRetake, false},
		{"status wins over tips", `{"status":"fail","capture_tips":"x"}`, ResultScored, false},
		{"neither", `{"feedback":"hm"}`, 0, true},
		{"not an object", `[1,2]`, 0, true},
		{"bad tags", `{"status":"pass","mistake_tags":"dots"}`, 0, true},
		{"invalid json", `{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ClassifyResult([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognizedResult)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind)
			switch res.Kind {
			case ResultScored:
				assert.NotNil(t, res.Score)
				assert.Nil(t, res.Retake)
			case ResultRetake:
				assert.NotNil(t, res.Retake)
				assert.Nil(t, res.Score)
				assert.False(t, res.Passed())
			}
		})
	}
}

func TestScoreMessage(t *testing.T) {
	text := "Tutor says hi"
	assert.Equal(t, "a", (&Score{Feedback: "a", FeedbackText: &text}).Message())
	assert.Equal(t, text, (&Score{FeedbackText: &text}).Message())
	assert.True(t, (&Score{Status: "PASS"}).Passed())
	assert.False(t, (&Score{Status: "fail"}).Passed())
}

func TestGradeLetterWriting(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)

	res, err := c.Grade(context.Background(), Submission{
		Kind:      GradeLetterWriting,
		Upload:    pngFile,
		Reference: &refFile,
		Language:  course.LanguageArabic,
		Dialect:   course.DialectMSA,
		Letter:    "ب",
		Position:  "Initial",
	})
	require.NoError(t, err)
	assert.True(t, res.Passed())

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	sub := subs[0]
	assert.Equal(t, "/writing/letter", sub.Route)
	assert.Equal(t, "ب", sub.Fields.Get("letter"))
	assert.Equal(t, "initial", sub.Fields.Get("position"))
	assert.Equal(t, "Arabic", sub.Fields.Get("language"))
	assert.Equal(t, "MSA", sub.Fields.Get("dialect"))

	fields := map[string]apitest.Upload{}
	for _, f := range sub.Files {
		fields[f.Field] = f
	}
	assert.Equal(t, "mine.png", fields["user_image"].Filename)
	assert.Equal(t, "image/png", fields["user_image"].ContentType)
	assert.Equal(t, "ref.png", fields["target_image"].Filename)
}

func TestGradeLetterWritingNeedsReference(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)

	_, err := c.Grade(context.Background(), Submission{Kind: GradeLetterWriting, Upload: pngFile})
	var verr *media.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, srv.Calls())
}

func TestGradeJoiningFields(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)

	_, err := c.Grade(context.Background(), Submission{
		Kind:       GradeLetterJoining,
		Upload:     pngFile,
		Language:   course.LanguageArabic,
		LetterList: []string{"ك", "ت", "ب"},
		TargetWord: "كتب",
	})
	require.NoError(t, err)

	sub := srv.Submissions()[0]
	assert.Equal(t, []string{"ك", "ت", "ب"}, sub.Fields["letter_list"])
	assert.Equal(t, "كتب", sub.Fields.Get("target_word"))
	_, hasDialect := sub.Fields["dialect"]
	assert.False(t, hasDialect, "an unset dialect is omitted")
}

func TestGradePronunciationFields(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.Grade(ctx, Submission{Kind: GradeWordPronunciation, Upload: wavFile,
		Language: course.LanguageArabic, Phrase: "مرحبا"})
	require.NoError(t, err)
	_, err = c.Grade(ctx, Submission{Kind: GradeLetterPronunciation, Upload: wavFile, Letter: "ع"})
	require.NoError(t, err)

	subs := srv.Submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, "true", subs[0].Fields.Get("isWord"))
	assert.Equal(t, "مرحبا", subs[0].Fields.Get("phrase"))
	assert.Equal(t, "user_audio", subs[0].Files[0].Field)

	assert.Equal(t, "/letter/pronounciation/letter/check", subs[1].Route)
	assert.Equal(t, "ع", subs[1].Fields.Get("letter"))
	_, hasLang := subs[1].Fields["language"]
	assert.False(t, hasLang)
}

func TestGradeRetake(t *testing.T) {
	srv := apitest.New(t)
	srv.QueueGrade(`{"capture_tips":"Hold the camera flat"}`)
	c := newClient(t, srv)

	res, err := c.Grade(context.Background(), Submission{Kind: GradeDictation, Upload: pngFile, TargetWord: "بيت"})
	require.NoError(t, err)
	assert.Equal(t, ResultRetake, res.Kind)
	assert.Equal(t, "Hold the camera flat", res.Retake.CaptureTips)
	assert.False(t, res.Passed())
}

func TestGradeUnrecognized(t *testing.T) {
	srv := apitest.New(t)
	srv.QueueGrade(`{"verdict":"ok"}`)
	c := newClient(t, srv)

	_, err := c.Grade(context.Background(), Submission{Kind: GradeDictation, Upload: pngFile})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, errors.Is(err, ErrUnrecognizedResult))
}

func TestGradeSpeakingSendsJSON(t *testing.T) {
	srv := apitest.New(t)
	srv.QueueGrade(`{"status":"pass","transcription":"ana bikhair","feedback_text":"Great answer",
		"feedback_audio_base64":null,"pronounciation_scores":{"overall":88},
		"semantic_evaluation":{"answer_makes_sense":true}}`)
	c := newClient(t, srv)

	res, err := c.Grade(context.Background(), Submission{
		Kind:       GradeSpeaking,
		Upload:     wavFile,
		Language:   course.LanguageArabic,
		Dialect:    course.DialectLevantine,
		Question:   "Kifak?",
		VocabWords: []course.VocabWord{{ID: 1, Word: "mniih", Meaning: "good"}},
	})
	require.NoError(t, err)
	require.Equal(t, ResultScored, res.Kind)
	assert.Equal(t, "Great answer", res.Score.Message())
	assert.Equal(t, 88.0, res.Score.PronunciationScores["overall"])

	sub := srv.Submissions()[0]
	require.NotNil(t, sub.JSON)
	assert.Equal(t, "Kifak?", sub.JSON["question"])
	assert.Equal(t, "Levantine", sub.JSON["dialect"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(wavFile.Data), sub.JSON["user_audio_base64"])
}

func TestExplain(t *testing.T) {
	srv := apitest.New(t)
	srv.QueueExplanation("Close the loop of the letter.")
	c := newClient(t, srv)

	sub := Submission{Kind: GradeLetterWriting, Language: course.LanguageArabic, Letter: "ه", Position: "Final"}
	score := &Score{Status: "fail", Feedback: "Loop is open", MistakeTags: []string{"shape"}}

	answer, err := c.Explain(context.Background(), ExplainRequest{
		Submission: sub,
		Score:      score,
		Query:      "What did I miss?",
		History:    []string{"Loop is open"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Close the loop of the letter.", answer)

	bodies := srv.Explains()
	require.Len(t, bodies, 1)
	assert.Equal(t, "What did I miss?", bodies[0]["query"])
	assert.Equal(t, "final", bodies[0]["position"])
	assert.Equal(t, []any{"Loop is open"}, bodies[0]["previous_feedback"])
	assert.Equal(t, []string{"POST /writing/letter/explain"}, srv.Routes())
}

func TestExplainSpeakingResponseText(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)

	answer, err := c.Explain(context.Background(), ExplainRequest{
		Submission: Submission{Kind: GradeSpeaking, Question: "Shu ismak?"},
		Score:      &Score{Status: "pass"},
		Query:      "How else could I answer?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}

func TestExplainValidation(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv)

	_, err := c.Explain(context.Background(), ExplainRequest{
		Submission: Submission{Kind: GradeDictation}, Score: &Score{Status: "pass"}, Query: "  ",
	})
	assert.Error(t, err)
	_, err = c.Explain(context.Background(), ExplainRequest{
		Submission: Submission{Kind: GradeDictation}, Query: "why?",
	})
	assert.Error(t, err)
	assert.Empty(t, srv.Calls())
}

func TestGradeKindRoutes(t *testing.T) {
	for _, k := range []GradeKind{GradeLetterWriting, GradeLetterJoining, GradeDictation,
		GradeWordPronunciation, GradeLetterPronunciation, GradeSpeaking} {
		assert.NotEmpty(t, k.Route(), k.String())
		assert.NotEmpty(t, k.ExplainRoute(), k.String())
	}
	assert.Equal(t, media.Image, GradeDictation.Upload())
	assert.Equal(t, media.Audio, GradeSpeaking.Upload())
}
