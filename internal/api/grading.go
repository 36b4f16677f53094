package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/media"
)

// GradeKind selects a grading endpoint.
type GradeKind int

const (
	GradeLetterWriting GradeKind = iota + 1
	GradeLetterJoining
	GradeDictation
	GradeWordPronunciation
	GradeLetterPronunciation
	GradeSpeaking
)

func (k GradeKind) String() string {
	switch k {
	case GradeLetterWriting:
		return "letter-writing"
	case GradeLetterJoining:
		return "letter-joining"
	case GradeDictation:
		return "dictation"
	case GradeWordPronunciation:
		return "word-pronunciation"
	case GradeLetterPronunciation:
		return "letter-pronunciation"
	case GradeSpeaking:
		return "speaking"
	default:
		return fmt.Sprintf("grade(%d)", int(k))
	}
}

// Route returns the grading endpoint for k.
func (k GradeKind) Route() string {
	switch k {
	case GradeLetterWriting:
		return "/writing/letter"
	case GradeLetterJoining:
		return "/writing/joining"
	case GradeDictation:
		return "/writing/dictation"
	case GradeWordPronunciation:
		return "/pronounciation/check"
	case GradeLetterPronunciation:
		return "/letter/pronounciation/letter/check"
	case GradeSpeaking:
		return "/speaking/generate-response"
	}
	return ""
}

// ExplainRoute returns the follow-up question endpoint for k.
func (k GradeKind) ExplainRoute() string {
	switch k {
	case GradeLetterWriting:
		return "/writing/letter/explain"
	case GradeLetterJoining:
		return "/writing/joining/explain"
	case GradeDictation:
		return "/writing/dictation/explain"
	case GradeWordPronunciation:
		return "/pronounciation/explain"
	case GradeLetterPronunciation:
		return "/letter/pronounciation/letter/explain"
	case GradeSpeaking:
		return "/speaking/explain"
	}
	return ""
}

// Upload reports what the learner has to provide for k.
func (k GradeKind) Upload() media.Kind {
	switch k {
	case GradeLetterWriting, GradeLetterJoining, GradeDictation:
		return media.Image
	}
	return media.Audio
}

// Submission is one graded answer.
type Submission struct {
	Kind     GradeKind
	Upload   media.File
	Language course.Language
	Dialect  course.Dialect

	Letter     string
	Position   string
	Reference  *media.File // target image for letter writing
	LetterList []string
	TargetWord string
	Phrase     string

	Question   string
	VocabWords []course.VocabWord
}

// ResultKind discriminates GradeResult.
type ResultKind int

const (
	ResultScored ResultKind = iota + 1
	ResultRetake
)

// GradeResult is either a Score or a Retake advisory. The service tells them
// apart only by shape, so the shape is checked here once.
type GradeResult struct {
	Kind   ResultKind
	Score  *Score
	Retake *Retake
}

// Passed reports whether the submission was scored as a pass.
func (r *GradeResult) Passed() bool {
	return r != nil && r.Kind == ResultScored && r.Score.Passed()
}

// Score is a graded submission.
type Score struct {
	Status                string             `json:"status"`
	Scores                map[string]float64 `json:"scores,omitempty"`
	Feedback              string             `json:"feedback,omitempty"`
	FeedbackText          *string            `json:"feedback_text,omitempty"`
	FeedbackAudioBase64   *string            `json:"feedback_audio_base64,omitempty"`
	MistakeTags           []string           `json:"mistake_tags,omitempty"`
	PerformanceReflection string             `json:"performance_reflection,omitempty"`
	Transcription         string             `json:"transcription,omitempty"`
	DetectedWord          string             `json:"detected_word,omitempty"`
	PronunciationScores   map[string]float64 `json:"pronounciation_scores,omitempty"`
	SemanticEvaluation    json.RawMessage    `json:"semantic_evaluation,omitempty"`
}

// Passed reports a "pass" status.
func (s *Score) Passed() bool { return s != nil && strings.EqualFold(s.Status, "pass") }

// Message returns the tutor's feedback text.
func (s *Score) Message() string {
	if s.Feedback != "" {
		return s.Feedback
	}
	if s.FeedbackText != nil {
		return *s.FeedbackText
	}
	return ""
}

// Retake asks the learner to photograph their writing again.
type Retake struct {
	CaptureTips string `json:"capture_tips"`
}

var resultSchemas = map[ResultKind]string{
	ResultRetake: `{
		"type": "object",
		"required": ["capture_tips"],
		"properties": {"capture_tips": {"type": "string"}},
		"not": {"required": ["status"]}
	}`,
	ResultScored: `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string"},
			"mistake_tags": {"type": ["array", "null"], "items": {"type": "string"}}
		}
	}`,
}

// schemaCache caches compiled result schemas by kind.
var schemaCache sync.Map // map[ResultKind]*jsonschema.Schema

func compiledSchema(kind ResultKind) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(kind); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var def any
	if err := json.Unmarshal([]byte(resultSchemas[kind]), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://grade-result-%d.json", kind)
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(kind, compiled)
	return compiled, nil
}

// ClassifyResult decodes a grading response body into a tagged GradeResult.
func ClassifyResult(raw []byte) (*GradeResult, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrUnrecognizedResult, err)
	}

	for _, kind := range []ResultKind{ResultRetake, ResultScored} {
		schema, err := compiledSchema(kind)
		if err != nil {
			return nil, err
		}
		if schema.Validate(parsed) != nil {
			continue
		}
		res := &GradeResult{Kind: kind}
		switch kind {
		case ResultRetake:
			res.Retake = &Retake{}
			err = json.Unmarshal(raw, res.Retake)
		case ResultScored:
			res.Score = &Score{}
			err = json.Unmarshal(raw, res.Score)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResult, err)
		}
		return res, nil
	}
	return nil, ErrUnrecognizedResult
}

// Grade submits an answer for grading.
func (c *Client) Grade(ctx context.Context, s Submission) (*GradeResult, error) {
	route := s.Kind.Route()
	if route == "" {
		return nil, fmt.Errorf("unknown grade kind %v", s.Kind)
	}

	var (
		cl  call
		err error
	)
	if s.Kind == GradeSpeaking {
		cl, err = speakingCall(s)
	} else {
		cl, err = multipartCall(s)
	}
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, cl, &raw); err != nil {
		return nil, err
	}
	res, err := ClassifyResult(raw)
	if err != nil {
		return nil, &APIError{Route: route, Err: err}
	}
	return res, nil
}

func speakingCall(s Submission) (call, error) {
	body := struct {
		Question   string             `json:"question"`
		Language   course.Language    `json:"language"`
		Dialect    *course.Dialect    `json:"dialect"`
		VocabWords []course.VocabWord `json:"vocab_words"`
		Audio      string             `json:"user_audio_base64"`
	}{
		Question:   s.Question,
		Language:   s.Language,
		Dialect:    optionalDialect(s.Dialect),
		VocabWords: s.VocabWords,
		Audio:      base64.StdEncoding.EncodeToString(s.Upload.Data),
	}
	route := s.Kind.Route()
	return jsonCall(http.MethodPost, route, route, body)
}

func multipartCall(s Submission) (call, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileField := "user_image"
	if s.Kind.Upload() == media.Audio {
		fileField = "user_audio"
	}
	if err := writeFile(w, fileField, s.Upload); err != nil {
		return call{}, err
	}

	var fields [][2]string
	switch s.Kind {
	case GradeLetterWriting:
		if s.Reference == nil {
			return call{}, &media.ValidationError{Reason: "reference image is missing", Err: media.ErrMissing}
		}
		if err := writeFile(w, "target_image", *s.Reference); err != nil {
			return call{}, err
		}
		fields = append(fields, [2]string{"letter", s.Letter}, [2]string{"position", strings.ToLower(s.Position)})
	case GradeLetterJoining:
		for _, l := range s.LetterList {
			fields = append(fields, [2]string{"letter_list", l})
		}
		fields = append(fields, [2]string{"target_word", s.TargetWord})
	case GradeDictation:
		fields = append(fields, [2]string{"target_word", s.TargetWord})
	case GradeWordPronunciation:
		fields = append(fields, [2]string{"phrase", s.Phrase}, [2]string{"isWord", "true"})
	case GradeLetterPronunciation:
		fields = append(fields, [2]string{"letter", s.Letter})
	}
	if s.Kind != GradeLetterPronunciation {
		fields = append(fields, [2]string{"language", string(s.Language)})
		if s.Dialect != "" {
			fields = append(fields, [2]string{"dialect", string(s.Dialect)})
		}
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return call{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return call{}, fmt.Errorf("close multipart body: %w", err)
	}

	route := s.Kind.Route()
	return call{
		method:      http.MethodPost,
		route:       route,
		path:        route,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

func writeFile(w *multipart.Writer, field string, f media.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write %s: %w", field, err)
	}
	return nil
}

func optionalDialect(d course.Dialect) *course.Dialect {
	if d == "" {
		return nil
	}
	return &d
}
