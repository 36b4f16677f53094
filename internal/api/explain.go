package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ExplainRequest is a follow-up question about a scored submission.
type ExplainRequest struct {
	Submission Submission
	Score      *Score
	Query      string

	// History is the feedback shown so far, oldest first.
	History []string
}

// Explain asks the tutor a follow-up question and returns its answer.
func (c *Client) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	route := req.Submission.Kind.ExplainRoute()
	if route == "" {
		return "", fmt.Errorf("unknown grade kind %v", req.Submission.Kind)
	}
	if strings.TrimSpace(req.Query) == "" {
		return "", errors.New("please enter a question")
	}
	if req.Score == nil {
		return "", errors.New("nothing to explain yet")
	}

	cl, err := jsonCall(http.MethodPost, route, route, explainBody(req))
	if err != nil {
		return "", err
	}

	var out struct {
		Feedback     string `json:"feedback"`
		Response     string `json:"response"`
		ResponseText string `json:"response_text"`
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return "", err
	}
	for _, s := range []string{out.Feedback, out.ResponseText, out.Response} {
		if s != "" {
			return s, nil
		}
	}
	return "", &APIError{Route: route, Err: errors.New("empty explanation")}
}

func explainBody(req ExplainRequest) map[string]any {
	s, sc := req.Submission, req.Score
	history := req.History
	if history == nil {
		history = []string{}
	}
	body := map[string]any{
		"query":                  req.Query,
		"status":                 sc.Status,
		"previous_feedback":      history,
		"performance_reflection": sc.PerformanceReflection,
	}
	if s.Kind != GradeLetterPronunciation {
		body["language"] = s.Language
		body["dialect"] = optionalDialect(s.Dialect)
	}
	if s.Kind != GradeSpeaking {
		tags := sc.MistakeTags
		if tags == nil {
			tags = []string{}
		}
		body["mistake_tags"] = tags
	}

	switch s.Kind {
	case GradeLetterWriting:
		body["letter"] = s.Letter
		body["position"] = optionalString(strings.ToLower(s.Position))
		body["scores"] = sc.Scores
	case GradeLetterJoining:
		body["letter_list"] = s.LetterList
		body["target_word"] = s.TargetWord
		body["scores"] = sc.Scores
	case GradeDictation:
		body["target_word"] = s.TargetWord
		body["scores"] = sc.Scores
	case GradeWordPronunciation:
		body["phrase"] = s.Phrase
		body["transcription"] = sc.Transcription
	case GradeLetterPronunciation:
		body["letter"] = s.Letter
		body["transcription"] = sc.Transcription
	case GradeSpeaking:
		body["question"] = s.Question
		body["vocab_words"] = s.VocabWords
		body["transcription"] = sc.Transcription
		body["pronounciation_scores"] = sc.PronunciationScores
		body["semantic_evaluation"] = sc.SemanticEvaluation
	}
	return body
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
