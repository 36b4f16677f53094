package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/progression"
)

var _ progression.Mutator = (*Client)(nil)

const progressPrefix = "/user-course-progress"

// GetProgress fetches the learner's progress in a course. A learner with no
// progress record gets an error matching ErrNotFound.
func (c *Client) GetProgress(ctx context.Context, userID int, name course.CourseName) (course.CourseProgress, error) {
	var p course.CourseProgress
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  progressPrefix + "/",
		path:   progressPrefix + "/",
		query:  url.Values{"user_id": {strconv.Itoa(userID)}, "course": {string(name)}},
	}, &p)
	return p, err
}

// CreateProgressRequest starts a course for a user.
type CreateProgressRequest struct {
	UserID         int               `json:"id"`
	Course         course.CourseName `json:"course"`
	DefaultDialect *course.Dialect   `json:"default_dialect"`
	TotalModules   int               `json:"total_modules"`
}

// CreateProgress creates the progress record for a newly selected course.
func (c *Client) CreateProgress(ctx context.Context, req CreateProgressRequest) (course.CourseProgress, error) {
	return c.mutateProgress(ctx, http.MethodPost, progressPrefix+"/", progressPrefix+"/", req)
}

// SetProgressDialect records the dialect chosen for a course.
func (c *Client) SetProgressDialect(ctx context.Context, progressID int, name course.CourseName, d course.Dialect) (course.CourseProgress, error) {
	body := struct {
		ID      int               `json:"id"`
		Course  course.CourseName `json:"course"`
		Dialect course.Dialect    `json:"dialect"`
	}{progressID, name, d}
	return c.mutateProgress(ctx, http.MethodPut, progressPrefix+"/dialect", progressPrefix+"/dialect", body)
}

func (c *Client) IncrementModule(ctx context.Context, progressID int) (course.CourseProgress, error) {
	return c.putByID(ctx, "/curr-module/increment", progressID)
}

func (c *Client) IncrementProblemCounter(ctx context.Context, progressID int) (course.CourseProgress, error) {
	return c.putByID(ctx, "/problem-counter/increment", progressID)
}

func (c *Client) ClearProblemCounter(ctx context.Context, progressID int) (course.CourseProgress, error) {
	return c.putByID(ctx, "/problem-counter/clear", progressID)
}

// IncrementVocabSet moves to the next vocab batch; the service wraps to the
// first batch once limit is reached.
func (c *Client) IncrementVocabSet(ctx context.Context, progressID, limit int) (course.CourseProgress, error) {
	body := struct {
		ID    int `json:"id"`
		Limit int `json:"limit"`
	}{progressID, limit}
	route := progressPrefix + "/current-vocab-problem-set/increment"
	return c.mutateProgress(ctx, http.MethodPut, route, route, body)
}

func (c *Client) ClearVocabSet(ctx context.Context, progressID int) (course.CourseProgress, error) {
	return c.putByID(ctx, "/current-vocab-problem-set/clear", progressID)
}

func (c *Client) ClearCoveredWords(ctx context.Context, progressID int) (course.CourseProgress, error) {
	return c.putByID(ctx, "/covered-words/clear", progressID)
}

// AddCoveredWord adds word to the covered words if absent and reports
// whether it was new.
func (c *Client) AddCoveredWord(ctx context.Context, progressID int, word string) (bool, error) {
	body := struct {
		ID   int    `json:"id"`
		Word string `json:"word"`
	}{progressID, word}
	route := progressPrefix + "/covered-words"
	cl, err := jsonCall(http.MethodPut, route, route, body)
	if err != nil {
		return false, err
	}
	cl.mutation = true

	var out struct {
		Added bool `json:"coveredWordAdded"`
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return false, err
	}
	return out.Added, nil
}

func (c *Client) putByID(ctx context.Context, suffix string, progressID int) (course.CourseProgress, error) {
	route := progressPrefix + suffix + "/{id}"
	return c.mutateProgress(ctx, http.MethodPut, route, path(progressPrefix+suffix, progressID), nil)
}

func (c *Client) mutateProgress(ctx context.Context, method, route, p string, body any) (course.CourseProgress, error) {
	var out course.CourseProgress
	cl, err := jsonCall(method, route, p, body)
	if err != nil {
		return out, err
	}
	cl.mutation = true
	err = c.do(ctx, cl, &out)
	return out, err
}
