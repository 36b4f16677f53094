package api

import (
	"context"
	"net/http"

	"github.com/takallem/takallem/internal/course"
)

// Signup is the body of a sign-up request. An empty LastName is sent as null.
type Signup struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Gender    course.Gender
}

// Signup creates an account. The service may answer without a token, in
// which case the caller logs in with the same credentials.
func (c *Client) Signup(ctx context.Context, req Signup) (*course.AuthResponse, error) {
	body := struct {
		Email             string             `json:"email"`
		Password          string             `json:"password"`
		Username          string             `json:"username"`
		FirstName         string             `json:"first_name"`
		LastName          *string            `json:"last_name"`
		Gender            course.Gender      `json:"gender"`
		CurrentCourse     *course.CourseName `json:"current_course"`
		LanguagesLearning []string           `json:"languages_learning"`
	}{
		Email:             req.Email,
		Password:          req.Password,
		Username:          req.Username,
		FirstName:         req.FirstName,
		Gender:            req.Gender,
		LanguagesLearning: []string{},
	}
	if req.LastName != "" {
		body.LastName = &req.LastName
	}
	cl, err := jsonCall(http.MethodPost, "/auth/signup", "/auth/signup", body)
	if err != nil {
		return nil, err
	}
	cl.public = true

	var out course.AuthResponse
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token. It and Signup are the only calls
// that need no token.
func (c *Client) Login(ctx context.Context, email, password string) (*course.AuthResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	cl, err := jsonCall(http.MethodPost, "/auth/login", "/auth/login", body)
	if err != nil {
		return nil, err
	}
	cl.public = true

	var out course.AuthResponse
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*course.User, error) {
	var u course.User
	if err := c.do(ctx, call{method: http.MethodGet, route: "/user/me", path: "/user/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetCurrentCourse makes name the user's active course.
func (c *Client) SetCurrentCourse(ctx context.Context, name course.CourseName) (*course.User, error) {
	return c.putUser(ctx, "/user/current-course/{course}", path("/user/current-course", name))
}

// ClearCurrentCourse unsets the active course, sending the learner back to
// course selection.
func (c *Client) ClearCurrentCourse(ctx context.Context) (*course.User, error) {
	return c.putUser(ctx, "/user/current-course/clear", "/user/current-course/clear")
}

// AddLanguageLearning adds lang to the user's languages-learning list.
func (c *Client) AddLanguageLearning(ctx context.Context, lang course.Language) (*course.User, error) {
	return c.putUser(ctx, "/user/language-learning/add/{language}", path("/user/language-learning/add", lang))
}

// SetCurrentDialect records the user's preferred dialect.
func (c *Client) SetCurrentDialect(ctx context.Context, d course.Dialect) (*course.User, error) {
	return c.putUser(ctx, "/user/current-dialect/{dialect}", path("/user/current-dialect", d))
}

func (c *Client) putUser(ctx context.Context, route, p string) (*course.User, error) {
	var u course.User
	err := c.do(ctx, call{method: http.MethodPut, route: route, path: p, mutation: true}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
