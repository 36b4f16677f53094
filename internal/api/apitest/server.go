// Package apitest runs an in-memory Takallem service for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/progression"
)

// Token is the bearer token the server accepts by default.
const Token = "test-token"

// Password is the password Login accepts until a sign-up replaces it.
const Password = "correct-horse"

// Call is one request the server handled.
type Call struct {
	Method         string
	Route          string // mux path template
	Path           string
	IdempotencyKey string
}

// Upload is a file received by a grading endpoint.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int
}

// Submission is what a grading endpoint received.
type Submission struct {
	Route  string
	Fields url.Values
	Files  []Upload
	JSON   map[string]any
}

type failure struct {
	status int
	detail string
}

// Server is a fake service. Exported fields may be set before the first
// request; after that use the accessor methods.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	User      course.User
	Progress  map[int]*course.CourseProgress
	Languages []course.LanguageOption
	Modules   map[course.CourseName][]course.Module
	Resources map[int]*course.Resource
	Media     map[string][]byte

	// SignupWithoutToken makes sign-up answer with the user only.
	SignupWithoutToken bool

	calls        []Call
	submissions  []Submission
	explains     []map[string]any
	grades       []string
	explanations []string
	failures     map[string]failure
	nextID       int
	password     string
}

// New starts a server that is closed with the test.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		User:      course.User{ID: 1, Email: "learner@takallem.test", FirstName: "Sara", Gender: course.GenderFemale},
		Progress:  map[int]*course.CourseProgress{},
		Modules:   map[course.CourseName][]course.Module{},
		Resources: map[int]*course.Resource{},
		Media:     map[string][]byte{},
		failures:  map[string]failure{},
		nextID:    100,
		password:  Password,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record, s.authenticate, s.fail)

	r.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/user/me", s.me).Methods(http.MethodGet)
	r.HandleFunc("/user/current-course/clear", s.clearCurrentCourse).Methods(http.MethodPut)
	r.HandleFunc("/user/current-course/{course}", s.setCurrentCourse).Methods(http.MethodPut)
	r.HandleFunc("/user/language-learning/add/{language}", s.addLanguage).Methods(http.MethodPut)
	r.HandleFunc("/user/current-dialect/{dialect}", s.setCurrentDialect).Methods(http.MethodPut)

	p := r.PathPrefix("/user-course-progress").Subrouter()
	p.HandleFunc("/", s.getProgress).Methods(http.MethodGet)
	p.HandleFunc("/", s.createProgress).Methods(http.MethodPost)
	p.HandleFunc("/dialect", s.setProgressDialect).Methods(http.MethodPut)
	p.HandleFunc("/curr-module/increment/{id}", s.mutate(func(cp *course.CourseProgress) { cp.CurrModule++ })).Methods(http.MethodPut)
	p.HandleFunc("/problem-counter/increment/{id}", s.mutate(func(cp *course.CourseProgress) { cp.ProblemCounter++ })).Methods(http.MethodPut)
	p.HandleFunc("/problem-counter/clear/{id}", s.mutate(func(cp *course.CourseProgress) { cp.ProblemCounter = 0 })).Methods(http.MethodPut)
	p.HandleFunc("/current-vocab-problem-set/clear/{id}", s.mutate(func(cp *course.CourseProgress) { cp.CurrentVocabProblemSet = 1 })).Methods(http.MethodPut)
	p.HandleFunc("/current-vocab-problem-set/increment", s.incrementVocabSet).Methods(http.MethodPut)
	p.HandleFunc("/covered-words/clear/{id}", s.mutate(func(cp *course.CourseProgress) { cp.CoveredWords = map[string]int{} })).Methods(http.MethodPut)
	p.HandleFunc("/covered-words", s.addCoveredWord).Methods(http.MethodPut)

	r.HandleFunc("/languages", s.languages).Methods(http.MethodGet)
	r.HandleFunc("/modules/{course}", s.modules).Methods(http.MethodGet)
	r.HandleFunc("/modules/{course}/{dialect}", s.modules).Methods(http.MethodGet)
	r.HandleFunc("/resource/{id}", s.resource).Methods(http.MethodGet)
	r.HandleFunc("/media/{name}", s.media).Methods(http.MethodGet)

	for _, route := range []string{"/writing/letter", "/writing/joining", "/writing/dictation",
		"/pronounciation/check", "/letter/pronounciation/letter/check", "/speaking/generate-response"} {
		r.HandleFunc(route, s.grade).Methods(http.MethodPost)
	}
	for _, route := range []string{"/writing/letter/explain", "/writing/joining/explain", "/writing/dictation/explain",
		"/pronounciation/explain", "/letter/pronounciation/letter/explain", "/speaking/explain"} {
		r.HandleFunc(route, s.explain).Methods(http.MethodPost)
	}
	return r
}

// FailOn makes every request to route (a mux path template such as
// "/user-course-progress/problem-counter/clear/{id}") fail with status.
func (s *Server) FailOn(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Heal removes a failure installed with FailOn.
func (s *Server) Heal(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// QueueGrade queues a raw JSON grading response. With nothing queued,
// grading returns a pass.
func (s *Server) QueueGrade(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grades = append(s.grades, raw)
}

// QueueExplanation queues an explain answer.
func (s *Server) QueueExplanation(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanations = append(s.explanations, text)
}

// AddProgress stores p and returns it.
func (s *Server) AddProgress(p course.CourseProgress) course.CourseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p.Clone()
	if cp.CoveredWords == nil {
		cp.CoveredWords = map[string]int{}
	}
	s.Progress[cp.ID] = &cp
	return cp.Clone()
}

// ProgressOf returns the stored progress with id.
func (s *Server) ProgressOf(id int) (course.CourseProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Progress[id]
	if !ok {
		return course.CourseProgress{}, false
	}
	return p.Clone(), true
}

// CurrentUser returns the stored user.
func (s *Server) CurrentUser() course.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.User
}

// Calls returns every handled request in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Routes returns "METHOD template" for every handled request in order.
func (s *Server) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Method + " " + c.Route
	}
	return out
}

// Submissions returns what the grading endpoints received.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// Explains returns the bodies the explain endpoints received.
func (s *Server) Explains() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.explains...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:         r.Method,
			Route:          routeOf(r),
			Path:           r.URL.EscapedPath(),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/auth/") || strings.HasPrefix(r.URL.Path, "/media/") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) fail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[routeOf(r)]
		s.mu.Unlock()
		if ok {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeOf(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email != s.User.Email || body.Password != s.password {
		writeDetail(w, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	writeJSON(w, course.AuthResponse{User: s.User, Token: Token, TokenType: "bearer"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email             string             `json:"email"`
		Password          string             `json:"password"`
		Username          string             `json:"username"`
		FirstName         string             `json:"first_name"`
		LastName          *string            `json:"last_name"`
		Gender            course.Gender      `json:"gender"`
		CurrentCourse     *course.CourseName `json:"current_course"`
		LanguagesLearning []string           `json:"languages_learning"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if _, ok := course.ParseGender(string(body.Gender)); !ok || body.Email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid sign-up request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.EqualFold(body.Email, s.User.Email) {
		writeDetail(w, http.StatusBadRequest, "Failed to create auth user. Email might already be registered.")
		return
	}
	s.nextID++
	s.User = course.User{
		ID:                s.nextID,
		Email:             body.Email,
		Username:          body.Username,
		FirstName:         body.FirstName,
		LastName:          body.LastName,
		Gender:            body.Gender,
		CurrentCourse:     body.CurrentCourse,
		LanguagesLearning: body.LanguagesLearning,
	}
	s.password = body.Password
	res := course.AuthResponse{User: s.User, Token: Token, TokenType: "bearer"}
	if s.SignupWithoutToken {
		res.Token, res.TokenType = "", ""
	}
	writeJSON(w, res)
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.CurrentUser())
}

func (s *Server) setCurrentCourse(w http.ResponseWriter, r *http.Request) {
	name := course.CourseName(mux.Vars(r)["course"])
	s.updateUser(w, func(u *course.User) { u.CurrentCourse = &name })
}

func (s *Server) clearCurrentCourse(w http.ResponseWriter, _ *http.Request) {
	s.updateUser(w, func(u *course.User) { u.CurrentCourse = nil })
}

func (s *Server) addLanguage(w http.ResponseWriter, r *http.Request) {
	lang := mux.Vars(r)["language"]
	s.updateUser(w, func(u *course.User) {
		for _, l := range u.LanguagesLearning {
			if l == lang {
				return
			}
		}
		u.LanguagesLearning = append(u.LanguagesLearning, lang)
	})
}

func (s *Server) setCurrentDialect(w http.ResponseWriter, r *http.Request) {
	d := course.Dialect(mux.Vars(r)["dialect"])
	s.updateUser(w, func(u *course.User) { u.CurrentDialect = &d })
}

func (s *Server) updateUser(w http.ResponseWriter, fn func(*course.User)) {
	s.mu.Lock()
	fn(&s.User)
	u := s.User
	s.mu.Unlock()
	writeJSON(w, u)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))
	name := course.CourseName(r.URL.Query().Get("course"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if userID != s.User.ID {
		writeDetail(w, http.StatusNotFound, "User course progress not found")
		return
	}
	for _, p := range s.Progress {
		if p.CourseName == name {
			writeJSON(w, p)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "User course progress not found")
}

func (s *Server) createProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID             int               `json:"id"`
		Course         course.CourseName `json:"course"`
		DefaultDialect *course.Dialect   `json:"default_dialect"`
		TotalModules   int               `json:"total_modules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Progress {
		if p.CourseName == body.Course {
			writeDetail(w, http.StatusBadRequest, "User course progress already exists")
			return
		}
	}
	s.nextID++
	p := &course.CourseProgress{
		ID:                     s.nextID,
		CourseName:             body.Course,
		Language:               course.LanguageArabic,
		DefaultDialect:         body.DefaultDialect,
		TotalModules:           body.TotalModules,
		CurrModule:             1,
		CurrentVocabProblemSet: 1,
		CoveredWords:           map[string]int{},
	}
	s.Progress[p.ID] = p
	writeJSON(w, p)
}

func (s *Server) setProgressDialect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID      int            `json:"id"`
		Dialect course.Dialect `json:"dialect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.apply(w, body.ID, func(cp *course.CourseProgress) { cp.Dialect = &body.Dialect })
}

func (s *Server) incrementVocabSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    int `json:"id"`
		Limit int `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.apply(w, body.ID, func(cp *course.CourseProgress) {
		cp.CurrentVocabProblemSet = progression.NextVocabSet(cp.CurrentVocabProblemSet, body.Limit)
	})
}

func (s *Server) addCoveredWord(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID   int    `json:"id"`
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Progress[body.ID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User course progress not found")
		return
	}
	if p.CoveredWords == nil {
		p.CoveredWords = map[string]int{}
	}
	_, seen := p.CoveredWords[body.Word]
	if !seen {
		p.CoveredWords[body.Word] = 1
	}
	writeJSON(w, map[string]bool{"coveredWordAdded": !seen})
}

func (s *Server) mutate(fn func(*course.CourseProgress)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid id")
			return
		}
		s.apply(w, id, fn)
	}
}

func (s *Server) apply(w http.ResponseWriter, id int, fn func(*course.CourseProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Progress[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User course progress not found")
		return
	}
	fn(p)
	writeJSON(w, p)
}

func (s *Server) languages(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Languages)
}

func (s *Server) modules(w http.ResponseWriter, r *http.Request) {
	name := course.CourseName(mux.Vars(r)["course"])
	s.mu.Lock()
	defer s.mu.Unlock()
	mods, ok := s.Modules[name]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, mods)
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.Resources[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Resource not found")
		return
	}
	writeJSON(w, res)
}

func (s *Server) media(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mu.Lock()
	data, ok := s.Media[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) grade(w http.ResponseWriter, r *http.Request) {
	sub := Submission{Route: r.URL.Path}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&sub.JSON); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid body")
			return
		}
	} else {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid form: %v", err))
			return
		}
		sub.Fields = url.Values(r.MultipartForm.Value)
		for field, headers := range r.MultipartForm.File {
			for _, h := range headers {
				sub.Files = append(sub.Files, Upload{
					Field:       field,
					Filename:    h.Filename,
					ContentType: h.Header.Get("Content-Type"),
					Size:        int(h.Size),
				})
			}
		}
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	raw := `{"status":"pass","feedback":"Well done.","mistake_tags":[]}`
	if len(s.grades) > 0 {
		raw, s.grades = s.grades[0], s.grades[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, raw)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	s.explains = append(s.explains, body)
	text := "Keep the baseline steady."
	if len(s.explanations) > 0 {
		text, s.explanations = s.explanations[0], s.explanations[1:]
	}
	s.mu.Unlock()

	key := "feedback"
	if r.URL.Path == "/speaking/explain" {
		key = "response_text"
	}
	writeJSON(w, map[string]string{key: text})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
