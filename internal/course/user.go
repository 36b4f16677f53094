package course

// User is the authenticated learner.
type User struct {
	ID                int              `json:"id"`
	Email             string           `json:"email"`
	Username          string           `json:"username"`
	FirstName         string           `json:"first_name"`
	LastName          *string          `json:"last_name"`
	Gender            Gender           `json:"gender,omitempty"`
	CurrentCourse     *CourseName      `json:"current_course"`
	CurrentDialect    *Dialect         `json:"current_dialect,omitempty"`
	LanguagesLearning []string         `json:"languages_learning"`
	CourseProgresses  []CourseProgress `json:"course_progresses,omitempty"`
}

// HasCurrentCourse reports whether the user is enrolled in a course.
func (u User) HasCurrentCourse() bool {
	return u.CurrentCourse != nil && *u.CurrentCourse != ""
}

// DisplayName returns the best human-readable name for the user.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// AuthResponse is returned by the login endpoint.
type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// LanguageOption is a catalogue entry with its courses and dialects.
type LanguageOption struct {
	ID        int             `json:"id"`
	Language  Language        `json:"language"`
	Image     string          `json:"image"`
	TextColor string          `json:"text_color"`
	Dialects  []DialectOption `json:"dialects"`
	Courses   []Course        `json:"courses"`
}

// Course is a catalogue course.
type Course struct {
	ID             int        `json:"id"`
	CourseName     CourseName `json:"course_name"`
	Language       Language   `json:"language"`
	DefaultDialect *Dialect   `json:"default_dialect"`
	TotalModules   int        `json:"total_modules"`
	Image          string     `json:"image"`
	TextColor      string     `json:"text_color"`
}

// DialectOption is a selectable dialect.
type DialectOption struct {
	ID        int     `json:"id"`
	Dialect   Dialect `json:"dialect"`
	Image     string  `json:"image"`
	TextColor string  `json:"text_color"`
}
