package login

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/store"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
	"github.com/takallem/takallem/internal/ui/theme"
)

const (
	tickInterval   = 100 * time.Millisecond
	minPasswordLen = 8
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	ErrEmail     = errors.New("enter a valid email address")
	ErrPassword  = errors.New("password must be at least 8 characters")
	ErrUsername  = errors.New("username is required")
	ErrFirstName = errors.New("first name is required")
	ErrGender    = errors.New("gender must be Male or Female")
)

// Validate checks credentials before any request is made.
func Validate(email, password string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrEmail
	}
	if len(password) < minPasswordLen {
		return ErrPassword
	}
	return nil
}

// Authenticate validates the credentials, logs in and saves the token to
// repo when one is given.
func Authenticate(ctx context.Context, c *api.Client, repo store.CredentialRepo, email, password string) (*course.AuthResponse, error) {
	if err := Validate(email, password); err != nil {
		return nil, err
	}
	res, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := remember(ctx, c, repo, email, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ValidateSignup checks a sign-up form in the order its fields are shown.
func ValidateSignup(req api.Signup) error {
	if err := Validate(req.Email, req.Password); err != nil {
		return err
	}
	if strings.TrimSpace(req.Username) == "" {
		return ErrUsername
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return ErrFirstName
	}
	if _, ok := course.ParseGender(string(req.Gender)); !ok {
		return ErrGender
	}
	return nil
}

// Register creates an account and signs in with it. When the service
// answers without a token the same credentials are used to log in.
func Register(ctx context.Context, c *api.Client, repo store.CredentialRepo, req api.Signup) (*course.AuthResponse, error) {
	if err := ValidateSignup(req); err != nil {
		return nil, err
	}
	req.Gender, _ = course.ParseGender(string(req.Gender))
	res, err := c.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		if res, err = c.Login(ctx, req.Email, req.Password); err != nil {
			return nil, err
		}
	}
	if err := remember(ctx, c, repo, req.Email, res); err != nil {
		return nil, err
	}
	return res, nil
}

func remember(ctx context.Context, c *api.Client, repo store.CredentialRepo, email string, res *course.AuthResponse) error {
	if repo == nil {
		return nil
	}
	return repo.Save(ctx, store.Credentials{
		ServerURL: c.BaseURL(),
		Email:     email,
		UserID:    res.User.ID,
		Token:     res.Token,
	})
}

type tickMsg time.Time

type signedInMsg struct {
	Res *course.AuthResponse
	Err error
}

const (
	fieldEmail = iota
	fieldPassword
	fieldUsername
	fieldFirstName
	fieldLastName
	fieldGender
)

// LoginScreen asks for email and password. In sign-up mode it also asks for
// the profile fields a new account needs.
type LoginScreen struct {
	deps   *shared.Deps
	fields []components.TextInput
	signup bool
	focus  int
	busy   bool
	frame  int
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. A non-empty email prefills the first field.
func New(deps *shared.Deps, email string) *LoginScreen {
	s := &LoginScreen{
		deps: deps,
		fields: []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false, 254),
			components.NewTextInput("Password", "", true, 128),
			components.NewTextInput("Username", "", false, 64),
			components.NewTextInput("First name", "", false, 64),
			components.NewTextInput("Last name", "optional", false, 64),
			components.NewTextInput("Gender", "Male or Female", false, 6),
		},
	}
	if email != "" {
		s.fields[fieldEmail].Model.SetValue(email)
		s.focusField(fieldPassword)
	} else {
		s.focusField(fieldEmail)
	}
	return s
}

func (s *LoginScreen) Title() string {
	if s.signup {
		return "Create account"
	}
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next field"}}
	if s.signup {
		return append(hints,
			layout.KeyHint{Key: "Enter", Description: "Create account"},
			layout.KeyHint{Key: "Ctrl+N", Description: "Back to sign in"},
			layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
		)
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Sign in"},
		layout.KeyHint{Key: "Ctrl+N", Description: "New account"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.fields[s.focus].Init()
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !s.busy {
			return s, nil
		}
		s.frame++
		return s, tick()

	case signedInMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = shared.Message(msg.Err)
			s.fields[fieldPassword].Submit(false)
			return s, nil
		}
		s.deps.SetClient(s.deps.Client().WithToken(msg.Res.Token))
		s.deps.State.SignIn(msg.Res.Token, msg.Res.User)
		return s, router.Replace(s.deps.Screens.Start())

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		n := s.visible()
		switch msg.String() {
		case "ctrl+n":
			s.signup = !s.signup
			s.errMsg = ""
			if s.focus >= s.visible() {
				return s, s.focusField(fieldEmail)
			}
			return s, nil
		case "tab", "down":
			return s, s.focusField((s.focus + 1) % n)
		case "shift+tab", "up":
			return s, s.focusField((s.focus + n - 1) % n)
		case "enter":
			if s.focus < n-1 {
				return s, s.focusField(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) visible() int {
	if s.signup {
		return len(s.fields)
	}
	return fieldUsername
}

func (s *LoginScreen) focusField(i int) tea.Cmd {
	s.focus = i
	for j := range s.fields {
		if j != i {
			s.fields[j].Blur()
		}
	}
	return s.fields[i].Focus()
}

func (s *LoginScreen) form() api.Signup {
	return api.Signup{
		Email:     s.fields[fieldEmail].Value(),
		Password:  s.fields[fieldPassword].Model.Value(),
		Username:  s.fields[fieldUsername].Value(),
		FirstName: s.fields[fieldFirstName].Value(),
		LastName:  s.fields[fieldLastName].Value(),
		Gender:    course.Gender(s.fields[fieldGender].Value()),
	}
}

// invalidField maps a validation error to the field that caused it.
func invalidField(err error) int {
	switch {
	case errors.Is(err, ErrEmail):
		return fieldEmail
	case errors.Is(err, ErrUsername):
		return fieldUsername
	case errors.Is(err, ErrFirstName):
		return fieldFirstName
	case errors.Is(err, ErrGender):
		return fieldGender
	}
	return fieldPassword
}

func (s *LoginScreen) submit() tea.Cmd {
	req := s.form()
	var err error
	if s.signup {
		err = ValidateSignup(req)
	} else {
		err = Validate(req.Email, req.Password)
	}
	if err != nil {
		s.errMsg = err.Error()
		i := invalidField(err)
		s.fields[i].Submit(false)
		if i == s.focus {
			return nil
		}
		return s.focusField(i)
	}

	s.errMsg = ""
	s.busy = true
	client, repo, signup := s.deps.Client(), s.deps.Credentials, s.signup
	send := func() tea.Msg {
		var res *course.AuthResponse
		var err error
		if signup {
			res, err = Register(context.Background(), client, repo, req)
		} else {
			res, err = Authenticate(context.Background(), client, repo, req.Email, req.Password)
		}
		return signedInMsg{Res: res, Err: err}
	}
	return tea.Batch(send, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *LoginScreen) View(width, height int) string {
	sections := []string{
		RenderBanner(width),
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Speak it. Write it. Own it."),
		"",
	}
	for _, f := range s.fields[:s.visible()] {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	switch {
	case s.busy:
		label := " Signing in..."
		if s.signup {
			label = " Creating account..."
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).
			Render(spinnerFrames[s.frame%len(spinnerFrames)]+label))
	case s.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	default:
		sections = append(sections, theme.Hint.Render("press enter to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
