package login

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/api/apitest"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/session"
	"github.com/takallem/takallem/internal/store"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newDeps(t *testing.T, srv *apitest.Server) *shared.Deps {
	t.Helper()
	c, err := api.New(srv.URL)
	require.NoError(t, err)
	deps := shared.NewDeps(config.DefaultConfig(), session.New(), c)
	deps.Screens.Start = func() screen.Screen { return &stubScreen{title: "start"} }
	return deps
}

func TestValidate(t *testing.T) {
	tests := []struct {
		email, password string
		want            error
	}{
		{"learner@takallem.test", "correct-horse", nil},
		{"", "correct-horse", ErrEmail},
		{"@takallem.test", "correct-horse", ErrEmail},
		{"learner@", "correct-horse", ErrEmail},
		{"lear ner@takallem.test", "correct-horse", ErrEmail},
		{"learner@takallem.test", "short", ErrPassword},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Validate(tt.email, tt.password), "%q / %q", tt.email, tt.password)
	}
}

func TestAuthenticateSavesCredentials(t *testing.T) {
	srv := apitest.New(t)
	st := openStore(t)
	c, err := api.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := Authenticate(ctx, c, st.CredentialRepo(), "learner@takallem.test", apitest.Password)
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, res.Token)

	saved, err := st.CredentialRepo().Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, apitest.Token, saved.Token)
	assert.Equal(t, srv.URL, saved.ServerURL)
	assert.Equal(t, 1, saved.UserID)
}

func TestAuthenticateRejectsBeforeRequest(t *testing.T) {
	srv := apitest.New(t)
	c, err := api.New(srv.URL)
	require.NoError(t, err)

	_, err = Authenticate(context.Background(), c, nil, "not-an-email", apitest.Password)
	assert.ErrorIs(t, err, ErrEmail)
	assert.Empty(t, srv.Calls())
}

func TestAuthenticateWrongPassword(t *testing.T) {
	srv := apitest.New(t)
	st := openStore(t)
	c, err := api.New(srv.URL)
	require.NoError(t, err)

	_, err = Authenticate(context.Background(), c, st.CredentialRepo(), "learner@takallem.test", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", shared.Message(err))

	saved, err := st.CredentialRepo().Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestSubmitShowsValidationError(t *testing.T) {
	s := New(newDeps(t, apitest.New(t)), "learner@takallem.test")
	s.fields[fieldPassword].Model.SetValue("short")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, s.busy)
	assert.Equal(t, ErrPassword.Error(), s.errMsg)
}

func TestSignedInReplacesWithStart(t *testing.T) {
	deps := newDeps(t, apitest.New(t))
	s := New(deps, "")

	user := course.User{ID: 1, Email: "learner@takallem.test", FirstName: "Sara"}
	_, cmd := s.Update(signedInMsg{Res: &course.AuthResponse{User: user, Token: apitest.Token}})
	require.NotNil(t, cmd)

	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "start", msg.Screen.Title())

	assert.Equal(t, apitest.Token, deps.Client().Token())
	assert.Equal(t, session.PhaseChoosingCourse, deps.State.Phase())
	got, ok := deps.State.User()
	require.True(t, ok)
	assert.Equal(t, "Sara", got.FirstName)
}

func newSignup() api.Signup {
	return api.Signup{
		Email:     "omar@takallem.test",
		Password:  "open-sesame",
		Username:  "omar",
		FirstName: "Omar",
		Gender:    "male",
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*api.Signup)
		want   error
	}{
		{"complete", func(*api.Signup) {}, nil},
		{"bad email first", func(r *api.Signup) { r.Email = "omar"; r.Username = "" }, ErrEmail},
		{"short password", func(r *api.Signup) { r.Password = "short" }, ErrPassword},
		{"no username", func(r *api.Signup) { r.Username = "  " }, ErrUsername},
		{"no first name", func(r *api.Signup) { r.FirstName = "" }, ErrFirstName},
		{"no gender", func(r *api.Signup) { r.Gender = "" }, ErrGender},
		{"unknown gender", func(r *api.Signup) { r.Gender = "other" }, ErrGender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newSignup()
			tt.modify(&req)
			assert.Equal(t, tt.want, ValidateSignup(req))
		})
	}
}

func TestRegisterSavesCredentials(t *testing.T) {
	srv := apitest.New(t)
	st := openStore(t)
	c, err := api.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := Register(ctx, c, st.CredentialRepo(), newSignup())
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, res.Token)
	assert.Equal(t, course.GenderMale, res.User.Gender)
	assert.Nil(t, res.User.LastName)

	saved, err := st.CredentialRepo().Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "omar@takallem.test", saved.Email)
	assert.Equal(t, res.User.ID, saved.UserID)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/auth/signup", calls[0].Route)
}

func TestRegisterLogsInWithoutToken(t *testing.T) {
	srv := apitest.New(t)
	srv.SignupWithoutToken = true
	c, err := api.New(srv.URL)
	require.NoError(t, err)

	res, err := Register(context.Background(), c, nil, newSignup())
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, res.Token)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/auth/signup", calls[0].Route)
	assert.Equal(t, "/auth/login", calls[1].Route)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := apitest.New(t)
	c, err := api.New(srv.URL)
	require.NoError(t, err)

	req := newSignup()
	req.Email = srv.CurrentUser().Email
	_, err = Register(context.Background(), c, nil, req)
	require.Error(t, err)
	assert.Contains(t, shared.Message(err), "Email might already be registered")
}

func TestSignupModeShowsProfileFields(t *testing.T) {
	s := New(newDeps(t, apitest.New(t)), "")
	assert.NotContains(t, s.View(100, 40), "First name")

	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	assert.True(t, s.signup)
	assert.Equal(t, "Create account", s.Title())
	assert.Contains(t, s.View(100, 40), "First name")

	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	assert.False(t, s.signup)
}

func TestSignupSubmitFocusesInvalidField(t *testing.T) {
	s := New(newDeps(t, apitest.New(t)), "omar@takallem.test")
	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	s.fields[fieldPassword].Model.SetValue("open-sesame")
	s.fields[fieldUsername].Model.SetValue("omar")
	s.focusField(fieldGender)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.False(t, s.busy)
	assert.Equal(t, ErrFirstName.Error(), s.errMsg)
	assert.Equal(t, fieldFirstName, s.focus)
}

func TestSignupSubmitCreatesAccount(t *testing.T) {
	srv := apitest.New(t)
	s := New(newDeps(t, srv), "omar@takallem.test")
	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	s.fields[fieldPassword].Model.SetValue("open-sesame")
	s.fields[fieldUsername].Model.SetValue("omar")
	s.fields[fieldFirstName].Model.SetValue("Omar")
	s.fields[fieldGender].Model.SetValue("Male")
	s.focusField(fieldGender)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, s.busy)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	msg, ok := batch[0]().(signedInMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "omar", msg.Res.User.Username)
	assert.Equal(t, course.GenderMale, srv.CurrentUser().Gender)
}

func TestBannerFallsBackWhenNarrow(t *testing.T) {
	wide := RenderBanner(100)
	narrow := RenderBanner(40)
	assert.Greater(t, strings.Count(wide, "\n"), strings.Count(narrow, "\n"))
}
