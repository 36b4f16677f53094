// Package module runs one module: it loads the resource, picks the matching
// exercise controller and renders it. Resource types without a controller
// get a visible fallback instead of an empty screen.
package module

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/exercise"
	"github.com/takallem/takallem/internal/progression"
	"github.com/takallem/takallem/internal/router"
	"github.com/takallem/takallem/internal/screen"
	"github.com/takallem/takallem/internal/screens/shared"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/layout"
)

const spinnerInterval = 120 * time.Millisecond

// ModuleScreen shows the exercise for one module.
type ModuleScreen struct {
	deps   *shared.Deps
	module course.Module

	ctrl    exercise.Controller
	unknown course.ResourceType
	loadErr string

	busy    bool
	leaving bool
	frame   int
	frozen  string

	verdict   string
	verdictOK bool

	choices  components.MultiChoice
	dialects components.Menu
	path     components.TextInput
	question components.TextInput
	asking   bool
}

var _ screen.Screen = (*ModuleScreen)(nil)
var _ screen.KeyHintProvider = (*ModuleScreen)(nil)
var _ screen.Leaver = (*ModuleScreen)(nil)

// New creates a ModuleScreen for m.
func New(deps *shared.Deps, m course.Module) *ModuleScreen {
	return &ModuleScreen{deps: deps, module: m}
}

func (s *ModuleScreen) Title() string {
	if s.module.Title != "" {
		return fmt.Sprintf("%d. %s", s.module.Number, s.module.Title)
	}
	return fmt.Sprintf("Module %d", s.module.Number)
}

func (s *ModuleScreen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Esc", Description: "Home"}
	if s.ctrl == nil {
		return []layout.KeyHint{back}
	}
	switch s.ctrl.Kind() {
	case exercise.KindLecture:
		return []layout.KeyHint{{Key: "←→", Description: "Page"}, {Key: "Enter", Description: "Next"}, back}
	case exercise.KindDialect:
		return []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "Enter", Description: "Choose"}, back}
	case exercise.KindUpload:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Tab", Description: "Ask tutor"},
			{Key: "Ctrl+N", Description: "Next"},
			back,
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓/1-9", Description: "Choose"},
		{Key: "Enter", Description: "Answer"},
		{Key: "n", Description: "Next"},
		back,
	}
}

func (s *ModuleScreen) Init() tea.Cmd {
	id := s.module.ResourceID()
	client := s.deps.Client()
	load := func() tea.Msg {
		if id == 0 {
			return resourceLoadedMsg{Err: errors.New("this module has no content yet")}
		}
		r, err := client.Resource(context.Background(), id)
		return resourceLoadedMsg{Resource: r, Err: err}
	}
	return s.startBusy(load)
}

func (s *ModuleScreen) startBusy(cmd tea.Cmd) tea.Cmd {
	s.busy = true
	return tea.Batch(cmd, spinnerTick())
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (s *ModuleScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if !s.busy {
			return s, nil
		}
		s.frame++
		return s, spinnerTick()

	case resourceLoadedMsg:
		s.busy = false
		return s, s.handleResource(msg)

	case advancedMsg:
		s.busy = false
		return s, s.handleAdvanced(msg)

	case vocabAnsweredMsg:
		s.busy = false
		return s, s.handleVocabAnswer(msg)

	case gradedMsg:
		s.busy = false
		return s, s.handleGraded(msg)

	case leftMsg:
		s.busy, s.leaving = false, false
		s.syncProgress()
		return s, tea.Batch(shared.Fail(msg.Err), router.Pop())

	case explainedMsg:
		s.busy = false
		if msg.Err != nil {
			return s, shared.Fail(msg.Err)
		}
		s.question.Reset()
		return s, nil

	case components.ChoiceMsg:
		if s.busy {
			return s, nil
		}
		return s, s.answer(msg)

	case tea.KeyPressMsg:
		if s.busy || s.ctrl == nil {
			return s, nil
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *ModuleScreen) handleResource(msg resourceLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		s.loadErr = shared.Message(msg.Err)
		if api.IsAuth(msg.Err) {
			return shared.Fail(msg.Err)
		}
		return nil
	}
	state := s.deps.State
	state.Open(s.module.Number, msg.Resource)

	progress, ok := state.Progress()
	if !ok {
		s.loadErr = "No course is selected."
		return nil
	}
	user, _ := state.User()
	ctrl, err := exercise.ForResource(msg.Resource, exercise.Env{
		Service:        s.deps.Client(),
		User:           user,
		Progress:       progress,
		ModuleNumber:   s.module.Number,
		MaxUploadBytes: s.deps.Config.MaxUploadBytes,
	})
	if errors.Is(err, exercise.ErrUnknownResourceType) {
		s.unknown = msg.Resource.Type
		return nil
	}
	if err != nil {
		s.loadErr = err.Error()
		return nil
	}
	s.ctrl = ctrl

	switch c := ctrl.(type) {
	case *exercise.DialectPick:
		items := make([]components.MenuItem, 0, len(c.Options()))
		for _, opt := range c.Options() {
			d := opt.Dialect
			items = append(items, components.MenuItem{
				Label:  string(d),
				Action: func() tea.Cmd { return s.chooseDialect(d) },
			})
		}
		s.dialects = components.NewMenu(items)
	case *exercise.Upload:
		s.path = components.NewTextInput("File", "path to your "+c.Expects().String(), false, 4096)
		s.question = components.NewTextInput("Ask", "What should I fix?", false, 500)
		s.question.Blur()
		return s.path.Init()
	}
	s.resetProblem()
	return nil
}

// resetProblem rebuilds the per-problem widgets after the cursor moved.
func (s *ModuleScreen) resetProblem() {
	s.verdict = ""
	switch c := s.ctrl.(type) {
	case *exercise.Choice:
		if p, ok := c.Current(); ok {
			s.choices = components.NewMultiChoice(p.Question, p.AnswerChoices)
		}
	case *exercise.VocabChoice:
		if p, ok := c.Current(); ok {
			s.choices = components.NewMultiChoice(p.Question, p.AnswerChoices)
		}
	case *exercise.Upload:
		s.path.Reset()
		s.question.Reset()
		s.asking = false
		s.question.Blur()
		s.path.Focus()
	}
}

func (s *ModuleScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch c := s.ctrl.(type) {
	case *exercise.Lecture:
		switch key {
		case "left", "h":
			c.Prev()
		case "right", "l", "enter", "n", "space":
			if !c.LastPage() {
				_, err := c.Next(context.Background())
				return shared.Fail(err)
			}
			return s.next()
		}
		return nil

	case *exercise.DialectPick:
		var cmd tea.Cmd
		s.dialects, cmd = s.dialects.Update(msg)
		return cmd

	case *exercise.Choice, *exercise.VocabChoice:
		if key == "n" {
			return s.next()
		}
		var cmd tea.Cmd
		s.choices, cmd = s.choices.Update(msg)
		return cmd

	case *exercise.Upload:
		switch key {
		case "ctrl+n":
			return s.next()
		case "tab", "shift+tab":
			return s.toggleAsk(c)
		case "enter":
			if s.asking {
				return s.explain(c)
			}
			return s.submit(c)
		}
		var cmd tea.Cmd
		if s.asking {
			s.question, cmd = s.question.Update(msg)
		} else {
			s.path, cmd = s.path.Update(msg)
		}
		return cmd
	}
	return nil
}

func (s *ModuleScreen) toggleAsk(c *exercise.Upload) tea.Cmd {
	if !s.asking {
		if res := c.Result(); res == nil || res.Kind != api.ResultScored {
			return shared.Toast("Submit an answer before asking the tutor.")
		}
	}
	s.asking = !s.asking
	if s.asking {
		s.path.Blur()
		return s.question.Focus()
	}
	s.question.Blur()
	return s.path.Focus()
}

// answer handles a picked option. Fixed choice sets are checked locally;
// vocab answers may credit the word on the service.
func (s *ModuleScreen) answer(msg components.ChoiceMsg) tea.Cmd {
	switch c := s.ctrl.(type) {
	case *exercise.Choice:
		correct, err := c.Answer(msg.Option)
		if err != nil {
			return shared.Fail(err)
		}
		s.choices.Mark(msg.Index, correct)
		s.setVerdict(correct)
		if correct {
			s.choices.Locked = true
		}
	case *exercise.VocabChoice:
		s.choices.Locked = true
		return s.startBusy(func() tea.Msg {
			res, err := c.Answer(context.Background(), msg.Option)
			return vocabAnsweredMsg{Choice: msg.Index, Result: res, Err: err}
		})
	}
	return nil
}

func (s *ModuleScreen) handleVocabAnswer(msg vocabAnsweredMsg) tea.Cmd {
	c, ok := s.ctrl.(*exercise.VocabChoice)
	if !ok {
		return nil
	}
	if c.Selected() == "" {
		s.choices.Locked = false
	} else {
		s.choices.Mark(msg.Choice, msg.Result.Correct)
		s.setVerdict(msg.Result.Correct)
		if msg.Result.Credited {
			s.verdict += " New word learned."
		}
	}
	s.syncProgress()
	return shared.Fail(msg.Err)
}

func (s *ModuleScreen) setVerdict(correct bool) {
	s.verdictOK = correct
	if correct {
		s.verdict = "Correct!"
	} else {
		s.verdict = "Not quite."
	}
}

func (s *ModuleScreen) submit(c *exercise.Upload) tea.Cmd {
	path := s.path.Value()
	if path == "" {
		return shared.Toast(fmt.Sprintf("Enter the path to your %s.", c.Expects()))
	}
	return s.startBusy(func() tea.Msg {
		res, err := c.SubmitFile(context.Background(), path)
		return gradedMsg{Result: res, Err: err}
	})
}

func (s *ModuleScreen) handleGraded(msg gradedMsg) tea.Cmd {
	if msg.Err != nil {
		s.path.Submit(false)
		return shared.Fail(msg.Err)
	}
	switch msg.Result.Kind {
	case api.ResultScored:
		s.path.Submit(msg.Result.Passed())
		s.setVerdict(msg.Result.Passed())
		if !msg.Result.Passed() {
			s.verdict = "Not passed yet. Try again or press Tab to ask why."
		}
	case api.ResultRetake:
		s.verdictOK = false
		s.verdict = "Please retake the photo."
	}
	return nil
}

func (s *ModuleScreen) explain(c *exercise.Upload) tea.Cmd {
	query := s.question.Value()
	if query == "" {
		return shared.Toast("Type a question for the tutor.")
	}
	return s.startBusy(func() tea.Msg {
		answer, err := c.Explain(context.Background(), query)
		return explainedMsg{Answer: answer, Err: err}
	})
}

func (s *ModuleScreen) chooseDialect(d course.Dialect) tea.Cmd {
	c, ok := s.ctrl.(*exercise.DialectPick)
	if !ok {
		return nil
	}
	return s.startBusy(func() tea.Msg {
		out, err := c.Choose(context.Background(), d)
		return advancedMsg{Outcome: out, Err: err}
	})
}

// Leave saves a passed speaking problem before the screen is popped.
func (s *ModuleScreen) Leave() (tea.Cmd, bool) {
	if s.leaving {
		return nil, true
	}
	c, ok := s.ctrl.(*exercise.Upload)
	if s.busy || !ok || !c.SavesOnLeave() {
		return nil, false
	}
	s.leaving = true
	return s.startBusy(func() tea.Msg {
		return leftMsg{Err: c.Leave(context.Background())}
	}), true
}

type advancer interface {
	Next(ctx context.Context) (progression.Outcome, error)
}

func (s *ModuleScreen) next() tea.Cmd {
	a, ok := s.ctrl.(advancer)
	if !ok {
		return nil
	}
	return s.startBusy(func() tea.Msg {
		out, err := a.Next(context.Background())
		return advancedMsg{Outcome: out, Err: err}
	})
}

func (s *ModuleScreen) handleAdvanced(msg advancedMsg) tea.Cmd {
	s.syncProgress()
	if msg.Err != nil {
		return shared.Fail(msg.Err)
	}
	switch msg.Outcome {
	case progression.OutcomeHome:
		s.deps.State.Close()
		return router.Reset(s.deps.Screens.Home())
	case progression.OutcomeRestartSet:
		s.resetProblem()
		s.verdictOK = false
		s.verdict = "Not every answer was right. The set starts again."
	case progression.OutcomeNextBatch:
		s.resetProblem()
		s.verdictOK = true
		s.verdict = "On to the next set of words."
	case progression.OutcomeNextProblem:
		s.resetProblem()
	}
	return nil
}

// syncProgress publishes what the service last confirmed, including the
// steps of a sequence that succeeded before a failure.
func (s *ModuleScreen) syncProgress() {
	s.deps.State.SetProgress(s.ctrl.Progress())
	if dp, ok := s.ctrl.(*exercise.DialectPick); ok {
		if u, ok := dp.User(); ok {
			s.deps.State.SetUser(u)
		}
	}
}
