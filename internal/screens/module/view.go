package module

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/exercise"
	"github.com/takallem/takallem/internal/progression"
	"github.com/takallem/takallem/internal/ui/components"
	"github.com/takallem/takallem/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type statusReporter interface {
	Statuses() []progression.Status
}

// View renders the exercise. While a request is in flight the last frame is
// kept and a spinner is drawn under it, so nothing reads the controller
// while a command is using it.
func (s *ModuleScreen) View(width, height int) string {
	spinner := lipgloss.NewStyle().Foreground(theme.Secondary).
		Render(spinnerFrames[s.frame%len(spinnerFrames)] + " Working...")

	switch {
	case s.loadErr != "":
		return renderError(width, s.loadErr)
	case s.unknown != "":
		return renderUnknown(width, height, s.unknown)
	case s.ctrl == nil:
		return renderLoading(width, "Loading module...")
	case s.busy:
		return s.frozen + "\n\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, spinner)
	}

	if err := s.ctrl.Ready(); err != nil {
		if errors.Is(err, progression.ErrOutOfBounds) {
			return renderLoading(width, "Loading...")
		}
		return renderError(width, err.Error())
	}

	cw := min(width-4, 76)
	var b strings.Builder
	b.WriteString(s.renderStatusLine(cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")

	switch c := s.ctrl.(type) {
	case *exercise.Lecture:
		b.WriteString(renderLecture(c, cw))
	case *exercise.DialectPick:
		b.WriteString(s.renderDialect(c))
	case *exercise.Choice:
		b.WriteString(s.renderChoice(c.Resource()))
	case *exercise.VocabChoice:
		b.WriteString(s.renderVocab(c))
	case *exercise.Upload:
		b.WriteString(s.renderUpload(c, cw))
	}

	if s.verdict != "" {
		style := theme.Incorrect
		if s.verdictOK {
			style = theme.Correct
		}
		b.WriteString("\n" + style.Render(s.verdict) + "\n")
	}

	body := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(b.String()))
	s.frozen = body
	return body
}

func (s *ModuleScreen) renderStatusLine(width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(string(s.ctrl.Resource().Type))

	right := ""
	if sr, ok := s.ctrl.(statusReporter); ok {
		right = components.StatusCells(sr.Statuses())
	}
	if v, ok := s.ctrl.(*exercise.VocabChoice); ok {
		n, threshold := v.Credited()
		right = fmt.Sprintf("%s  %d/%d words", right, n, threshold)
	}

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right); pad > 0 {
		line += strings.Repeat(" ", pad) + right
	} else if right != "" {
		line += "\n" + right
	}

	if !progression.IsFrontier(s.ctrl.Progress(), s.ctrl.ModuleNumber()) {
		line += "\n" + theme.Hint.Render("Review: you passed this module already, progress will not change.")
	}
	return line
}

func renderLecture(l *exercise.Lecture, width int) string {
	page, idx := l.Page()
	var b strings.Builder
	b.WriteString(theme.Script.Render(page.Title) + "\n\n")
	for _, para := range page.Body {
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Text).Render(para) + "\n\n")
	}
	b.WriteString(renderMedia(page.Media))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("page %d of %d", idx+1, len(l.Pages()))) + "\n\n")
	label := "Next page"
	if l.LastPage() {
		label = "Finish lecture"
	}
	b.WriteString(components.NewButton(label, nil, "enter").View())
	return b.String()
}

func (s *ModuleScreen) renderDialect(d *exercise.DialectPick) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Which dialect would you like to learn?") + "\n\n")
	if len(d.Options()) == 0 {
		b.WriteString(theme.Hint.Render("No dialects are offered for this course.") + "\n")
		return b.String()
	}
	b.WriteString(s.dialects.View())
	if !d.Frontier() {
		b.WriteString("\n" + theme.Hint.Render("Your dialect is already set; choosing returns home."))
	}
	return b.String()
}

func (s *ModuleScreen) renderChoice(r *course.Resource) string {
	var b strings.Builder
	if r.Text != nil {
		b.WriteString(theme.Script.Render(r.Text.Title) + "\n")
		for _, para := range r.Text.Body {
			b.WriteString(theme.Body.Render(para) + "\n")
		}
		b.WriteString("\n")
	}
	if c, ok := s.ctrl.(*exercise.Choice); ok {
		if p, ok := c.Current(); ok {
			b.WriteString(renderProblemExtras(p))
		}
	}
	b.WriteString(s.choices.View())
	return b.String()
}

func (s *ModuleScreen) renderVocab(v *exercise.VocabChoice) string {
	var b strings.Builder
	if batch := v.Batch(); batch != nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("word set %d", batch.SetNumber)) + "\n\n")
	}
	if p, ok := v.Current(); ok {
		b.WriteString(renderProblemExtras(p))
	}
	b.WriteString(s.choices.View())
	return b.String()
}

func (s *ModuleScreen) renderUpload(u *exercise.Upload, width int) string {
	var b strings.Builder
	p, ok := u.Current()
	if !ok {
		return theme.Hint.Render("Nothing left to submit.")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).
		Render(uploadPrompt(u.GradeKind(), p)) + "\n\n")
	b.WriteString(renderProblemExtras(p))

	b.WriteString(s.path.View() + "\n")
	if fb := u.Feedback(); len(fb) > 0 {
		b.WriteString("\n")
		for i, line := range fb {
			who := "Tutor: "
			if i == 0 {
				who = "Feedback: "
			}
			b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Text).
				Render(theme.Hint.Render(who)+line) + "\n")
		}
	}
	if res := u.Result(); res != nil && res.Kind == api.ResultScored {
		b.WriteString("\n" + s.question.View() + "\n")
	}
	return b.String()
}

func uploadPrompt(kind api.GradeKind, p course.Problem) string {
	switch kind {
	case api.GradeLetterWriting:
		letter := p.Letter
		if letter == "" {
			letter = p.Word
		}
		if p.Position != "" {
			return fmt.Sprintf("Write %s in its %s form and photograph it.", letter, strings.ToLower(p.Position))
		}
		return fmt.Sprintf("Write %s and photograph it.", letter)
	case api.GradeLetterJoining:
		return fmt.Sprintf("Join %s into one word and photograph it.", strings.Join(p.LetterList, " + "))
	case api.GradeDictation:
		return "Listen to the word, write it down and photograph it."
	case api.GradeWordPronunciation:
		return fmt.Sprintf("Record yourself saying %s.", p.Word)
	case api.GradeLetterPronunciation:
		if p.Question != "" {
			return p.Question
		}
		return fmt.Sprintf("Record yourself saying %s.", p.Letter)
	case api.GradeSpeaking:
		return "Record your spoken answer: " + p.Question
	}
	return p.Question
}

// renderProblemExtras lists the parts of a problem that are not its
// question or choices: the word or letter, audio and reference images.
func renderProblemExtras(p course.Problem) string {
	var b strings.Builder
	if p.Word != "" {
		b.WriteString(theme.Script.Render(p.Word) + "\n")
	} else if p.PartialWord != "" {
		b.WriteString(theme.Script.Render(p.PartialWord) + "\n")
	}
	var refs []string
	for _, ref := range []string{p.QuestionAudio, p.WordAudio, p.ReferenceWriting} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	refs = append(refs, p.WritingSequence...)
	b.WriteString(renderMedia(refs))
	if len(p.VocabWords) > 0 {
		words := make([]string, len(p.VocabWords))
		for i, w := range p.VocabWords {
			words[i] = fmt.Sprintf("%s (%s)", w.Word, w.Meaning)
		}
		b.WriteString(theme.Hint.Render("Try to use: "+strings.Join(words, ", ")) + "\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func renderMedia(refs []string) string {
	var b strings.Builder
	for _, ref := range refs {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("♪ "+ref) + "\n")
	}
	if len(refs) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// renderUnknown is shown for resource types this client cannot run yet.
func renderUnknown(width, height int, t course.ResourceType) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("╌╌ Unknown resource type ╌╌\n\n%q cannot be shown in this version.\nPress Esc to go back.", string(t)))
}

func renderLoading(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press Esc to go back.", errMsg))
}
