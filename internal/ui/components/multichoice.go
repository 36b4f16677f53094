package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. It only tracks the cursor and
// how each option was judged; whether an answer is accepted is decided by
// the caller.
type MultiChoice struct {
	Question string
	Options  []string
	Selected int

	// Marks holds the verdict for options the learner has tried: true for
	// correct, false for wrong.
	Marks map[int]bool
	// Locked stops the cursor once no further answer is accepted.
	Locked bool
}

// ChoiceMsg is emitted when the learner presses enter on an option.
type ChoiceMsg struct {
	Index  int
	Option string
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
		Marks:    map[int]bool{},
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Locked || len(m.Options) == 0 {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(m.Options) {
			m.Selected = i
		}
	case "enter":
		choice := ChoiceMsg{Index: m.Selected, Option: m.Options[m.Selected]}
		return m, func() tea.Msg { return choice }
	}

	return m, nil
}

// Mark records the verdict for option i.
func (m *MultiChoice) Mark(i int, correct bool) {
	if m.Marks == nil {
		m.Marks = map[int]bool{}
	}
	m.Marks[i] = correct
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	s := ""
	if m.Question != "" {
		s = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question) + "\n\n"
	}

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		correct, marked := m.Marks[i]
		switch {
		case marked && correct:
			s += theme.Correct.Render(line) + "\n"
		case marked:
			s += theme.Incorrect.Render(line) + "\n"
		case m.Locked:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		case i == m.Selected:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}

	return s
}
