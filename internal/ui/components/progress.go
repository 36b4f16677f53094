package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/progression"
	"github.com/takallem/takallem/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// ModuleProgress builds a bar for the learner's position in a course.
func ModuleProgress(currModule, totalModules, width int) ProgressBar {
	done := currModule - 1
	if done < 0 {
		done = 0
	}
	pct := 0.0
	if totalModules > 0 {
		pct = float64(done) / float64(totalModules)
	}
	if pct > 1 {
		pct = 1
	}
	label := fmt.Sprintf("%d/%d modules", min(done, totalModules), totalModules)
	return NewProgressBar(label, pct, true, width)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// StatusCells renders one cell per problem of the active set, colored by
// its status.
func StatusCells(statuses []progression.Status) string {
	cells := make([]string, len(statuses))
	for i, s := range statuses {
		cells[i] = statusCell(s)
	}
	return strings.Join(cells, " ")
}

func statusCell(s progression.Status) string {
	switch s {
	case progression.Correct:
		return theme.Correct.Render("●")
	case progression.Incorrect:
		return theme.Incorrect.Render("●")
	case progression.Current:
		return theme.Selected.Render("◉")
	default:
		return lipgloss.NewStyle().Foreground(theme.Border).Render("○")
	}
}
