// Package layout draws the frame around every screen: the header with the
// learner's course, the key hint footer and the toast banner.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

const brand = "Takallem · تكلم"

// KeyHint is one entry of the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Please make the terminal at least %dx%d.\n\nIt is %dx%d now.",
			MinWidth, MinHeight, width, height))
}

// bar is the rounded box used for both header and footer.
func bar(width int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader draws the brand on the left, the screen title in the middle
// and status (learner, course and dialect) on the right. Status is cut short
// before the title is.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + brand)
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	room := inner - lipgloss.Width(left) - lipgloss.Width(center) - 2
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(truncate(status, room))

	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(width, left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right)
}

// truncate shortens s to at most n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// RenderFooter lists the key hints of the active screen.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar(width, "  "+strings.Join(parts, "   "))
}

// RenderToast renders the one-line error banner.
func RenderToast(text string, width int) string {
	return theme.Toast.Width(width).Render(text)
}

// RenderFrame stacks header, content, toast (when not empty) and footer,
// giving the content whatever height is left.
func RenderFrame(header, content, toast, footer string, width, height int) string {
	parts := []string{header}
	used := lipgloss.Height(header) + lipgloss.Height(footer)
	if toast != "" {
		used += lipgloss.Height(toast)
	}
	parts = append(parts, lipgloss.NewStyle().
		Width(width).
		Height(max(height-used, 0)).
		Render(content))
	if toast != "" {
		parts = append(parts, toast)
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}
