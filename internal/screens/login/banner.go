package login

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/takallem/takallem/internal/ui/theme"
)

var wordmark = strings.TrimPrefix(`
 ████████╗ █████╗ ██╗  ██╗ █████╗ ██╗     ██╗     ███████╗███╗   ███╗
 ╚══██╔══╝██╔══██╗██║ ██╔╝██╔══██╗██║     ██║     ██╔════╝████╗ ████║
    ██║   ███████║█████╔╝ ███████║██║     ██║     █████╗  ██╔████╔██║
    ██║   ██╔══██║██╔═██╗ ██╔══██║██║     ██║     ██╔══╝  ██║╚██╔╝██║
    ██║   ██║  ██║██║  ██╗██║  ██║███████╗███████╗███████╗██║ ╚═╝ ██║
    ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝     ╚═╝`, "\n")

// RenderBanner draws the wordmark with the Arabic name under it, or just the
// two names on one line when the wordmark does not fit.
func RenderBanner(width int) string {
	latin := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	arabic := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	if width < lipgloss.Width(wordmark)+2 {
		return latin.Render("T A K A L L E M") + "  " + arabic.Render("تكلّم")
	}
	return lipgloss.JoinVertical(lipgloss.Center, latin.Render(wordmark), "", arabic.Render("تكلّم"))
}
