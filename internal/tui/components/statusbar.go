package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// data information on the right.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := info + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return style.Render(left)
	}
	return style.Render(left + strings.Repeat(" ", gap) + right)
}
