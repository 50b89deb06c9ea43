package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

// ProgressBar renders the loading bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	filled := int(pct * float64(width))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForShare picks a color by how dominant a share is.
func ColorForShare(fraction float64) lipgloss.Color {
	t := theme.Active
	switch {
	case fraction >= 0.75:
		return t.Magenta
	case fraction >= 0.5:
		return t.Orange
	case fraction >= 0.25:
		return t.Yellow
	default:
		return t.Green
	}
}

// ShareBar renders a labeled share of a whole, e.g. a funding source's
// portion of a cluster.
func ShareBar(label string, fraction float64, pctText string, labelW, barWidth int) string {
	t := theme.Active
	fraction = min(max(fraction, 0), 1)
	color := ColorForShare(fraction)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(labelW)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(Truncate(label, labelW)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fraction) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctText)
}
