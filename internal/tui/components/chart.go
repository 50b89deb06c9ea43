package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Bar is one line of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // rendered after the bar
}

// HBarChart renders labeled horizontal bars scaled to the largest value.
// width is the inner width available to the chart.
func HBarChart(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-textW-2, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(labelW)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	trackStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := 0
		if peak > 0 {
			n = int(b.Value / peak * float64(barW))
		}
		if n == 0 && b.Value > 0 {
			n = 1
		}
		n = min(n, barW)
		lines = append(lines, labelStyle.Render(Truncate(b.Label, labelW))+space+
			barStyle.Render(strings.Repeat("█", n))+
			trackStyle.Render(strings.Repeat("·", barW-n))+space+
			textStyle.Render(b.Text))
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens s to limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
