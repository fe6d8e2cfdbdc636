package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderBar pads or truncates text to exactly width cells on bg.
func renderBar(style lipgloss.Style, width int, text string, bg lipgloss.TerminalColor) string {
	inner := max(1, width-style.GetHorizontalPadding())
	line := ansi.Truncate(strings.ReplaceAll(text, "\n", " "), inner, "")
	if w := ansi.StringWidth(line); w < inner {
		line += strings.Repeat(" ", inner-w)
	}
	return style.Background(bg).Width(width).MaxWidth(width).Render(line)
}

// overlayCenter draws card centred over a width x height canvas of base.
func overlayCenter(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	canvas := canvasLines(base, width, height)
	cardLines := strings.Split(card, "\n")
	cardWidth := 0
	for _, l := range cardLines {
		cardWidth = max(cardWidth, ansi.StringWidth(l))
	}
	x := max(0, (width-cardWidth)/2)
	y := max(0, (height-len(cardLines))/2)
	for i, l := range cardLines {
		row := y + i
		if row >= len(canvas) {
			break
		}
		left := ansi.Truncate(canvas[row], x, "")
		middle := padRight(l, cardWidth)
		right := cutLeft(canvas[row], x+cardWidth)
		canvas[row] = padRight(left+middle+right, width)
	}
	return strings.Join(canvas, "\n")
}

func canvasLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padRight(lines[i], width)
	}
	return lines
}

func cutLeft(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return strings.TrimPrefix(s, ansi.Truncate(s, cols, ""))
}

func padRight(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func clipHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
