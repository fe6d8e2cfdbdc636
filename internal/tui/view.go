package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/stepthrough/internal/input"
)

const (
	frameStripRow    = 2
	frameStripPrefix = "frames  "
)

type hitBox struct {
	id     string
	x0, x1 int
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStepLine())
	b.WriteString("\n")
	b.WriteString(m.renderFrameStrip())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())

	bottom := m.renderStatusBar() + "\n" + m.renderFooter()
	bodyHeight := max(1, m.height-2)
	base := padLines(clipHeight(b.String(), bodyHeight), bodyHeight) + "\n" + bottom
	if m.modalOpen() {
		return overlayCenter(base, m.renderModal(), m.width, m.height)
	}
	return base
}

func padLines(s string, height int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	if !m.player.Loaded() {
		return titleStyle.Render("stepthrough") + "  " + mutedStyle.Render("no trace loaded")
	}
	pos, _ := m.player.Position()
	parts := []string{
		titleStyle.Render(m.player.Trace().Title()),
		fmt.Sprintf("step %d/%d", pos+1, m.player.TotalSteps()),
	}
	if m.player.IsComplete() {
		parts = append(parts, completeStyle.Render("complete"))
	}
	mode := "off"
	if m.player.PredictionMode() {
		mode = "on"
	}
	parts = append(parts, mutedStyle.Render("predict "+mode))
	if stats := m.player.Stats(); stats.Total > 0 {
		parts = append(parts, fmt.Sprintf("score %d/%d", stats.Correct, stats.Total))
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.width, "")
}

func (m *Model) renderStepLine() string {
	step, ok := m.player.CurrentStep()
	if !ok {
		return ""
	}
	return stepTypeStyle.Render(step.Type)
}

// frameHits lays out the frame strip. View and the mouse hit test share it.
func (m *Model) frameHits() []hitBox {
	frames := m.player.Frames()
	out := make([]hitBox, 0, len(frames))
	x := ansi.StringWidth(frameStripPrefix)
	for _, id := range frames {
		w := ansi.StringWidth("[" + id + "]")
		out = append(out, hitBox{id: id, x0: x, x1: x + w})
		x += w + 1
	}
	return out
}

func (m *Model) renderFrameStrip() string {
	hits := m.frameHits()
	if len(hits) == 0 {
		return mutedStyle.Render(frameStripPrefix + "-")
	}
	active, _ := m.player.EffectiveHighlight()
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		style := frameStyle
		if h.id == active {
			style = frameActiveStyle
		}
		parts = append(parts, style.Render("["+h.id+"]"))
	}
	return mutedStyle.Render(frameStripPrefix) + strings.Join(parts, " ")
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionMotion {
		return
	}
	if msg.Y == frameStripRow {
		for _, h := range m.frameHits() {
			if msg.X >= h.x0 && msg.X < h.x1 {
				m.player.HoverEnter(h.id)
				return
			}
		}
	}
	m.player.HoverLeave()
}

func (m *Model) renderBody() string {
	var sections []string
	if step, ok := m.player.CurrentStep(); ok && step.Description != "" {
		sections = append(sections, lipgloss.NewStyle().Width(max(20, m.width-2)).Render(step.Description))
	}
	if card := m.renderPredictionCard(); card != "" {
		sections = append(sections, card)
	}
	if fb := m.renderFeedback(); fb != "" {
		sections = append(sections, fb)
	}
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderPredictionCard() string {
	point, ok := m.player.ActivePrediction()
	if !ok {
		return ""
	}
	lines := []string{titleStyle.Render("Predict: ") + point.Question}
	for i, c := range point.Choices {
		marker := "  "
		label := fmt.Sprintf("%d. %s", i+1, c.Label)
		if i == m.cursor {
			marker = choiceCursorStyle.Render("> ")
			label = choiceCursorStyle.Render(label)
		}
		lines = append(lines, marker+label)
	}
	if point.Hint != "" {
		lines = append(lines, mutedStyle.Render("hint: "+point.Hint))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFeedback() string {
	out := m.feedback
	if out == nil {
		return ""
	}
	var head string
	switch {
	case out.Skipped:
		head = mutedStyle.Render("Skipped. Answer: " + out.Point.ChoiceLabel(out.Point.CorrectAnswer))
	case out.Correct:
		head = correctStyle.Render("Correct!")
	default:
		head = wrongStyle.Render("Not quite. Answer: " + out.Point.ChoiceLabel(out.Point.CorrectAnswer))
	}
	if out.Point.Explanation == "" {
		return head
	}
	return head + "\n" + out.Point.Explanation
}

func (m *Model) renderStatusBar() string {
	if m.opening {
		return renderBar(statusBarStyle, max(1, m.width), m.openIn.View(), colorSurface1)
	}
	msg := strings.TrimSpace(m.status)
	if msg == "" {
		msg = "Ready"
	}
	if m.statusErr {
		return renderBar(statusErrBarStyle, max(1, m.width), msg, colorSurface0)
	}
	return renderBar(statusBarStyle, max(1, m.width), msg, colorSurface0)
}

// activeTier is the highest tier whose handler currently receives keys.
func (m *Model) activeTier() int {
	switch {
	case m.modalOpen():
		return input.TierModal
	case m.predictionReg.Active():
		return input.TierPrediction
	}
	return input.TierPlayback
}

func (m *Model) footerBindings() []key.Binding {
	if m.opening {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return m.keys.Help(m.activeTier())
}

func (m *Model) renderFooter() string {
	bg := colorMantle
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Background(bg)
	descStyle := lipgloss.NewStyle().Foreground(colorMuted).Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	kbs := m.footerBindings()
	parts := make([]string, 0, len(kbs))
	for _, kb := range kbs {
		h := kb.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+space+descStyle.Render(h.Desc))
	}
	line := strings.Join(parts, sep)
	if line == "" {
		line = descStyle.Render("No shortcuts")
	}
	return renderBar(footerStyle, max(1, m.width), line, bg)
}

func (m *Model) helpMarkdown() string {
	var b strings.Builder
	if t := m.player.Trace(); t != nil {
		fmt.Fprintf(&b, "# %s\n\n", t.Title())
		fmt.Fprintf(&b, "- **Algorithm:** %s\n- **Steps:** %d\n- **Prediction points:** %d\n\n",
			t.Metadata.Algorithm, t.Len(), len(t.Metadata.PredictionPoints))
	} else {
		b.WriteString("# stepthrough\n\nNo trace loaded.\n\n")
	}
	b.WriteString("## Keys\n\n| key | action |\n|---|---|\n")
	for _, tier := range []int{input.TierPlayback, input.TierPrediction} {
		for _, kb := range m.keys.Help(tier) {
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return b.String()
}

func (m *Model) renderModal() string {
	md := m.helpMarkdown()
	width := max(30, min(72, m.width-8))
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return modalStyle.Render(md)
	}
	out, err := r.Render(md)
	if err != nil {
		return modalStyle.Render(md)
	}
	return modalStyle.Render(strings.Trim(out, "\n"))
}
