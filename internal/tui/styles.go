package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorMuted   = colorOverlay1
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle        = lipgloss.NewStyle().Foreground(colorMuted)
	stepTypeStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	completeStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	frameStyle        = lipgloss.NewStyle().Foreground(colorText)
	frameActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorMantle).Background(colorPeach)
	cardStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	choiceCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	correctStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	wrongStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	footerStyle       = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	statusBarStyle    = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	statusErrBarStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true).Padding(0, 1)
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
)
