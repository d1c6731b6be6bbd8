package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBorder     = lipgloss.Color("62")
	colorFocus      = lipgloss.Color("205")
	colorQuery      = lipgloss.Color("220")
	colorSelectedFg = lipgloss.Color("230")
	colorFlash      = lipgloss.Color("10")
	colorDanger     = lipgloss.Color("9")
	colorMuted      = lipgloss.Color("245")
	colorKeyword    = lipgloss.Color("37")
	colorSuggestion = lipgloss.Color("240")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Background(colorBorder).
			Foreground(colorSelectedFg)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	keywordStyle = lipgloss.NewStyle().Foreground(colorKeyword)

	flashStyle = lipgloss.NewStyle().Foreground(colorFlash)

	errorStyle = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
)

// paneStyle is the bordered frame shared by both panes.
func paneStyle(width, height int, focused bool) lipgloss.Style {
	border := colorBorder
	if focused {
		border = colorFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Height(height)
}
