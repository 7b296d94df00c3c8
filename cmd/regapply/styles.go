package main

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	pathColor    = lipgloss.Color("#00D7FF")
	mutedColor   = lipgloss.Color("#666666")

	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(pathColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// styled renders text with s unless colors are disabled.
func styled(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}
