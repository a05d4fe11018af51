package cli

import "github.com/charmbracelet/lipgloss"

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	planStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	actionStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	resultStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	costStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)
)
