// Package cli renders salary breakups for the terminal using lipgloss.
package cli

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor = lipgloss.Color("#FF9F1C")
	SuccessColor = lipgloss.Color("#2EC4B6")
	ErrorColor   = lipgloss.Color("#E71D36")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true)

	// HighlightStyle marks the in-hand row and the best regime.
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SuccessColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

func FormatTitle(text string) string {
	return TitleStyle.Render(text)
}

func FormatError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}
