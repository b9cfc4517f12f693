package tui

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor  = lipgloss.Color("#14B8A6")
	MutedColor   = lipgloss.Color("#6B7280")
	TextColor    = lipgloss.Color("#E5E7EB")
	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#22C55E")

	TitleStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 2)

	ActiveTabStyle = TabStyle.
			Foreground(AccentColor).
			Bold(true).
			Underline(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(MutedColor)

	FieldErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	SuccessBannerStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true).
				Padding(0, 1)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true).
				Padding(0, 1)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor).Padding(1, 0, 0, 0)
)
