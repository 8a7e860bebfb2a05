package console

import "github.com/charmbracelet/lipgloss"

var (
	brandPrimary = lipgloss.Color("#1E3A8A")
	brandWarning = lipgloss.Color("#F59E0B")
	brandError   = lipgloss.Color("#EF4444")
	brandAccent  = lipgloss.Color("#10B981")

	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brandAccent)

	warningStyle = lipgloss.NewStyle().
			Foreground(brandWarning).
			Bold(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)
)
