package report

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan   = lipgloss.Color("#00E5FF") // Primary highlight
	Yellow = lipgloss.Color("#FFB500") // Warnings
	Green  = lipgloss.Color("#2AFFAA") // Success
	Red    = lipgloss.Color("#FF5555") // Errors
	Muted  = lipgloss.Color("#6C7280") // Muted text
	Text   = lipgloss.Color("#ECEFF4") // Primary text
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	labelStyle = lipgloss.NewStyle().Foreground(Muted).PaddingRight(2)
	valueStyle = lipgloss.NewStyle().Foreground(Text)
	goodStyle  = lipgloss.NewStyle().Foreground(Green)
	warnStyle  = lipgloss.NewStyle().Foreground(Yellow)
	errStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)
)
