package termview

import "github.com/charmbracelet/lipgloss"

var (
	Indigo  = lipgloss.Color("#3C46B8")
	Slate   = lipgloss.Color("#64748b")
	Green   = lipgloss.Color("#16a34a")
	Amber   = lipgloss.Color("#d97706")
	Crimson = lipgloss.Color("#dc2626")

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Indigo).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(Slate)
	doneStyle    = lipgloss.NewStyle().Foreground(Green)
	pendingStyle = lipgloss.NewStyle().Foreground(Amber)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3730a3")).Bold(true)
)
