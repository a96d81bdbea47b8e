package console

import "github.com/charmbracelet/lipgloss"

// Brand palette of the landing page
var (
	Black = lipgloss.Color("#000000")
	White = lipgloss.Color("#F5F5F5")
	Cyan  = lipgloss.Color("#00FFFF")
	Red   = lipgloss.Color("#FF0033")
	Muted = lipgloss.Color("#717182")
)

// Styles groups the lipgloss styles used by the views
type Styles struct {
	Title    lipgloss.Style
	Accent   lipgloss.Style
	Kanji    lipgloss.Style
	Muted    lipgloss.Style
	Panel    lipgloss.Style
	Stat     lipgloss.Style
	Status   lipgloss.Style
	Warning  lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns the console styles
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(White),
		Accent:   lipgloss.NewStyle().Bold(true).Foreground(Cyan),
		Kanji:    lipgloss.NewStyle().Foreground(Red),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Panel:    lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(Cyan).Padding(0, 1),
		Stat:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Cyan).Padding(0, 1).Width(22),
		Status:   lipgloss.NewStyle().Foreground(Cyan),
		Warning:  lipgloss.NewStyle().Bold(true).Foreground(Red),
		Selected: lipgloss.NewStyle().Foreground(Black).Background(Cyan).Bold(true),
	}
}
