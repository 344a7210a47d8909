package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	section    lipgloss.Style
	heading    lipgloss.Style
	detail     lipgloss.Style
	empty      lipgloss.Style
	warning    lipgloss.Style
	present    lipgloss.Style
	voting     lipgloss.Style
	absent     lipgloss.Style
	spoken     lipgloss.Style
	running    lipgloss.Style
	expired    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:    lipgloss.NewStyle().MarginTop(1),
		heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:      lipgloss.NewStyle().Faint(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		present:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		voting:     lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		absent:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		spoken:     lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
		running:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		expired:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
