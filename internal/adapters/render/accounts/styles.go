package accounts

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	account   lipgloss.Style
	login     lipgloss.Style
	id        lipgloss.Style
	active    lipgloss.Style
	autologin lipgloss.Style
	detail    lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		login:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		id:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		active:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("119")),
		autologin: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
	}
}
