package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the dashboard
type Styles struct {
	Title  lipgloss.Style
	Border lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
}

// DefaultStyles returns the default dashboard styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
	}
}
