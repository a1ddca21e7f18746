package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app      lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	error    lipgloss.Style
	inactive lipgloss.Style
}

func newStyles() styles {
	return styles{
		app:      lipgloss.NewStyle().Padding(1, 2),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
