package main

import (
	"github.com/charmbracelet/lipgloss"

	"collatzgraph/internal/domain"
)

// Palette matches the node colors of the DOT export
var (
	colorRed   = lipgloss.Color("#e06c75")
	colorGreen = lipgloss.Color("#98c379")
	colorBlue  = lipgloss.Color("#61afef")
	colorMuted = lipgloss.Color("#5c6370")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// colorStyle renders a value in its color class
func colorStyle(c domain.Color) lipgloss.Style {
	switch c {
	case domain.ColorRed:
		return lipgloss.NewStyle().Foreground(colorRed)
	case domain.ColorGreen:
		return lipgloss.NewStyle().Foreground(colorGreen)
	default:
		return lipgloss.NewStyle().Foreground(colorBlue)
	}
}
