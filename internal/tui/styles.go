package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scanhub/scanhub/internal/models"
)

// Severity colors
var (
	colorCritical = lipgloss.Color("#FF0000")
	colorHigh     = lipgloss.Color("#FF8800")
	colorMedium   = lipgloss.Color("#FFFF00")
	colorLow      = lipgloss.Color("#00FF00")
	colorMuted    = lipgloss.Color("#888888")
	colorAccent   = lipgloss.Color("#7B68EE")
	colorBorder   = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// severityStyle returns the lipgloss style for a severity level.
func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case models.SeverityCritical:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	case models.SeverityHigh:
		return lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
	case models.SeverityMedium:
		return lipgloss.NewStyle().Foreground(colorMedium)
	case models.SeverityLow:
		return lipgloss.NewStyle().Foreground(colorLow)
	case models.SeverityInfo:
		return lipgloss.NewStyle().Foreground(colorMuted)
	default:
		return lipgloss.NewStyle()
	}
}

// riskLevelStyle returns the lipgloss style for a risk level.
func riskLevelStyle(level string) lipgloss.Style {
	switch level {
	case models.RiskCritical:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	case models.RiskHigh:
		return lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
	case models.RiskMediumHigh:
		return lipgloss.NewStyle().Foreground(colorHigh)
	case models.RiskMedium:
		return lipgloss.NewStyle().Foreground(colorMedium)
	case models.RiskLow:
		return lipgloss.NewStyle().Foreground(colorLow)
	default:
		return lipgloss.NewStyle()
	}
}
