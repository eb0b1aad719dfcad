package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/autosys/pkg/rollback"
	"github.com/arthur-debert/autosys/pkg/steps"
)

// Colors adapt to light and dark terminals
var (
	PrimaryColor = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#A0A8B0"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD54F"}
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// StatusStyle returns the badge style for an action status
func StatusStyle(status steps.Status) *pterm.Style {
	switch status {
	case steps.StatusApplied:
		return pterm.NewStyle(pterm.FgGreen)
	case steps.StatusConflict:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case steps.StatusWarning:
		return pterm.NewStyle(pterm.FgYellow)
	case steps.StatusPlanned:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// OutcomeStyle returns the badge style for a rollback outcome
func OutcomeStyle(o rollback.Outcome) *pterm.Style {
	switch o {
	case rollback.Reverted:
		return pterm.NewStyle(pterm.FgGreen)
	case rollback.Failed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case rollback.Manual:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}
