package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleMet = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	styleUnmet = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleInfo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	styleWarning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindMet
	kindUnmet
	kindInfo
	kindWarning
	kindCritical
	kindTrace
)

// classifyLine styles output by its leading markers. Turn output is tagged
// at the source (notice severity markers, requirement status brackets), so
// classification stays mechanical.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimLeft(line, " ")
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(trimmed, "!! "):
		return kindCritical
	case strings.HasPrefix(trimmed, "! "):
		return kindWarning
	case strings.HasPrefix(trimmed, "* "):
		return kindInfo
	case strings.HasPrefix(trimmed, "[met]"):
		return kindMet
	case strings.HasPrefix(trimmed, "[unmet]"):
		return kindUnmet
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindMet:
		return styleMet.Render(line)
	case kindUnmet:
		return styleUnmet.Render(line)
	case kindInfo:
		return styleInfo.Render(line)
	case kindWarning:
		return styleWarning.Render(line)
	case kindCritical:
		return styleCritical.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
