// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/webtools/tapfind/internal/report"
)

// ColorVerbose is light gray, used for verbose output and supplementary details.
const ColorVerbose = lipgloss.Color("#9CA3AF")

// Base styles built from the report palette so CLI chrome and reports match.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(report.ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(report.ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(report.ColorWarning)

	// CmdStyle is for command names, keys and paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(report.ColorHighlight)

	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	VerboseHighlightStyle = lipgloss.NewStyle().
				Foreground(report.ColorHighlight)
)
