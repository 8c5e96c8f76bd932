// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/webtools/tapfind/internal/finder"
	"github.com/webtools/tapfind/pkg/feature"
)

// Palette shared by the text report and the CLI.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Styles holds the lipgloss styles used by the text renderer.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Name    lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the colored palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight),
		Name:    lipgloss.NewStyle().Foreground(ColorHighlight),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
		OK:      lipgloss.NewStyle().Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(ColorError),
	}
}

// Text renders doc as terminal text: a status line, features grouped by
// kind, diagnostics and, when verbose, the per-root table.
func Text(doc Document, opts Options) string {
	st := opts.Styles
	var sb strings.Builder

	sb.WriteString(st.Title.Render("Project " + doc.Project))
	sb.WriteString("  ")
	sb.WriteString(statusStyle(st, doc.Status).Render(string(doc.Status)))
	if doc.Duration != "" {
		sb.WriteString(st.Muted.Render(" in " + doc.Duration))
	}
	sb.WriteString("\n")
	if doc.Message != "" {
		sb.WriteString(st.Muted.Render(doc.Message))
		sb.WriteString("\n")
	}
	s := doc.Summary
	fmt.Fprintf(&sb, "%d components, %d pages, %d mixins, %d services from %d of %d roots\n",
		s.Components, s.Pages, s.Mixins, s.Services, s.Walked, s.Roots)

	for _, k := range feature.Kinds() {
		fs := doc.FeaturesOf(k)
		if len(fs) == 0 {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(st.Heading.Render(capitalize(k.SubPackage())))
		sb.WriteString("\n")
		width := 0
		for _, f := range fs {
			width = max(width, len(f.LogicalName))
		}
		for _, f := range fs {
			pad := strings.Repeat(" ", width-len(f.LogicalName))
			fmt.Fprintf(&sb, "  %s%s  %s\n", st.Name.Render(f.LogicalName), pad, st.Muted.Render(f.Class))
		}
	}

	if opts.Verbose && len(doc.Roots) > 0 {
		sb.WriteString("\n")
		sb.WriteString(st.Heading.Render("Roots"))
		sb.WriteString("\n")
		for _, r := range doc.Roots {
			marker := st.Muted.Render("-")
			if r.Walked {
				marker = st.OK.Render("+")
			}
			fmt.Fprintf(&sb, "  %s %s %s", marker, r.Root, st.Muted.Render("("+r.Class.String()+")"))
			if r.Walked {
				fmt.Fprintf(&sb, " %s features=%d", describeInfo(r), r.Features)
			}
			sb.WriteString("\n")
		}
	}

	if len(doc.Diagnostics) > 0 {
		sb.WriteString("\n")
		sb.WriteString(st.Heading.Render("Diagnostics"))
		sb.WriteString("\n")
		for _, d := range doc.Diagnostics {
			label := st.Warning.Render("warning")
			if d.Severity == finder.SeverityError {
				label = st.Error.Render("error")
			}
			fmt.Fprintf(&sb, "  %s [%s] %s\n", label, d.Code, d.Message)
			if d.Path != "" {
				sb.WriteString("    ")
				sb.WriteString(st.Muted.Render(d.Path))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func statusStyle(st Styles, s finder.Status) lipgloss.Style {
	switch s {
	case finder.StatusOK:
		return st.OK
	case finder.StatusCancel:
		return st.Warning
	default:
		return st.Error
	}
}

// describeInfo formats the resolved prefix and root package of a walked root.
func describeInfo(r finder.RootReport) string {
	prefix := r.Info.Prefix
	if prefix == "" {
		prefix = "(none)"
	}
	return fmt.Sprintf("prefix=%s package=%s tier=%s", prefix, r.Info.RootPackage, r.Info.Tier)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
