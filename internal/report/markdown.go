// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/webtools/tapfind/pkg/feature"
)

// Markdown returns the Markdown source of doc.
func Markdown(doc Document, verbose bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", doc.Project)
	fmt.Fprintf(&sb, "Status: **%s**", doc.Status)
	if doc.Duration != "" {
		fmt.Fprintf(&sb, " in %s", doc.Duration)
	}
	sb.WriteString("\n\n")
	if doc.Message != "" {
		fmt.Fprintf(&sb, "> %s\n\n", doc.Message)
	}

	sb.WriteString("| Kind | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Components | %d |\n", doc.Summary.Components)
	fmt.Fprintf(&sb, "| Pages | %d |\n", doc.Summary.Pages)
	fmt.Fprintf(&sb, "| Mixins | %d |\n", doc.Summary.Mixins)
	fmt.Fprintf(&sb, "| Services | %d |\n\n", doc.Summary.Services)

	for _, k := range feature.Kinds() {
		fs := doc.FeaturesOf(k)
		if len(fs) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", capitalize(k.SubPackage()))
		sb.WriteString("| Name | Class |\n|---|---|\n")
		for _, f := range fs {
			fmt.Fprintf(&sb, "| `%s` | `%s` |\n", f.LogicalName, f.Class)
		}
		sb.WriteString("\n")
	}

	if verbose && len(doc.Roots) > 0 {
		sb.WriteString("## Roots\n\n| Root | Class | Prefix | Package | Tier | Features |\n|---|---|---|---|---|---|\n")
		for _, r := range doc.Roots {
			if !r.Walked {
				fmt.Fprintf(&sb, "| %s | %s | | | | |\n", mdEscape(r.Root), r.Class)
				continue
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | `%s` | %s | %d |\n",
				mdEscape(r.Root), r.Class, mdEscape(r.Info.Prefix), r.Info.RootPackage, r.Info.Tier, r.Features)
		}
		sb.WriteString("\n")
	}

	if len(doc.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(&sb, "- **%s** `%s`: %s", d.Severity, d.Code, mdEscape(d.Message))
			if d.Path != "" {
				fmt.Fprintf(&sb, " (`%s`)", d.Path)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeMarkdown(w io.Writer, doc Document, opts Options) error {
	src := Markdown(doc, opts.Verbose)
	if opts.RawMarkdown {
		_, err := io.WriteString(w, src)
		return err
	}
	style := opts.GlamourStyle
	if style == "" {
		style = "notty"
	}
	out, err := glamour.Render(src, style)
	if err != nil {
		return fmt.Errorf("render markdown report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

var mdReplacer = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`)

func mdEscape(s string) string { return mdReplacer.Replace(s) }
