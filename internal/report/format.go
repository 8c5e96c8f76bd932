// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

const (
	// FormatText is lipgloss-styled terminal output.
	FormatText Format = "text"
	// FormatMarkdown is Markdown rendered through glamour.
	FormatMarkdown Format = "markdown"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid report format")

type (
	// Format selects a renderer.
	Format string

	// InvalidFormatError is returned for an unknown format name.
	InvalidFormatError struct {
		Value Format
	}

	// Options tunes rendering.
	Options struct {
		// Styles is used by the text renderer. The zero value renders plain text.
		Styles Styles
		// GlamourStyle is the glamour style for Markdown ("auto", "dark",
		// "light", "notty"). Empty means "notty".
		GlamourStyle string
		// RawMarkdown writes the Markdown source without glamour.
		RawMarkdown bool
		// Verbose adds the per-root table to text and Markdown output.
		Verbose bool
	}
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatYAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !slices.Contains(Formats(), f) {
		return "", &InvalidFormatError{Value: f}
	}
	return f, nil
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (expected text, markdown, json or yaml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Write renders doc to w in the given format.
func Write(w io.Writer, format Format, doc Document, opts Options) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, Text(doc, opts))
		return err
	case FormatMarkdown:
		return writeMarkdown(w, doc, opts)
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	default:
		return &InvalidFormatError{Value: format}
	}
}
