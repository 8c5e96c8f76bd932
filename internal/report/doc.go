// SPDX-License-Identifier: MPL-2.0

// Package report renders the outcome of a feature scan.
//
// A Document flattens a finder.Result and the project model into a stable
// shape that is written as styled terminal text (lipgloss), Markdown rendered
// through glamour, JSON or YAML.
package report
