// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions. Issues are Markdown guides rendered with glamour for the
// failure classes users hit most: missing workspaces, unusable JVMs, broken
// configuration and registry files.
package issue
