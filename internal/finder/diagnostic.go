// SPDX-License-Identifier: MPL-2.0

package finder

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning is a recoverable problem; the scan result may be partial.
	SeverityWarning Severity = "warning"
	// SeverityError is a failure that lost a whole root or the whole scan.
	SeverityError Severity = "error"
)

const (
	// CodeRootsUnavailable means the classpath roots could not be listed.
	CodeRootsUnavailable DiagnosticCode = "roots_unavailable"
	// CodeLoaderUnavailable means the class lookup context could not be built
	// and library modules are not executed during this scan.
	CodeLoaderUnavailable DiagnosticCode = "loader_unavailable"
	// CodeOutputDirSkipped means an output folder was left off the classpath.
	CodeOutputDirSkipped DiagnosticCode = "output_dir_skipped"
	// CodeRootChildrenFailed means the packages of a root could not be listed.
	CodeRootChildrenFailed DiagnosticCode = "root_children_failed"
	// CodeManifestUnreadable means a manifest exists but could not be read.
	CodeManifestUnreadable DiagnosticCode = "manifest_unreadable"
	// CodeClassFilesFailed means the class files of a package could not be listed.
	CodeClassFilesFailed DiagnosticCode = "class_files_failed"
	// CodeCompilationUnitsFailed means the sources of a package could not be listed.
	CodeCompilationUnitsFailed DiagnosticCode = "compilation_units_failed"
	// CodePrimaryTypeFailed means a class or source file could not be read.
	CodePrimaryTypeFailed DiagnosticCode = "primary_type_failed"
	// CodePrefixUnknown means features were registered under the "?" prefix.
	CodePrefixUnknown DiagnosticCode = "prefix_unknown"
	// CodeBootstrapUnresolved means a library declares a module class but no
	// resolution tier produced its package info.
	CodeBootstrapUnresolved DiagnosticCode = "bootstrap_unresolved"
)

var (
	// ErrInvalidSeverity is the sentinel behind InvalidSeverityError.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidDiagnosticCode is the sentinel behind InvalidDiagnosticCodeError.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic is a non-fatal problem met during a scan, returned to the
	// caller for rendering.
	Diagnostic struct {
		Severity Severity       `json:"severity" yaml:"severity"`
		Code     DiagnosticCode `json:"code" yaml:"code"`
		Message  string         `json:"message" yaml:"message"`
		// Path is the root, package or file concerned (optional).
		Path string `json:"path,omitempty" yaml:"path,omitempty"`
		// Cause is the underlying error (optional).
		Cause error `json:"-" yaml:"-"`
	}

	// InvalidSeverityError is returned when a Severity is not known.
	InvalidSeverityError struct {
		Value Severity
	}

	// InvalidDiagnosticCodeError is returned when a DiagnosticCode is not known.
	InvalidDiagnosticCodeError struct {
		Value DiagnosticCode
	}
)

var knownCodes = map[DiagnosticCode]bool{
	CodeRootsUnavailable:       true,
	CodeLoaderUnavailable:      true,
	CodeOutputDirSkipped:       true,
	CodeRootChildrenFailed:     true,
	CodeManifestUnreadable:     true,
	CodeClassFilesFailed:       true,
	CodeCompilationUnitsFailed: true,
	CodePrimaryTypeFailed:      true,
	CodePrefixUnknown:          true,
	CodeBootstrapUnresolved:    true,
}

// Error implements the error interface.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid diagnostic severity %q (expected warning or error)", e.Value)
}

// Unwrap returns ErrInvalidSeverity for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error { return ErrInvalidSeverity }

// Error implements the error interface.
func (e *InvalidDiagnosticCodeError) Error() string {
	return fmt.Sprintf("invalid diagnostic code %q", e.Value)
}

// Unwrap returns ErrInvalidDiagnosticCode for errors.Is() compatibility.
func (e *InvalidDiagnosticCodeError) Unwrap() error { return ErrInvalidDiagnosticCode }

// IsValid returns whether the severity is known.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{&InvalidSeverityError{Value: s}}
	}
}

// IsValid returns whether the code is one the finder emits.
func (c DiagnosticCode) IsValid() (bool, []error) {
	if knownCodes[c] {
		return true, nil
	}
	return false, []error{&InvalidDiagnosticCodeError{Value: c}}
}

// String returns the code.
func (c DiagnosticCode) String() string { return string(c) }
