// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the classpath,
// resolver and feature packages. These are foundation types that carry
// semantic meaning and validation but have no domain-specific dependencies.
//
// This package is a leaf dependency: it imports only the standard library.
package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidQualifiedName is the sentinel error wrapped by InvalidQualifiedNameError.
var ErrInvalidQualifiedName = errors.New("invalid qualified name")

type (
	// QualifiedName is a dotted Java name such as "com.example.app.services.AppModule"
	// or a package name such as "com.example.app". Internal (slash-separated)
	// names from class files are converted with FromInternalName.
	QualifiedName string

	// InvalidQualifiedNameError is returned when a QualifiedName has an empty
	// segment or a segment that is not a Java identifier.
	InvalidQualifiedNameError struct {
		Value  QualifiedName
		Reason string
	}

	// JavaType is a resolved handle to a top-level Java type: the primary type
	// declared by a class file or compilation unit.
	JavaType struct {
		// Name is the simple type name (e.g. "Grid").
		Name string `json:"name" yaml:"name"`
		// Package is the declaring package; empty for the default package.
		Package QualifiedName `json:"package" yaml:"package"`
		// Path is the file the type was read from (a jar path or a filesystem path).
		Path string `json:"path" yaml:"path"`
		// Binary is true when the type was resolved from a .class file.
		Binary bool `json:"binary" yaml:"binary"`
	}
)

// FromInternalName converts a class-file internal name ("a/b/C") to a QualifiedName.
func FromInternalName(internal string) QualifiedName {
	return QualifiedName(strings.ReplaceAll(internal, "/", "."))
}

// String returns the string representation of the QualifiedName.
func (n QualifiedName) String() string { return string(n) }

// InternalName returns the slash-separated form used inside class files and jars.
func (n QualifiedName) InternalName() string { return strings.ReplaceAll(string(n), ".", "/") }

// Parent returns the name without its last segment ("" for single-segment names).
func (n QualifiedName) Parent() QualifiedName {
	if i := strings.LastIndexByte(string(n), '.'); i >= 0 {
		return n[:i]
	}
	return ""
}

// SimpleName returns the last segment of the name.
func (n QualifiedName) SimpleName() string {
	if i := strings.LastIndexByte(string(n), '.'); i >= 0 {
		return string(n[i+1:])
	}
	return string(n)
}

// Child appends a segment to the name.
func (n QualifiedName) Child(segment string) QualifiedName {
	if n == "" {
		return QualifiedName(segment)
	}
	return n + "." + QualifiedName(segment)
}

// IsValid returns whether every dot-separated segment is a Java identifier.
func (n QualifiedName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" {
		return false, []error{&InvalidQualifiedNameError{Value: n, Reason: "empty"}}
	}
	for _, seg := range strings.Split(string(n), ".") {
		if !isIdentifier(seg) {
			return false, []error{&InvalidQualifiedNameError{Value: n, Reason: fmt.Sprintf("segment %q is not an identifier", seg)}}
		}
	}
	return true, nil
}

// Error implements the error interface for InvalidQualifiedNameError.
func (e *InvalidQualifiedNameError) Error() string {
	return fmt.Sprintf("invalid qualified name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidQualifiedName for errors.Is() compatibility.
func (e *InvalidQualifiedNameError) Unwrap() error { return ErrInvalidQualifiedName }

// FullyQualifiedName returns Package + "." + Name, or Name in the default package.
func (t JavaType) FullyQualifiedName() QualifiedName {
	return t.Package.Child(t.Name)
}

// isIdentifier reports whether s is a (loosely checked) Java identifier.
// '$' is accepted because it is legal in binary names.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
