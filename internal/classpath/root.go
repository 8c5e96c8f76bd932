// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"io"

	"github.com/webtools/tapfind/pkg/types"
)

const (
	// KindArchive is a packaged library (.jar/.zip).
	KindArchive RootKind = iota
	// KindSource is a source folder holding compilation units.
	KindSource
	// KindOutput is a class folder holding compiled classes.
	KindOutput
)

type (
	// RootKind distinguishes the representation of a classpath root.
	RootKind int

	// Root is one classpath entry of a project.
	Root interface {
		// Name is the element name: the archive file name or the
		// project-relative folder path.
		Name() string
		// Path is the absolute filesystem path of the root.
		Path() string
		Kind() RootKind
		// Project is the project whose classpath declares the root.
		Project() *Project
		Exists() bool
		// Packages lists every package in the root.
		Packages() ([]Package, error)
		// HasPackage reports whether the package exists directly in the root.
		// An error means the root's children could not be enumerated.
		HasPackage(name types.QualifiedName) (bool, error)
		// Resource opens a non-Java resource by slash-separated path. It
		// returns an error wrapping fs.ErrNotExist when the resource is absent.
		Resource(name string) (io.ReadCloser, error)
	}

	// Package is a package fragment inside a root.
	Package interface {
		Name() types.QualifiedName
		// Path is the archive path for archive roots, or the package
		// directory for folder roots.
		Path() string
		ClassFiles() ([]TypeRoot, error)
		CompilationUnits() ([]TypeRoot, error)
	}

	// TypeRoot is a class file or a compilation unit.
	TypeRoot interface {
		// Name is the file name, e.g. "Grid.class" or "Index.java".
		Name() string
		Exists() bool
		// PrimaryType returns the top-level type named after the file, or
		// nil when the file declares no such type.
		PrimaryType() (*types.JavaType, error)
	}
)

// String returns a human-readable root kind.
func (k RootKind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindSource:
		return "source"
	case KindOutput:
		return "class folder"
	default:
		return "unknown"
	}
}
