// SPDX-License-Identifier: MPL-2.0

package finder

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/manifest"
)

// CorePackage is the root package of the components shipped with Tapestry.
const CorePackage = "org.apache.tapestry5.corelib"

const (
	// ClassApplicationLibrary is a packaged third-party library.
	ClassApplicationLibrary Class = iota
	// ClassCoreLibrary is any root holding CorePackage.
	ClassCoreLibrary
	// ClassProjectSource is a folder of the scanned project.
	ClassProjectSource
	// ClassDependencySource is a folder of another workspace project.
	ClassDependencySource
)

// ErrNoBootstrap is returned when a dependency project declares no module class.
var ErrNoBootstrap = errors.New("no Tapestry module class declared")

// Class is the role a classpath root plays in a scan.
type Class int

// String returns the class name used in reports.
func (c Class) String() string {
	switch c {
	case ClassCoreLibrary:
		return "core-library"
	case ClassApplicationLibrary:
		return "application-library"
	case ClassProjectSource:
		return "project-source"
	case ClassDependencySource:
		return "dependency-source"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Classify determines the role of root for a scan of project. The core
// check comes first regardless of the root's kind. When the root's children
// cannot be enumerated the root is classified as not holding CorePackage and
// the enumeration error is returned alongside the class.
func Classify(root classpath.Root, project *classpath.Project) (Class, error) {
	core, err := root.HasPackage(CorePackage)
	switch {
	case core:
		return ClassCoreLibrary, nil
	case root.Kind() == classpath.KindArchive:
		return ClassApplicationLibrary, err
	}
	if owner := root.Project(); owner != nil && project != nil && owner.Name() == project.Name() {
		return ClassProjectSource, err
	}
	return ClassDependencySource, err
}

// ResolveBootstrapClass returns the module class declared by the manifest
// found in the project's source folders. The first readable manifest with a
// Tapestry-Module-Classes attribute wins.
func ResolveBootstrapClass(project *classpath.Project) (string, error) {
	roots, err := project.SourceRoots()
	if err != nil {
		return "", err
	}

	var errs []error
	for _, root := range roots {
		m, err := manifest.Read(root)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", root.Path(), err))
			continue
		}
		if bootstrap, ok := m.BootstrapClass(); ok {
			return bootstrap, nil
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", fmt.Errorf("project %s: %w", project.Name(), ErrNoBootstrap)
}
