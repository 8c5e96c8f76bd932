// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"io"
)

// ResourceOpener opens non-Java resources of a classpath root.
type ResourceOpener interface {
	Resource(name string) (io.ReadCloser, error)
}

// Read looks up and parses the manifest of a root. A missing manifest yields
// an error wrapping fs.ErrNotExist.
func Read(root ResourceOpener) (m *Manifest, err error) {
	rc, err := root.Resource(Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close manifest: %w", closeErr)
		}
	}()

	return Parse(rc)
}
