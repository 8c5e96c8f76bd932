// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"slices"
	"syscall"
)

// fatalErrnos are Win32 codes after which ReadDirectoryChangesW cannot
// recover: too many open handles (4), an invalidated directory handle (6)
// and an unallocatable notification buffer (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}

func isFatalFsnotifyError(err error) bool {
	return slices.ContainsFunc(fatalErrnos, func(errno syscall.Errno) bool { return errors.Is(err, errno) })
}
