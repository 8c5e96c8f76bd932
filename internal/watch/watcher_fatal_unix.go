// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"slices"
	"syscall"
)

// fatalErrnos are inotify resource exhaustion codes. A watcher that hits one
// stops seeing events for part of the workspace, so Run gives up instead of
// reporting stale results.
var fatalErrnos = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}

func isFatalFsnotifyError(err error) bool {
	return slices.ContainsFunc(fatalErrnos, func(errno syscall.Errno) bool { return errors.Is(err, errno) })
}
