// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/webtools/tapfind/pkg/types"
)

// ExitError carries the process exit code out of a RunE handler. The message
// has already been printed when Err is set.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + e.Code.String()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeOf maps a command error to the process exit code. Errors that are
// not ExitErrors, and out-of-range codes, exit with types.ExitError.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitOK
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code.Validate() != nil {
		return types.ExitError
	}
	return exitErr.Code
}
