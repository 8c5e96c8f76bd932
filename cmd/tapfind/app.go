// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/webtools/tapfind/internal/config"
	"github.com/webtools/tapfind/internal/issue"
	"github.com/webtools/tapfind/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and reaches configuration and output through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		configPath string
		workspace  string
		verbose    bool
	}
)

// NewApp builds an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// loadConfig loads the configuration for the workspace named by the root
// flags and applies the --verbose flag on top of it.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		BaseDir:        flags.workspace,
	})
	if err != nil {
		return nil, err
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, nil
}

// newLogger returns the process logger. Verbose mode logs every root at
// debug level; otherwise only errors reach stderr.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.ErrorLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "tapfind",
		Level:  level,
	})
}

// warn prints a non-fatal problem in the same layout as fail.
func (a *App) warn(err error, verbose bool) {
	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
}

// fail prints err, plus its issue guide in verbose mode, and converts it
// into an ExitError so Cobra does not print it a second time.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: types.ExitError, Err: err}
	}
	if exitErr.Err == nil {
		return exitErr
	}

	fmt.Fprintln(a.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(exitErr.Err, verbose))
	var ae *issue.ActionableError
	if verbose && errors.As(exitErr.Err, &ae) {
		if guide, guideErr := ae.Guide("auto"); guideErr == nil && guide != "" {
			fmt.Fprint(a.stderr, guide)
		}
	}
	return exitErr
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
