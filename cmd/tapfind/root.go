// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for tapfind.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "tapfind",
		Short: "Discover the components, pages, mixins and services of a Tapestry project",
		Long: TitleStyle.Render("tapfind") + SubtitleStyle.Render(" - Tapestry feature discovery") + `

tapfind walks the classpath of a Java project (its source folders, its
output folders, its jars and the projects it depends on) and lists every
component, page, mixin and service a template can refer to, together with
the library prefix it is addressed by.

` + SubtitleStyle.Render("Examples:") + `
  tapfind scan                          Scan the project in the current directory
  tapfind scan -w ~/code -p shop        Scan one project of a multi-project workspace
  tapfind scan --format json --no-jvm   Machine-readable output without running the JVM
  tapfind watch                         Rescan whenever the classpath changes
  tapfind registry list                 Show known library prefixes
  tapfind config show                   Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/tapfind/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.workspace, "workspace", "w", ".", "workspace directory holding the projects")

	rootCmd.AddCommand(newScanCommand(app, flags))
	rootCmd.AddCommand(newWatchCommand(app, flags))
	rootCmd.AddCommand(newRegistryCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}
