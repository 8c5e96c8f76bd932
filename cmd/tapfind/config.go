// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webtools/tapfind/internal/config"
)

// newConfigCommand creates the `tapfind config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tapfind configuration",
		Long: `Manage tapfind configuration.

Configuration is stored in:
  - Linux: ~/.config/tapfind/config.cue
  - macOS: ~/Library/Application Support/tapfind/config.cue
  - Windows: %APPDATA%\tapfind\config.cue

A config.cue in the workspace directory is used when the configuration
directory has none. Every key can be overridden with a TAPFIND_* variable
(for example TAPFIND_JVM_ENGINE=docker), also read from a .env file in the
workspace.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, rootFlags)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err, rootFlags.verbose)
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.fail(cmd, err, rootFlags.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	cfg, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{
		ConfigFilePath: rootFlags.configPath,
		BaseDir:        rootFlags.workspace,
	})
	if err != nil {
		return app.fail(cmd, err, rootFlags.verbose)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string) {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s:\n", keyStyle.Render(name))
	}
	field := func(name string, value any) {
		fmt.Fprintf(out, "  %s: %s\n", name, valueStyle.Render(fmt.Sprint(value)))
	}
	list := func(name string, values []string) {
		if len(values) == 0 {
			fmt.Fprintf(out, "  %s: %s\n", name, SubtitleStyle.Render("(none)"))
			return
		}
		fmt.Fprintf(out, "  %s: %s\n", name, valueStyle.Render(strings.Join(values, ", ")))
	}

	section("jvm")
	field("enabled", cfg.JVM.Enabled)
	field("java", displayValue(cfg.JVM.Java))
	field("engine", cfg.JVM.Engine)
	field("image", cfg.JVM.Image)
	field("timeout", cfg.JVM.Timeout)
	list("tool_classpath", cfg.JVM.ToolClasspath)

	section("registry")
	list("files", cfg.Registry.Files)
	field("builtin", cfg.Registry.Builtin)

	section("scan")
	field("archive_cache_size", cfg.Scan.ArchiveCacheSize)
	field("descriptor", cfg.Scan.Descriptor)

	section("ui")
	field("color_scheme", cfg.UI.ColorScheme)
	field("verbose", cfg.UI.Verbose)
	field("format", cfg.UI.Format)

	section("watch")
	field("debounce", cfg.Watch.Debounce)
	list("patterns", cfg.Watch.Patterns)
	list("ignore", cfg.Watch.Ignore)

	return nil
}

func initConfig(cmd *cobra.Command, app *App, force bool) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return app.fail(cmd, err, false)
	}
	target := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	if _, statErr := os.Stat(target); statErr == nil && !force {
		return app.fail(cmd, fmt.Errorf("%s already exists (use --force to overwrite)", target), false)
	} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return app.fail(cmd, statErr, false)
	}

	path, err := config.Save(config.DefaultConfig())
	if err != nil {
		return app.fail(cmd, fmt.Errorf("failed to create config: %w", err), false)
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
