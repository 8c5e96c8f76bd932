// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/webtools/tapfind/internal/issue"
	"github.com/webtools/tapfind/internal/registry"
	"github.com/webtools/tapfind/pkg/types"
)

func newRegistryCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	regCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect library prefix registries",
		Long: `Inspect the registries that map a library module class to the prefix and
root package of the library. Registries are consulted when a module cannot
be executed. Entries from later files override earlier ones and the
builtin entries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	regCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the effective registry entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRegistry(cmd, app, rootFlags)
		},
	})

	regCmd.AddCommand(&cobra.Command{
		Use:   "check <file>...",
		Short: "Validate registry files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkRegistry(cmd, app, rootFlags, args)
		},
	})

	return regCmd
}

func listRegistry(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	cfg, err := app.loadConfig(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(cmd, err, rootFlags.verbose)
	}
	reg, err := registry.Load(cfg.Registry.Files, cfg.Registry.Builtin)
	if err != nil {
		return app.fail(cmd, registryError(err), cfg.UI.Verbose)
	}

	entries := reg.Entries()
	fmt.Fprintln(app.stdout, TitleStyle.Render("Library Registry"))
	fmt.Fprintln(app.stdout)
	if len(entries) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(no entries)"))
		return nil
	}

	for i, e := range entries {
		fmt.Fprintf(app.stdout, "%s\n", CmdStyle.Render(e.AppModule))
		fmt.Fprintf(app.stdout, "  prefix:  %s\n", SuccessStyle.Render(displayPrefix(e)))
		fmt.Fprintf(app.stdout, "  package: %s\n", SuccessStyle.Render(displayValue(e.Package)))
		source := e.Source
		if lastIndex(entries, e.AppModule) != i {
			source += " (shadowed)"
		}
		fmt.Fprintf(app.stdout, "  source:  %s\n", VerboseStyle.Render(source))
	}
	return nil
}

func checkRegistry(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, paths []string) error {
	failed := 0
	for _, path := range paths {
		entries, err := registry.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(app.stderr, "%s %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(registryError(err), rootFlags.verbose))
			continue
		}
		incomplete := 0
		for _, e := range entries {
			if !e.Complete() {
				incomplete++
			}
		}
		fmt.Fprintf(app.stdout, "%s %s: %d entries", SuccessStyle.Render("✓"), path, len(entries))
		if incomplete > 0 {
			fmt.Fprintf(app.stdout, " %s", WarningStyle.Render(fmt.Sprintf("(%d without prefix or package)", incomplete)))
		}
		fmt.Fprintln(app.stdout)
	}

	if failed > 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: types.ExitError}
	}
	return nil
}

func registryError(err error) error {
	return issue.NewErrorContext().
		WithOperation("load registry").
		WithIssue(issue.RegistryInvalidId).
		Wrap(err).
		BuildError()
}

func lastIndex(entries []registry.Entry, appModule string) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].AppModule == appModule {
			return i
		}
	}
	return -1
}

func displayPrefix(e registry.Entry) string {
	if e.PrefixUnset {
		return "(none)"
	}
	return strconv.Quote(e.Prefix)
}

func displayValue(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
