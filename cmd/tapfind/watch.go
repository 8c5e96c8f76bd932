// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/webtools/tapfind/internal/config"
	"github.com/webtools/tapfind/internal/report"
	"github.com/webtools/tapfind/internal/watch"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &scanFlagValues{}
	var clearScreen bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rescan a project whenever its classpath changes",
		Long: `Scan a project, then watch the workspace and rescan whenever a jar, a
class file, a source file, a classpath definition or a manifest changes.

Changes arriving within the debounce window (watch.debounce) are coalesced
into a single rescan, and a rescan never starts while another is running.
Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, app, rootFlags, flags, clearScreen)
		},
	}
	addScanFlags(cmd, flags)
	cmd.Flags().BoolVar(&clearScreen, "clear", false, "clear the screen before each rescan")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *scanFlagValues, clearScreen bool) error {
	ctx := cmd.Context()
	verbose := rootFlags.verbose

	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}
	verbose = cfg.UI.Verbose
	if err := applyScanFlags(cfg, flags); err != nil {
		return app.fail(cmd, err, verbose)
	}
	logger := app.newLogger(verbose)

	fmt.Fprintf(app.stdout, "%s Watch mode: initial scan\n", VerboseHighlightStyle.Render("→"))
	if err := app.rescan(ctx, cfg, rootFlags.workspace, flags.project, logger); err != nil {
		return app.fail(cmd, err, verbose)
	}

	w, err := watch.New(watch.Config{
		Patterns:    cfg.Watch.Patterns,
		Ignore:      cfg.Watch.Ignore,
		Debounce:    cfg.Watch.Debounce,
		ClearScreen: clearScreen,
		BaseDir:     rootFlags.workspace,
		Stdout:      app.stdout,
		Logger:      logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Rescanning...\n",
				VerboseHighlightStyle.Render("→"), len(changed))
			if err := app.rescan(ctx, cfg, rootFlags.workspace, flags.project, logger); err != nil {
				app.warn(err, verbose)
			}
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", VerboseHighlightStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return app.fail(cmd, fmt.Errorf("failed to start watcher: %w", err), verbose)
	}

	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))
	if err := w.Run(ctx); err != nil {
		return app.fail(cmd, err, verbose)
	}
	return nil
}

// rescan reopens the workspace, so replaced jars and new projects are seen,
// and prints a text report of a full scan.
func (a *App) rescan(ctx context.Context, cfg *config.Config, workspace, project string, logger *log.Logger) error {
	session, err := a.openSession(cfg, workspace, project, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("close workspace", "error", closeErr)
		}
	}()

	res, model := session.run(ctx)
	return report.Write(a.stdout, report.FormatText, report.Build(res, model), reportOptions(cfg, false))
}
