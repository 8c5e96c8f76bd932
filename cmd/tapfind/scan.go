// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/webtools/tapfind/internal/config"
	"github.com/webtools/tapfind/internal/finder"
	"github.com/webtools/tapfind/internal/issue"
	"github.com/webtools/tapfind/internal/jvm"
	"github.com/webtools/tapfind/internal/report"
	"github.com/webtools/tapfind/pkg/feature"
	"github.com/webtools/tapfind/pkg/types"
)

// scanFlagValues holds the flags of scan and watch.
type scanFlagValues struct {
	project string
	engine  string
	noJVM   bool
	format  string
	kinds   []string
	raw     bool
}

func newScanCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &scanFlagValues{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a project and list its features",
		Long: `Scan the classpath of a project once and print every component, page,
mixin and service found, with the library prefix templates use to address it.

The exit status is 0 when the scan completed (even if some roots were
skipped), 1 when the classpath could not be read and 2 when the scan was
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, app, rootFlags, flags)
		},
	}
	addScanFlags(cmd, flags)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text, markdown, json or yaml (default from ui.format)")
	cmd.Flags().StringSliceVarP(&flags.kinds, "kind", "k", nil, "only list features of these kinds (component, page, mixin, service)")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "print Markdown source instead of rendering it")
	return cmd
}

// addScanFlags registers the flags that select what is scanned and how
// library modules are executed.
func addScanFlags(cmd *cobra.Command, flags *scanFlagValues) {
	cmd.Flags().StringVarP(&flags.project, "project", "p", "", "project to scan (required when the workspace holds several)")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "JVM engine: native, docker or podman (default from jvm.engine)")
	cmd.Flags().BoolVar(&flags.noJVM, "no-jvm", false, "do not execute library modules; rely on the registry and deduction")
}

func runScan(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *scanFlagValues) error {
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
	format, err := report.ParseFormat(string(cfg.UI.Format))
	if err != nil {
		return app.fail(cmd, err, verbose)
	}
	kinds, err := parseKinds(flags.kinds)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	logger := app.newLogger(verbose)
	session, err := app.openSession(cfg, rootFlags.workspace, flags.project, logger)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("close workspace", "error", closeErr)
		}
	}()

	res, model := session.run(ctx)
	doc := report.Build(res, model, kinds...)
	if err := report.Write(app.stdout, format, doc, reportOptions(cfg, flags.raw)); err != nil {
		return app.fail(cmd, err, verbose)
	}

	if err := scanOutcome(res); err != nil {
		return app.fail(cmd, err, verbose)
	}
	return nil
}

// applyScanFlags overlays explicitly set flags on the configuration.
func applyScanFlags(cfg *config.Config, flags *scanFlagValues) error {
	if flags.engine != "" {
		engine := jvm.Engine(flags.engine)
		if err := engine.Validate(); err != nil {
			return err
		}
		cfg.JVM.Engine = engine
	}
	if flags.noJVM {
		cfg.JVM.Enabled = false
	}
	if flags.format != "" {
		cfg.UI.Format = config.ReportFormat(flags.format)
	}
	return nil
}

func parseKinds(names []string) ([]feature.Kind, error) {
	kinds := make([]feature.Kind, 0, len(names))
	for _, n := range names {
		k, err := feature.ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func reportOptions(cfg *config.Config, raw bool) report.Options {
	return report.Options{
		Styles:       report.DefaultStyles(),
		GlamourStyle: glamourStyle(cfg.UI.ColorScheme),
		RawMarkdown:  raw,
		Verbose:      cfg.UI.Verbose,
	}
}

// glamourStyle maps the color scheme to a glamour standard style. "auto"
// falls back to plain text when stdout is not a terminal.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// scanOutcome maps a terminal status to the process exit status.
func scanOutcome(res *finder.Result) error {
	switch res.Status {
	case finder.StatusError:
		return &ExitError{
			Code: types.ExitError,
			Err: issue.NewErrorContext().
				WithOperation("scan project").
				WithResource(res.Project).
				WithIssue(issue.ScanFailedId).
				Wrap(errors.New(res.Message)).
				BuildError(),
		}
	case finder.StatusCancel:
		return &ExitError{
			Code: types.ExitCancelled,
			Err: issue.NewErrorContext().
				WithOperation("scan project").
				WithResource(res.Project).
				WithIssue(issue.ScanCancelledId).
				Wrap(errors.New(res.Message)).
				BuildError(),
		}
	default:
		return nil
	}
}
