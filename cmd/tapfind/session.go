// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/config"
	"github.com/webtools/tapfind/internal/finder"
	"github.com/webtools/tapfind/internal/issue"
	"github.com/webtools/tapfind/internal/jvm"
	"github.com/webtools/tapfind/internal/registry"
	"github.com/webtools/tapfind/pkg/feature"
)

// scanSession is an opened workspace plus everything a finder needs. Watch
// mode opens a fresh session for every rescan.
type scanSession struct {
	ws      *classpath.Workspace
	project *classpath.Project
	opts    finder.Options
	logger  *log.Logger
}

// openSession opens the workspace, selects the project and assembles the
// resolution tiers from cfg. A missing JVM is reported and the invocation
// tier is left out.
func (a *App) openSession(cfg *config.Config, workspace, projectName string, logger *log.Logger) (*scanSession, error) {
	ws, err := classpath.Open(workspace,
		classpath.WithArchiveCacheSize(cfg.Scan.ArchiveCacheSize),
		classpath.WithDescriptorName(cfg.Scan.Descriptor),
	)
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("open workspace").
			WithResource(workspace).
			Wrap(err)
		if errors.Is(err, classpath.ErrNoProjects) {
			ctx = ctx.WithIssue(issue.WorkspaceNotFoundId).
				WithSuggestion("Run tapfind from a project directory or pass --workspace")
		}
		return nil, ctx.BuildError()
	}

	project, err := selectProject(ws, projectName)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	reg, err := registry.Load(cfg.Registry.Files, cfg.Registry.Builtin)
	if err != nil {
		_ = ws.Close()
		return nil, issue.NewErrorContext().
			WithOperation("load registry").
			WithIssue(issue.RegistryInvalidId).
			WithSuggestion("Validate the file with 'tapfind registry check <file>'").
			Wrap(err).
			BuildError()
	}

	s := &scanSession{
		ws:      ws,
		project: project,
		logger:  logger,
		opts: finder.Options{
			Registry: reg,
			Logger:   logger,
			OnRoot: func(r finder.RootReport) {
				logger.Debug("root processed", "root", r.Root, "class", r.Class, "walked", r.Walked, "features", r.Features)
			},
		},
	}

	if cfg.JVM.Enabled {
		runner, err := jvm.New(jvm.Config{
			Engine:  cfg.JVM.Engine,
			Java:    cfg.JVM.Java,
			Image:   cfg.JVM.Image,
			Timeout: cfg.JVM.Timeout,
		}, jvm.WithLogger(logger))
		if err != nil {
			a.warn(runnerError(err, cfg.JVM.Engine), cfg.UI.Verbose)
		} else {
			s.opts.Runner = runner
			s.opts.ToolClasspath = cfg.JVM.ToolClasspath
		}
	}
	return s, nil
}

// run performs one full scan into a fresh model.
func (s *scanSession) run(ctx context.Context) (*finder.Result, *feature.Model) {
	model := feature.NewModel(s.project.Name())
	res := finder.New(s.ws, s.project, model, s.opts).Run(ctx)
	return res, model
}

// Close releases the cached archives of the workspace.
func (s *scanSession) Close() error { return s.ws.Close() }

// selectProject returns the named project, or the only project of the
// workspace when name is empty.
func selectProject(ws *classpath.Workspace, name string) (*classpath.Project, error) {
	projects := ws.Projects()
	if name == "" {
		if len(projects) == 1 {
			return projects[0], nil
		}
		return nil, issue.NewErrorContext().
			WithOperation("select project").
			WithResource(ws.Root()).
			WithIssue(issue.ProjectNotFoundId).
			WithSuggestion("Pick one with --project: " + projectNames(projects)).
			Wrap(fmt.Errorf("workspace holds %d projects", len(projects))).
			BuildError()
	}
	if p, ok := ws.Project(name); ok {
		return p, nil
	}
	return nil, issue.NewErrorContext().
		WithOperation("select project").
		WithResource(name).
		WithIssue(issue.ProjectNotFoundId).
		WithSuggestion("Known projects: " + projectNames(projects)).
		Wrap(classpath.ErrUnknownProject).
		BuildError()
}

func projectNames(projects []*classpath.Project) string {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name()
	}
	return strings.Join(names, ", ")
}

// runnerError links a runner construction failure to its guide.
func runnerError(err error, engine jvm.Engine) error {
	ctx := issue.NewErrorContext().
		WithOperation("prepare " + engine.String() + " JVM").
		WithSuggestion("Library prefixes fall back to the registry; pass --no-jvm to silence this warning").
		Wrap(err)
	switch {
	case errors.Is(err, jvm.ErrNoJava):
		ctx = ctx.WithIssue(issue.JavaNotFoundId)
	case errors.Is(err, jvm.ErrNoEngine):
		ctx = ctx.WithIssue(issue.ContainerEngineNotFoundId)
	}
	return ctx.BuildError()
}
