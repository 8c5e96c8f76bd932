// SPDX-License-Identifier: MPL-2.0

package finder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/jvm"
	"github.com/webtools/tapfind/internal/loader"
	"github.com/webtools/tapfind/internal/manifest"
	"github.com/webtools/tapfind/internal/resolver"
	"github.com/webtools/tapfind/pkg/feature"
)

const (
	// StatusOK means every root was visited.
	StatusOK Status = "ok"
	// StatusCancel means the context was cancelled between two roots.
	StatusCancel Status = "cancelled"
	// StatusError means the roots could not be enumerated.
	StatusError Status = "error"
)

type (
	// Status is the terminal state of a scan.
	Status string

	// Options configures a Finder.
	Options struct {
		// Registry backs the second resolution tier. Nil disables it.
		Registry resolver.Registry
		// Runner executes library modules. Nil disables the invocation tier.
		Runner jvm.Runner
		// Invoker replaces the invocation tier built from Runner.
		Invoker resolver.Invoker
		// ToolClasspath is appended to the class lookup after the libraries.
		ToolClasspath []string
		Logger        *log.Logger
		// OnRoot is called after each root has been processed.
		OnRoot func(RootReport)
	}

	// RootReport describes how one classpath root was handled.
	RootReport struct {
		Root      string               `json:"root" yaml:"root"`
		Path      string               `json:"path" yaml:"path"`
		Class     Class                `json:"class" yaml:"class"`
		Bootstrap string               `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
		Info      resolver.PackageInfo `json:"info" yaml:"info"`
		// Walked is false when the root was skipped for lack of a root package.
		Walked   bool `json:"walked" yaml:"walked"`
		Features int  `json:"features" yaml:"features"`
	}

	// Result is the outcome of one scan.
	Result struct {
		ID          uuid.UUID    `json:"id" yaml:"id"`
		Project     string       `json:"project" yaml:"project"`
		Status      Status       `json:"status" yaml:"status"`
		Message     string       `json:"message,omitempty" yaml:"message,omitempty"`
		Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
		Roots       []RootReport `json:"roots" yaml:"roots"`
		Started     time.Time    `json:"started" yaml:"started"`
		Finished    time.Time    `json:"finished" yaml:"finished"`
	}

	// Finder scans the classpath of one project into a feature sink.
	Finder struct {
		ws      *classpath.Workspace
		project *classpath.Project
		sink    feature.Sink
		opts    Options
		logger  *log.Logger

		listRoots func() ([]classpath.Root, error)
	}

	// scan holds the state of a single Run.
	scan struct {
		*Finder
		result   *Result
		resolver *resolver.Resolver
		resolved map[string]resolver.PackageInfo
	}
)

// New creates a finder for project, adding discovered features to sink.
func New(ws *classpath.Workspace, project *classpath.Project, sink feature.Sink, opts Options) *Finder {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	f := &Finder{ws: ws, project: project, sink: sink, opts: opts, logger: logger}
	f.listRoots = func() ([]classpath.Root, error) { return ws.AllRoots(project) }
	return f
}

// Run scans every classpath root of the project once. Cancellation is
// observed before each root; features found before it stay in the sink.
func (f *Finder) Run(ctx context.Context) *Result {
	s := &scan{
		Finder:   f,
		result:   &Result{ID: uuid.New(), Project: f.project.Name(), Started: time.Now()},
		resolved: make(map[string]resolver.PackageInfo),
	}
	defer func() { s.result.Finished = time.Now() }()

	roots, err := f.listRoots()
	if err != nil {
		s.report(SeverityError, CodeRootsUnavailable, f.project.Dir(), err, "can't load the packages")
		s.result.Status = StatusError
		s.result.Message = "can't load the packages"
		return s.result
	}

	s.resolver = s.buildResolver(roots)

	// A root that has started runs to completion. Module invocation stays
	// bounded by the runner timeout.
	rootCtx := context.WithoutCancel(ctx)
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			f.logger.Info("Loading of project model has been cancelled for " + f.project.Name())
			s.result.Status = StatusCancel
			s.result.Message = "job cancelled before " + root.Name()
			return s.result
		}

		rep := s.processRoot(rootCtx, root)
		s.result.Roots = append(s.result.Roots, rep)
		if f.opts.OnRoot != nil {
			f.opts.OnRoot(rep)
		}
	}

	s.result.Status = StatusOK
	return s.result
}

// buildResolver assembles the tiers available for this scan. The class
// lookup is built once; when it cannot be built the invocation tier is off.
func (s *scan) buildResolver(roots []classpath.Root) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithLogger(s.logger)}
	if s.opts.Registry != nil {
		opts = append(opts, resolver.WithRegistry(s.opts.Registry))
	}

	switch {
	case s.opts.Invoker != nil:
		opts = append(opts, resolver.WithInvoker(s.opts.Invoker))
	case s.opts.Runner != nil:
		classes, err := loader.Build(s.ws, roots, loader.Options{ToolClasspath: s.opts.ToolClasspath, Logger: s.logger})
		if err != nil {
			s.report(SeverityWarning, CodeLoaderUnavailable, s.project.Dir(), err,
				"library modules will not be executed during this scan")
			break
		}
		for _, sk := range classes.Skipped() {
			s.report(SeverityWarning, CodeOutputDirSkipped, sk.Path, sk.Err,
				fmt.Sprintf("output folder of %s left off the classpath", sk.Project))
		}
		opts = append(opts, resolver.WithInvoker(resolver.NewDynamicInvoker(classes, s.opts.Runner, s.logger)))
	}
	return resolver.New(opts...)
}

func (s *scan) processRoot(ctx context.Context, root classpath.Root) RootReport {
	class, err := Classify(root, s.project)
	rep := RootReport{Root: root.Name(), Path: root.Path(), Class: class}
	if err != nil {
		s.report(SeverityError, CodeRootChildrenFailed, root.Path(), err, "can't list the packages of "+root.Name())
	}
	s.logger.Debug("processing root", "root", root.Path(), "class", class)

	switch class {
	case ClassCoreLibrary:
		rep.Info = resolver.PackageInfo{RootPackage: CorePackage, HasPrefix: true, HasRootPackage: true}
	case ClassApplicationLibrary:
		m, err := manifest.Read(root)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return rep
		case err != nil:
			s.report(SeverityWarning, CodeManifestUnreadable, root.Path(), err, "can't read the library manifest")
			return rep
		}
		bootstrap, ok := m.BootstrapClass()
		if !ok {
			return rep
		}
		rep.Bootstrap = bootstrap
		rep.Info = s.resolve(ctx, root, bootstrap)
	case ClassProjectSource:
		pkg := s.project.AppPackage()
		if pkg == "" {
			s.logger.Debug("no application package", "project", s.project.Name())
			return rep
		}
		rep.Info = resolver.PackageInfo{RootPackage: pkg, HasPrefix: true, HasRootPackage: true}
	case ClassDependencySource:
		owner := root.Project()
		if owner == nil {
			return rep
		}
		bootstrap, err := ResolveBootstrapClass(owner)
		if err != nil {
			if !errors.Is(err, ErrNoBootstrap) {
				s.report(SeverityWarning, CodeManifestUnreadable, owner.Dir(), err, "can't read the manifest of "+owner.Name())
			}
			return rep
		}
		rep.Bootstrap = bootstrap
		rep.Info = s.resolve(ctx, root, bootstrap)
	}

	if !rep.Info.Resolved() || rep.Info.RootPackage == "" || !root.Exists() {
		return rep
	}
	rep.Walked = true
	rep.Features = s.walkRoot(root, rep.Info)
	return rep
}

// resolve caches package info per module class within the scan.
func (s *scan) resolve(ctx context.Context, root classpath.Root, bootstrap string) resolver.PackageInfo {
	info, ok := s.resolved[bootstrap]
	if !ok {
		info = s.resolver.Resolve(ctx, bootstrap)
		s.resolved[bootstrap] = info
	}

	switch {
	case !info.Resolved():
		s.report(SeverityWarning, CodeBootstrapUnresolved, root.Path(), nil,
			fmt.Sprintf("can't determine the package of %s, its features are skipped", bootstrap))
	case info.Prefix == resolver.UnknownPrefix:
		s.report(SeverityWarning, CodePrefixUnknown, root.Path(), nil,
			fmt.Sprintf("Components/Mixins from %s will not have their prefix", bootstrap))
	}
	return info
}

func (s *scan) report(sev Severity, code DiagnosticCode, path string, cause error, msg string) {
	s.result.Diagnostics = append(s.result.Diagnostics, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Path:     path,
		Cause:    cause,
	})
	if sev == SeverityError {
		s.logger.Error(msg, "code", code, "path", path, "error", cause)
		return
	}
	s.logger.Warn(msg, "code", code, "path", path, "error", cause)
}
