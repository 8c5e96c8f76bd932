// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EntrySource is a source folder of the project itself.
	EntrySource EntryKind = "src"
	// EntryProject is a required workspace project ("/name").
	EntryProject EntryKind = "project"
	// EntryLibrary is a jar or a class folder.
	EntryLibrary EntryKind = "lib"
	// EntryOutput declares the default output location.
	EntryOutput EntryKind = "output"
	// EntryContainer is a classpath container (JRE, build tool). Containers
	// are not expanded.
	EntryContainer EntryKind = "con"

	defaultOutput = "bin"
)

// ErrNoClasspath is returned when a project has neither a descriptor nor a
// .classpath file.
var ErrNoClasspath = errors.New("project has no classpath definition")

type (
	// EntryKind is the kind of a raw classpath entry.
	EntryKind string

	// Entry is one raw classpath entry. Path is project-relative for source
	// folders and libraries, "/name" for required projects. Output is the
	// workspace path of a source folder's specific output, if any.
	Entry struct {
		Kind     EntryKind
		Path     string
		Output   string
		Exported bool
	}

	// Project is a Java project of the workspace. Its classpath is read
	// lazily on first use and cached, including a failure.
	Project struct {
		ws         *Workspace
		name       string
		dir        string
		appPackage string

		loaded  bool
		entries []Entry
		output  string
		loadErr error
	}

	// classpathFile is the parsed classpath of a project regardless of origin.
	classpathFile struct {
		entries    []Entry
		output     string
		appPackage string
	}
)

func loadProject(w *Workspace, dir string) (*Project, error) {
	p := &Project{ws: w, dir: dir, name: filepath.Base(dir)}

	if d, err := LoadDescriptor(filepath.Join(dir, w.descriptor)); err == nil {
		if d.Name != "" {
			p.name = d.Name
		}
		p.appPackage = d.AppPackage
		return p, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if name, err := readEclipseProjectName(filepath.Join(dir, eclipseProjectFile)); err == nil && name != "" {
		p.name = name
	}
	return p, nil
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Dir returns the project directory.
func (p *Project) Dir() string { return p.dir }

// Workspace returns the owning workspace.
func (p *Project) Workspace() *Workspace { return p.ws }

// RawClasspath returns the unresolved classpath entries.
func (p *Project) RawClasspath() ([]Entry, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	return p.entries, nil
}

// OutputLocation returns the workspace path of the default output folder.
func (p *Project) OutputLocation() (string, error) {
	if err := p.load(); err != nil {
		return "", err
	}
	return p.output, nil
}

// SourceRoots returns the project's own source folders.
func (p *Project) SourceRoots() ([]Root, error) {
	entries, err := p.RawClasspath()
	if err != nil {
		return nil, err
	}
	var roots []Root
	for _, e := range entries {
		if e.Kind == EntrySource {
			roots = append(roots, newFolderRoot(p, e.Path, KindSource))
		}
	}
	return roots, nil
}

// AppPackage returns the application root package: the descriptor's
// app_package when set, otherwise the tapestry.app-package context parameter
// of the project's web.xml. It returns "" when neither is available.
func (p *Project) AppPackage() string {
	if p.appPackage != "" {
		return p.appPackage
	}
	pkg, err := findAppPackage(p.dir)
	if err != nil {
		return ""
	}
	p.appPackage = pkg
	return pkg
}

func (p *Project) load() error {
	if p.loaded {
		return p.loadErr
	}
	p.loaded = true

	cf, err := p.readClasspath()
	if err != nil {
		p.loadErr = fmt.Errorf("read classpath of %s: %w", p.name, err)
		return p.loadErr
	}
	p.entries = cf.entries
	p.output = cf.output
	if p.appPackage == "" {
		p.appPackage = cf.appPackage
	}
	return nil
}

func (p *Project) readClasspath() (*classpathFile, error) {
	d, err := LoadDescriptor(filepath.Join(p.dir, p.ws.descriptor))
	switch {
	case err == nil:
		return d.classpath(p)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	cf, err := readEclipseClasspath(filepath.Join(p.dir, eclipseClasspathFile), p.name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoClasspath
	}
	return cf, err
}

// workspacePath turns a project-relative folder into a workspace path.
func workspacePath(project, rel string) string {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return "/" + project
	}
	return "/" + project + "/" + rel
}
