// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultArchiveCacheSize bounds the number of simultaneously open jars.
	DefaultArchiveCacheSize = 64
	// DefaultDescriptorName is the file name of the tapfind project descriptor.
	DefaultDescriptorName = "tapfind.toml"

	eclipseProjectFile   = ".project"
	eclipseClasspathFile = ".classpath"
)

var (
	// ErrNoProjects is returned when a workspace directory contains no project.
	ErrNoProjects = errors.New("no projects found")
	// ErrUnknownProject is returned when a workspace path names a project that
	// is not part of the workspace.
	ErrUnknownProject = errors.New("unknown project")
	// ErrMalformedPath is returned for workspace paths that are empty, relative,
	// contain NUL bytes or escape their project.
	ErrMalformedPath = errors.New("malformed workspace path")
)

type (
	// Workspace is a directory of projects sharing an archive cache.
	Workspace struct {
		root       string
		descriptor string
		projects   map[string]*Project
		order      []string
		archives   *lru.Cache[string, *zip.ReadCloser]
	}

	// Option configures a Workspace.
	Option func(*workspaceOptions)

	workspaceOptions struct {
		cacheSize  int
		descriptor string
	}
)

// WithArchiveCacheSize sets how many archives stay open at once.
func WithArchiveCacheSize(n int) Option {
	return func(o *workspaceOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithDescriptorName overrides the project descriptor file name.
func WithDescriptorName(name string) Option {
	return func(o *workspaceOptions) {
		if name != "" {
			o.descriptor = name
		}
	}
}

// Open discovers the projects of a workspace. A project is a directory
// holding a descriptor, a .project or a .classpath file. The workspace root
// itself and its immediate subdirectories are considered.
func Open(root string, opts ...Option) (*Workspace, error) {
	o := workspaceOptions{cacheSize: DefaultArchiveCacheSize, descriptor: DefaultDescriptorName}
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %s: %w", root, err)
	}

	cache, err := lru.NewWithEvict[string, *zip.ReadCloser](o.cacheSize, func(_ string, rc *zip.ReadCloser) {
		_ = rc.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create archive cache: %w", err)
	}

	w := &Workspace{
		root:       abs,
		descriptor: o.descriptor,
		projects:   make(map[string]*Project),
		archives:   cache,
	}

	if w.isProjectDir(abs) {
		if err := w.addProject(abs); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read workspace %s: %w", abs, err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(abs, e.Name())
		if !w.isProjectDir(dir) {
			continue
		}
		if err := w.addProject(dir); err != nil {
			return nil, err
		}
	}

	if len(w.order) == 0 {
		return nil, fmt.Errorf("%s: %w", abs, ErrNoProjects)
	}
	return w, nil
}

// Root returns the absolute workspace directory.
func (w *Workspace) Root() string { return w.root }

// DescriptorName returns the project descriptor file name in use.
func (w *Workspace) DescriptorName() string { return w.descriptor }

// Project returns the project with the given name.
func (w *Workspace) Project(name string) (*Project, bool) {
	p, ok := w.projects[name]
	return p, ok
}

// Projects returns all projects in discovery order.
func (w *Workspace) Projects() []*Project {
	out := make([]*Project, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.projects[name])
	}
	return out
}

// Resolve maps a workspace path such as "/shop/bin" to a filesystem path.
// The first segment names the project; the rest is relative to its directory.
func (w *Workspace) Resolve(wsPath string) (string, error) {
	if wsPath == "" || strings.ContainsRune(wsPath, 0) || !strings.HasPrefix(wsPath, "/") {
		return "", fmt.Errorf("%q: %w", wsPath, ErrMalformedPath)
	}
	name, rest, _ := strings.Cut(strings.TrimPrefix(wsPath, "/"), "/")
	p, ok := w.projects[name]
	if !ok {
		return "", fmt.Errorf("%q: %w: %s", wsPath, ErrUnknownProject, name)
	}
	if rest == "" {
		return p.dir, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rest)) {
		return "", fmt.Errorf("%q: %w", wsPath, ErrMalformedPath)
	}
	return filepath.Join(p.dir, filepath.FromSlash(rest)), nil
}

// AllRoots returns every classpath root visible to the project: its own
// source folders and libraries followed by the source folders and exported
// libraries of required projects, transitively and without duplicates.
func (w *Workspace) AllRoots(p *Project) ([]Root, error) {
	var (
		roots   []Root
		seen    = make(map[string]bool)
		visited = make(map[string]bool)
	)

	add := func(r Root) {
		key := r.Kind().String() + ":" + r.Path()
		if seen[key] {
			return
		}
		seen[key] = true
		roots = append(roots, r)
	}

	var visit func(proj *Project, exportedOnly bool) error
	visit = func(proj *Project, exportedOnly bool) error {
		if visited[proj.name] {
			return nil
		}
		visited[proj.name] = true

		entries, err := proj.RawClasspath()
		if err != nil {
			return err
		}

		var required []*Project
		for _, e := range entries {
			switch e.Kind {
			case EntrySource:
				add(newFolderRoot(proj, e.Path, KindSource))
			case EntryLibrary:
				if exportedOnly && !e.Exported {
					continue
				}
				r, err := w.libraryRoot(proj, e.Path)
				if err != nil {
					return err
				}
				add(r)
			case EntryProject:
				if exportedOnly && !e.Exported {
					continue
				}
				dep, ok := w.projects[strings.TrimPrefix(e.Path, "/")]
				if !ok {
					return fmt.Errorf("project %s requires %s: %w", proj.name, e.Path, ErrUnknownProject)
				}
				required = append(required, dep)
			case EntryOutput, EntryContainer:
				// Not roots.
			}
		}

		for _, dep := range required {
			if err := visit(dep, true); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(p, false); err != nil {
		return nil, fmt.Errorf("classpath of %s: %w", p.name, err)
	}
	return roots, nil
}

// Close releases every cached archive.
func (w *Workspace) Close() error {
	w.archives.Purge()
	return nil
}

// Archive returns the cached zip reader of an archive, opening it on a miss.
func (w *Workspace) Archive(path string) (*zip.Reader, error) {
	if rc, ok := w.archives.Get(path); ok {
		return &rc.Reader, nil
	}
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	w.archives.Add(path, rc)
	return &rc.Reader, nil
}

func (w *Workspace) isProjectDir(dir string) bool {
	for _, name := range []string{w.descriptor, eclipseProjectFile, eclipseClasspathFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func (w *Workspace) addProject(dir string) error {
	p, err := loadProject(w, dir)
	if err != nil {
		return err
	}
	if _, dup := w.projects[p.name]; dup {
		return fmt.Errorf("duplicate project name %q in %s", p.name, dir)
	}
	w.projects[p.name] = p
	w.order = append(w.order, p.name)
	return nil
}

// libraryRoot resolves a library entry path. Paths starting with "/" are
// workspace paths when their first segment is a project, absolute filesystem
// paths otherwise; other paths are project-relative.
func (w *Workspace) libraryRoot(p *Project, path string) (Root, error) {
	abs := w.entryPath(p, path)
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return newClassFolderRoot(p, path, abs), nil
	}
	return newArchiveRoot(w, p, abs), nil
}

func (w *Workspace) entryPath(p *Project, path string) string {
	if strings.HasPrefix(path, "/") {
		name, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
		if slices.Contains(w.order, name) {
			if resolved, err := w.Resolve(path); err == nil {
				return resolved
			}
		}
		return filepath.FromSlash(path)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.dir, filepath.FromSlash(path))
}
