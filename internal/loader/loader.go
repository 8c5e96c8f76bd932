// SPDX-License-Identifier: MPL-2.0

// Package loader builds the per-scan class lookup context: a project layer of
// output folders shadowing a library layer of jars, shadowing the tool layer
// shipped with tapfind.
package loader

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/pkg/types"
)

var (
	// ErrClasspathUnavailable is returned when the raw classpath or the
	// output location of a project cannot be read.
	ErrClasspathUnavailable = errors.New("project classpath unavailable")
	// ErrClassNotFound is the sentinel behind ClassNotFoundError.
	ErrClassNotFound = errors.New("class not found")
)

type (
	// Options configures Build.
	Options struct {
		// ToolClasspath lists jars or class folders appended after the
		// library layer.
		ToolClasspath []string
		Logger        *log.Logger
	}

	// Context is the layered class lookup of one scan.
	Context struct {
		ws      *classpath.Workspace
		project []element
		library []element
		tool    []element
		skipped []SkippedOutput
		logger  *log.Logger
	}

	// SkippedOutput is an output folder left out of the project layer.
	SkippedOutput struct {
		Project string
		Path    string
		Err     error
	}

	// ClassNotFoundError reports a class missing from every layer.
	ClassNotFoundError struct {
		Name types.QualifiedName
	}

	element struct {
		path    string
		archive bool
	}
)

// Error implements the error interface.
func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.Name)
}

// Unwrap returns ErrClassNotFound for errors.Is() compatibility.
func (e *ClassNotFoundError) Unwrap() error { return ErrClassNotFound }

// Build assembles the context for the given roots. Every archive root joins
// the library layer; the default output location and each entry-specific
// output of every project owning a root join the project layer. Malformed
// output paths are logged and skipped; an unreadable project classpath fails
// the whole build.
func Build(ws *classpath.Workspace, roots []classpath.Root, opts Options) (*Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Context{ws: ws, logger: logger}

	seen := map[string]bool{}
	add := func(layer *[]element, e element) {
		if seen[e.path] {
			return
		}
		seen[e.path] = true
		*layer = append(*layer, e)
	}

	projects := map[string]bool{}
	for _, root := range roots {
		switch root.Kind() {
		case classpath.KindArchive:
			add(&c.library, element{path: root.Path(), archive: true})
		case classpath.KindOutput:
			add(&c.library, element{path: root.Path()})
		case classpath.KindSource:
		}

		p := root.Project()
		if p == nil || projects[p.Name()] {
			continue
		}
		projects[p.Name()] = true

		dirs, err := c.outputDirs(p)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			add(&c.project, element{path: dir})
		}
	}

	for _, path := range opts.ToolClasspath {
		info, err := os.Stat(path)
		add(&c.tool, element{path: path, archive: err != nil || !info.IsDir()})
	}
	return c, nil
}

func (c *Context) outputDirs(p *classpath.Project) ([]string, error) {
	output, err := p.OutputLocation()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrClasspathUnavailable, p.Name(), err)
	}
	entries, err := p.RawClasspath()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrClasspathUnavailable, p.Name(), err)
	}

	locations := []string{output}
	for _, e := range entries {
		if e.Output != "" {
			locations = append(locations, e.Output)
		}
	}

	var dirs []string
	for _, loc := range locations {
		dir, err := c.ws.Resolve(loc)
		if err != nil {
			c.logger.Warn("skipping output folder", "project", p.Name(), "path", loc, "error", err)
			c.skipped = append(c.skipped, SkippedOutput{Project: p.Name(), Path: loc, Err: err})
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// Skipped returns the output folders left out of the project layer.
func (c *Context) Skipped() []SkippedOutput { return c.skipped }

// Classpath returns every element, project layer first, then libraries, then
// tool jars.
func (c *Context) Classpath() []string {
	out := make([]string, 0, len(c.project)+len(c.library)+len(c.tool))
	for _, layer := range c.layers() {
		for _, e := range layer {
			out = append(out, e.path)
		}
	}
	return out
}

// FindClass returns the bytes of a class file, searching the layers in
// classpath order. Unreadable or missing elements are skipped.
func (c *Context) FindClass(name types.QualifiedName) ([]byte, error) {
	entry := name.InternalName() + ".class"
	for _, layer := range c.layers() {
		for _, e := range layer {
			data, ok := c.read(e, entry)
			if ok {
				return data, nil
			}
		}
	}
	return nil, &ClassNotFoundError{Name: name}
}

func (c *Context) layers() [][]element {
	return [][]element{c.project, c.library, c.tool}
}

func (c *Context) read(e element, entry string) ([]byte, bool) {
	if !e.archive {
		data, err := os.ReadFile(filepath.Join(e.path, filepath.FromSlash(entry)))
		return data, err == nil
	}

	if _, err := os.Stat(e.path); err != nil {
		return nil, false
	}
	zr, err := c.ws.Archive(e.path)
	if err != nil {
		c.logger.Debug("unreadable archive", "path", e.path, "error", err)
		return nil, false
	}
	return readZipEntry(zr, entry)
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, bool) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		return data, err == nil
	}
	return nil, false
}
