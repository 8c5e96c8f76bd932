// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/webtools/tapfind/pkg/types"
)

type (
	archiveRoot struct {
		ws      *Workspace
		project *Project
		path    string

		indexed  bool
		indexErr error
		packages map[types.QualifiedName]*archivePackage
		order    []types.QualifiedName
	}

	archivePackage struct {
		root    *archiveRoot
		name    types.QualifiedName
		classes []string
	}
)

func newArchiveRoot(ws *Workspace, p *Project, path string) *archiveRoot {
	return &archiveRoot{ws: ws, project: p, path: path}
}

func (r *archiveRoot) Name() string      { return filepath.Base(r.path) }
func (r *archiveRoot) Path() string      { return r.path }
func (r *archiveRoot) Kind() RootKind    { return KindArchive }
func (r *archiveRoot) Project() *Project { return r.project }

func (r *archiveRoot) Exists() bool {
	info, err := os.Stat(r.path)
	return err == nil && !info.IsDir()
}

func (r *archiveRoot) Packages() ([]Package, error) {
	if err := r.index(); err != nil {
		return nil, err
	}
	out := make([]Package, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.packages[name])
	}
	return out, nil
}

func (r *archiveRoot) HasPackage(name types.QualifiedName) (bool, error) {
	if err := r.index(); err != nil {
		return false, fmt.Errorf("list packages of %s: %w", r.path, err)
	}
	_, ok := r.packages[name]
	return ok, nil
}

func (r *archiveRoot) Resource(name string) (io.ReadCloser, error) {
	zr, err := r.ws.Archive(r.path)
	if err != nil {
		return nil, err
	}
	return openZipEntry(zr, r.path, name)
}

// index enumerates the archive once. Every directory along an entry's path
// whose segments are identifiers is a package, as in the JVM's view of a jar.
func (r *archiveRoot) index() error {
	if r.indexed {
		return r.indexErr
	}
	r.indexed = true
	r.packages = make(map[types.QualifiedName]*archivePackage)

	zr, err := r.ws.Archive(r.path)
	if err != nil {
		r.indexErr = err
		return err
	}

	for _, f := range zr.File {
		dir, file := f.Name, ""
		if !strings.HasSuffix(f.Name, "/") {
			dir, file = path.Split(f.Name)
		}
		pkg := r.ensurePackage(strings.Trim(dir, "/"))
		if pkg != nil && strings.HasSuffix(file, ".class") {
			pkg.classes = append(pkg.classes, f.Name)
		}
	}
	return nil
}

func (r *archiveRoot) ensurePackage(dir string) *archivePackage {
	if dir == "" {
		return nil
	}
	name := types.QualifiedName(strings.ReplaceAll(dir, "/", "."))
	if pkg, ok := r.packages[name]; ok {
		return pkg
	}
	if ok, _ := name.IsValid(); !ok {
		return nil
	}
	if parent := path.Dir(dir); parent != "." {
		r.ensurePackage(parent)
	}
	pkg := &archivePackage{root: r, name: name}
	r.packages[name] = pkg
	r.order = append(r.order, name)
	return pkg
}

func (p *archivePackage) Name() types.QualifiedName { return p.name }
func (p *archivePackage) Path() string              { return p.root.path }

func (p *archivePackage) ClassFiles() ([]TypeRoot, error) {
	out := make([]TypeRoot, 0, len(p.classes))
	for _, entry := range p.classes {
		out = append(out, &classTypeRoot{
			name: path.Base(entry),
			pkg:  p.name,
			path: p.root.path,
			open: func() (io.ReadCloser, error) { return p.root.Resource(entry) },
			exists: func() bool {
				zr, err := p.root.ws.Archive(p.root.path)
				if err != nil {
					return false
				}
				return slices.ContainsFunc(zr.File, func(f *zip.File) bool { return f.Name == entry })
			},
		})
	}
	return out, nil
}

// CompilationUnits is always empty: archives are not source containers.
func (p *archivePackage) CompilationUnits() ([]TypeRoot, error) { return nil, nil }

func openZipEntry(zr *zip.Reader, archive, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s!/%s: %w", archive, name, err)
			}
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%s!/%s: %w", archive, name, fs.ErrNotExist)
}
