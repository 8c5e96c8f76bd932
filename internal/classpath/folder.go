// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/webtools/tapfind/pkg/types"
)

type (
	// folderRoot is a source folder or a class folder on disk.
	folderRoot struct {
		project *Project
		name    string
		dir     string
		kind    RootKind
	}

	folderPackage struct {
		root *folderRoot
		name types.QualifiedName
		dir  string
	}
)

func newFolderRoot(p *Project, rel string, kind RootKind) *folderRoot {
	return &folderRoot{
		project: p,
		name:    filepath.ToSlash(rel),
		dir:     filepath.Join(p.dir, filepath.FromSlash(rel)),
		kind:    kind,
	}
}

func newClassFolderRoot(p *Project, name, abs string) *folderRoot {
	return &folderRoot{project: p, name: filepath.ToSlash(name), dir: abs, kind: KindOutput}
}

func (r *folderRoot) Name() string      { return r.name }
func (r *folderRoot) Path() string      { return r.dir }
func (r *folderRoot) Kind() RootKind    { return r.kind }
func (r *folderRoot) Project() *Project { return r.project }

func (r *folderRoot) Exists() bool {
	info, err := os.Stat(r.dir)
	return err == nil && info.IsDir()
}

func (r *folderRoot) Packages() ([]Package, error) {
	var out []Package
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == r.dir {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		name := types.QualifiedName(strings.ReplaceAll(filepath.ToSlash(rel), "/", "."))
		if ok, _ := name.IsValid(); !ok {
			return filepath.SkipDir
		}
		out = append(out, &folderPackage{root: r, name: name, dir: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list packages of %s: %w", r.dir, err)
	}
	return out, nil
}

func (r *folderRoot) HasPackage(name types.QualifiedName) (bool, error) {
	info, err := os.Stat(filepath.Join(r.dir, filepath.FromSlash(name.InternalName())))
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat package %s in %s: %w", name, r.dir, err)
	}
	return info.IsDir(), nil
}

func (r *folderRoot) Resource(name string) (io.ReadCloser, error) {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return nil, fmt.Errorf("resource %q: %w", name, fs.ErrInvalid)
	}
	f, err := os.Open(filepath.Join(r.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (p *folderPackage) Name() types.QualifiedName { return p.name }
func (p *folderPackage) Path() string              { return p.dir }

func (p *folderPackage) ClassFiles() ([]TypeRoot, error) {
	if p.root.kind != KindOutput {
		return nil, nil
	}
	return p.list(".class", func(name, path string) TypeRoot {
		return &classTypeRoot{
			name:   name,
			pkg:    p.name,
			path:   path,
			open:   func() (io.ReadCloser, error) { return os.Open(path) },
			exists: func() bool { return fileExists(path) },
		}
	})
}

func (p *folderPackage) CompilationUnits() ([]TypeRoot, error) {
	if p.root.kind != KindSource {
		return nil, nil
	}
	return p.list(".java", func(name, path string) TypeRoot {
		return &sourceTypeRoot{name: name, pkg: p.name, path: path}
	})
}

func (p *folderPackage) list(ext string, mk func(name, path string) TypeRoot) ([]TypeRoot, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.dir, err)
	}
	var out []TypeRoot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, mk(e.Name(), filepath.Join(p.dir, e.Name())))
	}
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
