// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
)

type (
	// Descriptor is the tapfind.toml project descriptor, an alternative to
	// Eclipse metadata for build-tool driven projects.
	//
	//	name = "shop"
	//	app_package = "com.example.shop"
	//	output = "target/classes"
	//	libs = ["target/dependency/*.jar"]
	//	requires = ["shop-components"]
	//
	//	[[source]]
	//	path = "src/main/java"
	Descriptor struct {
		Name       string             `toml:"name"`
		AppPackage string             `toml:"app_package"`
		Output     string             `toml:"output"`
		Sources    []DescriptorSource `toml:"source"`
		// Libs are project-relative or absolute jar paths; doublestar
		// patterns are expanded at load time.
		Libs     []string `toml:"libs"`
		Requires []string `toml:"requires"`
		// Export makes libs and required projects visible to dependents.
		Export bool `toml:"export"`
	}

	// DescriptorSource is one source folder of a descriptor.
	DescriptorSource struct {
		Path   string `toml:"path"`
		Output string `toml:"output"`
	}
)

// LoadDescriptor reads a project descriptor. A missing file yields an error
// wrapping os.ErrNotExist.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &d, nil
}

func (d *Descriptor) classpath(p *Project) (*classpathFile, error) {
	output := d.Output
	if output == "" {
		output = defaultOutput
	}
	cf := &classpathFile{
		output:     workspacePath(p.name, output),
		appPackage: d.AppPackage,
	}
	cf.entries = append(cf.entries, Entry{Kind: EntryOutput, Path: output})

	for _, src := range d.Sources {
		e := Entry{Kind: EntrySource, Path: src.Path}
		if src.Output != "" {
			e.Output = workspacePath(p.name, src.Output)
		}
		cf.entries = append(cf.entries, e)
	}

	for _, lib := range d.Libs {
		paths, err := expandLib(p.dir, lib)
		if err != nil {
			return nil, fmt.Errorf("expand lib %q of %s: %w", lib, p.name, err)
		}
		for _, path := range paths {
			cf.entries = append(cf.entries, Entry{Kind: EntryLibrary, Path: path, Exported: d.Export})
		}
	}

	for _, req := range d.Requires {
		cf.entries = append(cf.entries, Entry{Kind: EntryProject, Path: "/" + strings.TrimPrefix(req, "/"), Exported: d.Export})
	}
	return cf, nil
}

// expandLib expands a doublestar pattern. Plain paths are returned as-is so
// missing jars still show up as non-existing roots.
func expandLib(dir, lib string) ([]string, error) {
	if !strings.ContainsAny(lib, "*?[{") {
		return []string{lib}, nil
	}
	if filepath.IsAbs(lib) {
		matches, err := doublestar.FilepathGlob(lib, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		return matches, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), filepath.ToSlash(lib), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	return matches, nil
}
