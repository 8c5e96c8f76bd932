// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

type (
	// ClasspathEntry is one <classpathentry> written by Project.
	ClasspathEntry struct {
		Kind     string
		Path     string
		Output   string
		Exported bool
	}

	// ProjectFixture writes an Eclipse-style project (.project + .classpath)
	// under a workspace directory.
	ProjectFixture struct {
		t       testing.TB
		Dir     string
		Name    string
		entries []ClasspathEntry
	}
)

// Project creates the project directory workspace/name and returns a fixture
// whose classpath defaults to a single "bin" output location.
func Project(t testing.TB, workspace, name string) *ProjectFixture {
	t.Helper()
	dir := filepath.Join(workspace, name)
	MustMkdirAll(t, dir)
	return &ProjectFixture{t: t, Dir: dir, Name: name}
}

// Source adds a source folder entry and creates the folder.
func (p *ProjectFixture) Source(path string) *ProjectFixture {
	MustMkdirAll(p.t, filepath.Join(p.Dir, path))
	p.entries = append(p.entries, ClasspathEntry{Kind: "src", Path: path})
	return p
}

// Lib adds a library entry. Relative paths are project-relative.
func (p *ProjectFixture) Lib(path string) *ProjectFixture {
	p.entries = append(p.entries, ClasspathEntry{Kind: "lib", Path: path})
	return p
}

// Require adds a dependency on another workspace project.
func (p *ProjectFixture) Require(project string) *ProjectFixture {
	p.entries = append(p.entries, ClasspathEntry{Kind: "src", Path: "/" + project, Exported: true})
	return p
}

// Entry adds a raw classpath entry.
func (p *ProjectFixture) Entry(e ClasspathEntry) *ProjectFixture {
	p.entries = append(p.entries, e)
	return p
}

// File writes a file relative to the project directory.
func (p *ProjectFixture) File(rel string, data []byte) *ProjectFixture {
	MustWriteFile(p.t, filepath.Join(p.Dir, filepath.FromSlash(rel)), data)
	return p
}

// JavaSource writes a compilation unit declaring public class fqn under the
// source folder src.
func (p *ProjectFixture) JavaSource(src, fqn string) *ProjectFixture {
	pkg, name := "", fqn
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		pkg, name = fqn[:i], fqn[i+1:]
	}
	var body strings.Builder
	if pkg != "" {
		fmt.Fprintf(&body, "package %s;\n\n", pkg)
	}
	fmt.Fprintf(&body, "public class %s {\n}\n", name)
	rel := filepath.Join(src, filepath.FromSlash(strings.ReplaceAll(fqn, ".", "/"))+".java")
	return p.File(rel, []byte(body.String()))
}

// WebXML writes WEB-INF/web.xml declaring the tapestry.app-package context parameter.
func (p *ProjectFixture) WebXML(webRoot, appPackage string) *ProjectFixture {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<web-app>
  <display-name>fixture</display-name>
  <context-param>
    <param-name>tapestry.app-package</param-name>
    <param-value>` + appPackage + `</param-value>
  </context-param>
</web-app>
`
	return p.File(filepath.Join(webRoot, "WEB-INF", "web.xml"), []byte(doc))
}

// Write renders .project and .classpath.
func (p *ProjectFixture) Write() *ProjectFixture {
	p.t.Helper()
	project := `<?xml version="1.0" encoding="UTF-8"?>
<projectDescription>
  <name>` + p.Name + `</name>
  <natures><nature>org.eclipse.jdt.core.javanature</nature></natures>
</projectDescription>
`
	MustWriteFile(p.t, filepath.Join(p.Dir, ".project"), []byte(project))

	var cp strings.Builder
	cp.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<classpath>\n")
	for _, e := range p.entries {
		cp.WriteString(fmt.Sprintf(`  <classpathentry kind=%q path=%q`, e.Kind, e.Path))
		if e.Output != "" {
			cp.WriteString(fmt.Sprintf(` output=%q`, e.Output))
		}
		if e.Exported {
			cp.WriteString(` exported="true"`)
		}
		cp.WriteString("/>\n")
	}
	cp.WriteString(`  <classpathentry kind="output" path="bin"/>` + "\n</classpath>\n")
	MustWriteFile(p.t, filepath.Join(p.Dir, ".classpath"), []byte(cp.String()))
	return p
}
