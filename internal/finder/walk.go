// SPDX-License-Identifier: MPL-2.0

package finder

import (
	"strings"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/resolver"
	"github.com/webtools/tapfind/pkg/feature"
)

// walkRoot lists the packages of root once and walks them for every kind.
func (s *scan) walkRoot(root classpath.Root, info resolver.PackageInfo) int {
	pkgs, err := root.Packages()
	if err != nil {
		s.report(SeverityError, CodeRootChildrenFailed, root.Path(), err, "can't list the packages of "+root.Name())
		return 0
	}

	n := 0
	for _, k := range feature.Kinds() {
		n += s.walk(pkgs, info.RootPackage, info.Prefix, k)
	}
	return n
}

// walk visits the packages at or below rootPackage.<kind sub-package>.
func (s *scan) walk(pkgs []classpath.Package, rootPackage, prefix string, k feature.Kind) int {
	base := rootPackage + "." + k.SubPackage()
	n := 0
	for _, pkg := range pkgs {
		sub, ok := subPackage(pkg.Name().String(), base)
		if !ok {
			continue
		}
		n += s.walkPackage(pkg, prefix, k, sub)
	}
	return n
}

func (s *scan) walkPackage(pkg classpath.Package, prefix string, k feature.Kind, sub string) int {
	n := 0
	classes, err := pkg.ClassFiles()
	if err != nil {
		s.report(SeverityWarning, CodeClassFilesFailed, pkg.Path(), err, "can't list the class files of "+pkg.Name().String())
	}
	for _, tr := range classes {
		n += s.visit(tr, pkg, prefix, k, sub)
	}

	units, err := pkg.CompilationUnits()
	if err != nil {
		s.report(SeverityWarning, CodeCompilationUnitsFailed, pkg.Path(), err, "can't list the sources of "+pkg.Name().String())
	}
	for _, tr := range units {
		n += s.visit(tr, pkg, prefix, k, sub)
	}
	return n
}

// visit adds the primary type of tr, skipping inner classes.
func (s *scan) visit(tr classpath.TypeRoot, pkg classpath.Package, prefix string, k feature.Kind, sub string) int {
	if strings.Contains(tr.Name(), "$") || !tr.Exists() {
		return 0
	}
	typ, err := tr.PrimaryType()
	if err != nil {
		s.report(SeverityWarning, CodePrimaryTypeFailed, pkg.Path(), err, "can't read "+tr.Name())
		return 0
	}
	if typ == nil {
		return 0
	}
	feature.Add(s.sink, feature.New(k, prefix, *typ, pkg.Path(), sub))
	return 1
}

// subPackage reports whether name is base or lies below it, and returns the
// remainder after "base.".
func subPackage(name, base string) (string, bool) {
	if name == base {
		return "", true
	}
	return strings.CutPrefix(name, base+".")
}
