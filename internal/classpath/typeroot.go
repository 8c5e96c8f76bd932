// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/webtools/tapfind/internal/classfile"
	"github.com/webtools/tapfind/pkg/types"
)

var (
	// package com.acme.foo;
	reJavaPackage = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z0-9_$.]+)\s*;`)
	// [@Annotation(...)] [modifiers] class|interface|enum|record|@interface Name
	reJavaType = regexp.MustCompile(`(?m)^\s*(?:(?:@[A-Za-z0-9_$.]+(?:\s*\([^)]*\))?|public|protected|private|abstract|final|sealed|non-sealed|static|strictfp)\s+)*(?:class|interface|enum|record|@interface)\s+([A-Za-z0-9_$]+)`)
)

type (
	classTypeRoot struct {
		name   string
		pkg    types.QualifiedName
		path   string
		open   func() (io.ReadCloser, error)
		exists func() bool
	}

	sourceTypeRoot struct {
		name string
		pkg  types.QualifiedName
		path string
	}
)

func (c *classTypeRoot) Name() string { return c.name }
func (c *classTypeRoot) Exists() bool { return c.exists() }

// PrimaryType parses the class file and returns its type when the declared
// class matches the file name.
func (c *classTypeRoot) PrimaryType() (*types.JavaType, error) {
	rc, err := c.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	cls, err := classfile.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	fqn := types.FromInternalName(cls.Name)
	if fqn.SimpleName() != strings.TrimSuffix(c.name, ".class") {
		return nil, nil
	}
	return &types.JavaType{Name: fqn.SimpleName(), Package: fqn.Parent(), Path: c.path, Binary: true}, nil
}

func (s *sourceTypeRoot) Name() string { return s.name }
func (s *sourceTypeRoot) Exists() bool { return fileExists(s.path) }

// PrimaryType scans the compilation unit for a top-level declaration named
// after the file. The package declaration wins over the folder layout.
func (s *sourceTypeRoot) PrimaryType() (*types.JavaType, error) {
	src, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	want := strings.TrimSuffix(s.name, ".java")

	found := false
	for _, m := range reJavaType.FindAllSubmatch(src, -1) {
		if string(m[1]) == want {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	pkg := s.pkg
	if m := reJavaPackage.FindSubmatch(src); m != nil {
		pkg = types.QualifiedName(m[1])
	}
	return &types.JavaType{Name: want, Package: pkg, Path: s.path}, nil
}
