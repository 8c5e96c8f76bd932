// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Manifest renders a JAR manifest with the given main attributes.
// Keys are written in sorted order after Manifest-Version.
func Manifest(attrs map[string]string) []byte {
	var sb strings.Builder
	sb.WriteString("Manifest-Version: 1.0\r\n")
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k + ": " + attrs[k] + "\r\n")
	}
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// ClassEntry returns the jar entry name and class bytes for a dotted class name.
func ClassEntry(fqn string, methods ...MethodSpec) (string, []byte) {
	return strings.ReplaceAll(fqn, ".", "/") + ".class", ClassFile(fqn, methods...)
}

// Classes builds a jar entry map holding one class file per dotted name.
func Classes(fqns ...string) map[string][]byte {
	entries := make(map[string][]byte, len(fqns))
	for _, fqn := range fqns {
		name, data := ClassEntry(fqn)
		entries[name] = data
	}
	return entries
}

// WriteJar writes a zip archive at path with the given entries. Parent
// directory entries are added the way the jar tool does.
func WriteJar(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create jar %s: %v", path, err)
	}
	zw := zip.NewWriter(f)

	names := make([]string, 0, len(entries))
	dirs := map[string]bool{}
	for name := range entries {
		names = append(names, name)
		for d := filepath.ToSlash(filepath.Dir(name)); d != "." && d != "/"; d = filepath.ToSlash(filepath.Dir(d)) {
			dirs[d+"/"] = true
		}
	}
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to %s: %v", name, path, err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("failed to write %s to %s: %v", name, path, err)
		}
	}
	MustClose(t, zw)
	MustClose(t, f)
}
