// SPDX-License-Identifier: MPL-2.0

// Package registry holds the declarative library mapping table consulted when
// a library's module cannot be executed.
package registry

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/webtools/tapfind/internal/cuefile"
)

// BuiltinSource names entries shipped with tapfind.
const BuiltinSource = "builtin"

var (
	//go:embed registry_schema.cue
	schema []byte

	//go:embed builtin.cue
	builtin []byte
)

type (
	// Entry maps a module class to a prefix and root package. An empty
	// Prefix is a valid mapping for libraries whose components are served
	// without a prefix.
	Entry struct {
		AppModule string `json:"app_module"`
		Prefix    string `json:"prefix"`
		Package   string `json:"package"`
		// PrefixUnset is true when a registry file left the prefix out.
		PrefixUnset bool `json:"-"`
		// Source is the file the entry was read from, or BuiltinSource.
		Source string `json:"-"`
	}

	// Registry is an ordered list of entries. Later entries take precedence.
	Registry struct {
		entries []Entry
	}

	file struct {
		Entries []fileEntry `json:"entries"`
	}

	// fileEntry keeps optional fields as pointers so a declared "" can be
	// told apart from an absent field.
	fileEntry struct {
		AppModule string  `json:"app_module"`
		Prefix    *string `json:"prefix"`
		Package   *string `json:"package"`
	}
)

// Complete reports whether the entry declares a prefix, possibly empty, and
// a non-empty package.
func (e Entry) Complete() bool {
	return !e.PrefixUnset && e.Package != ""
}

// New creates a registry holding the given entries.
func New(entries ...Entry) *Registry {
	return &Registry{entries: slices.Clone(entries)}
}

// Builtin returns the entries shipped with tapfind.
func Builtin() (*Registry, error) {
	entries, err := parse(builtin, BuiltinSource)
	if err != nil {
		return nil, err
	}
	return New(entries...), nil
}

// Load builds a registry from the builtin entries (when includeBuiltin is set)
// followed by every file in order, so user files override builtin entries.
func Load(paths []string, includeBuiltin bool) (*Registry, error) {
	r := New()
	if includeBuiltin {
		b, err := Builtin()
		if err != nil {
			return nil, err
		}
		r.Add(b.entries...)
	}
	for _, path := range paths {
		entries, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		r.Add(entries...)
	}
	return r, nil
}

// LoadFile reads and validates one registry file.
func LoadFile(path string) ([]Entry, error) {
	res, err := cuefile.DecodeFile[file](schema, path, "#Registry")
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return toEntries(res.Value.Entries, path), nil
}

func parse(data []byte, source string) ([]Entry, error) {
	res, err := cuefile.Decode[file](schema, data, "#Registry", cuefile.WithFilename(source))
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return toEntries(res.Value.Entries, source), nil
}

func toEntries(raw []fileEntry, source string) []Entry {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e := Entry{
			AppModule:   strings.TrimSpace(r.AppModule),
			PrefixUnset: r.Prefix == nil,
			Source:      source,
		}
		if r.Prefix != nil {
			e.Prefix = *r.Prefix
		}
		if r.Package != nil {
			e.Package = *r.Package
		}
		entries = append(entries, e)
	}
	return entries
}

// Add appends entries.
func (r *Registry) Add(entries ...Entry) {
	r.entries = append(r.entries, entries...)
}

// Entries returns all entries in precedence order.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Lookup returns every entry declared for appModule, in order.
func (r *Registry) Lookup(appModule string) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.AppModule == appModule {
			out = append(out, e)
		}
	}
	return out
}

// Resolve returns the last entry declared for appModule.
func (r *Registry) Resolve(appModule string) (Entry, bool) {
	matches := r.Lookup(appModule)
	if len(matches) == 0 {
		return Entry{}, false
	}
	return matches[len(matches)-1], true
}
