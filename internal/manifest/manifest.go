// SPDX-License-Identifier: MPL-2.0

// Package manifest reads JAR manifests (META-INF/MANIFEST.MF).
package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Path is the manifest location inside a classpath root.
	Path = "META-INF/MANIFEST.MF"
	// ModuleClassesAttribute lists the IoC module classes of a library.
	ModuleClassesAttribute = "Tapestry-Module-Classes"
)

// ErrMalformed is returned for manifests that do not follow the JAR format.
var ErrMalformed = errors.New("malformed manifest")

type (
	// Manifest holds the main attributes and the named per-entry sections.
	Manifest struct {
		Main     Attributes
		Sections map[string]Attributes
	}

	// Attributes maps header names to values. Lookups are case-insensitive,
	// as header names are in the JAR format.
	Attributes map[string]string

	// SyntaxError reports the line where parsing failed.
	SyntaxError struct {
		Line   int
		Reason string
	}
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("manifest line %d: %s", e.Line, e.Reason)
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error { return ErrMalformed }

// Get returns the value of a header, matching the name case-insensitively.
func (a Attributes) Get(name string) (string, bool) {
	if v, ok := a[name]; ok {
		return v, true
	}
	for k, v := range a {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// BootstrapClass returns the first class listed in Tapestry-Module-Classes.
func (m *Manifest) BootstrapClass() (string, bool) {
	v, ok := m.Main.Get(ModuleClassesAttribute)
	if !ok {
		return "", false
	}
	for _, field := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		if field != "" {
			return field, true
		}
	}
	return "", false
}

// Parse reads a manifest. Lines may end with CRLF, LF or CR; a line starting
// with a single space continues the previous header; blank lines separate
// sections, and a section starts with a Name header.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{Main: Attributes{}, Sections: map[string]Attributes{}}

	sc := bufio.NewScanner(r)
	sc.Split(scanLines)

	var (
		current = m.Main
		section Attributes
		lastKey string
		lineNo  int
	)

	flush := func() error {
		if len(section) == 0 {
			return nil
		}
		name, ok := section["Name"]
		if !ok {
			return &SyntaxError{Line: lineNo, Reason: "section without Name header"}
		}
		m.Sections[name] = section
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			section = Attributes{}
			current = section
			lastKey = ""
			continue
		}

		if strings.HasPrefix(line, " ") {
			if lastKey == "" {
				return nil, &SyntaxError{Line: lineNo, Reason: "continuation without a header"}
			}
			current[lastKey] += line[1:]
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" || (value != "" && !strings.HasPrefix(value, " ")) {
			return nil, &SyntaxError{Line: lineNo, Reason: fmt.Sprintf("invalid header %q", line)}
		}
		current[key] = strings.TrimPrefix(value, " ")
		lastKey = key
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return m, nil
}

// scanLines splits on CRLF, LF or a lone CR.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
