// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// KindClassNotFound means a class could not be loaded.
	KindClassNotFound ProbeErrorKind = "class-not-found"
	// KindNoSuchMethod means the contribution or a mapping accessor is missing.
	KindNoSuchMethod ProbeErrorKind = "no-such-method"
	// KindIllegalArgument means the wrapper rejected the probe's arguments.
	KindIllegalArgument ProbeErrorKind = "illegal-argument"
	// KindLinkage means a class failed to link.
	KindLinkage ProbeErrorKind = "linkage"
	// KindOther is any other failure.
	KindOther ProbeErrorKind = "other"

	nullField = `\N`
)

var (
	// ErrProbe is the sentinel behind ProbeError.
	ErrProbe = errors.New("probe failed")
	// ErrProbeOutput is returned for malformed probe records.
	ErrProbeOutput = errors.New("unexpected probe output")
)

type (
	// ProbeErrorKind classifies probe failures.
	ProbeErrorKind string

	// ProbeError is a failure reported by the probe itself.
	ProbeError struct {
		Kind    ProbeErrorKind
		Message string
	}

	// Mapping is one contributed LibraryMapping.
	Mapping struct {
		Prefix         string
		RootPackage    string
		HasPrefix      bool
		HasRootPackage bool
	}

	// Outcome is the result of a successful probe run.
	Outcome struct {
		Mappings []Mapping
		// FaultAfterContribution is set when the two-argument contribution
		// method failed on its null logger; mappings recorded before the
		// fault are kept.
		FaultAfterContribution bool
	}
)

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %s", e.Kind, e.Message)
}

// Unwrap returns ErrProbe for errors.Is() compatibility.
func (e *ProbeError) Unwrap() error { return ErrProbe }

// Last returns the last contributed mapping.
func (o *Outcome) Last() (Mapping, bool) {
	if o == nil || len(o.Mappings) == 0 {
		return Mapping{}, false
	}
	return o.Mappings[len(o.Mappings)-1], true
}

// ParseOutput reads probe stdout. An ERROR line yields a *ProbeError; lines
// that are not probe records are ignored.
func ParseOutput(r io.Reader) (*Outcome, error) {
	out := &Outcome{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "MAPPING":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrProbeOutput, line)
			}
			m := Mapping{}
			m.Prefix, m.HasPrefix = field(fields[1])
			m.RootPackage, m.HasRootPackage = field(fields[2])
			out.Mappings = append(out.Mappings, m)
		case "FAULT":
			out.FaultAfterContribution = true
		case "ERROR":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrProbeOutput, line)
			}
			pe := &ProbeError{Kind: ProbeErrorKind(fields[1])}
			if len(fields) > 2 {
				pe.Message = strings.Join(fields[2:], " ")
			}
			return nil, pe
		default:
			// Library code may print to stdout during class initialization.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read probe output: %w", err)
	}
	return out, nil
}

func field(s string) (string, bool) {
	if s == nullField {
		return "", false
	}
	return s, true
}
