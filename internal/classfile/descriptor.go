// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"fmt"
	"strings"
)

// ErrInvalidDescriptor is returned for descriptors that do not follow the JVM grammar.
var ErrInvalidDescriptor = fmt.Errorf("%w: invalid descriptor", ErrMalformed)

// FieldType is one field-type term of a descriptor, such as "I",
// "Ljava/lang/String;" or "[Ljava/lang/Object;".
type FieldType string

// ClassName returns the internal class name for object types and "" otherwise.
func (t FieldType) ClassName() string {
	s := string(t)
	if strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";") {
		return s[1 : len(s)-1]
	}
	return ""
}

// IsClass reports whether the type is the object type named internalName.
func (t FieldType) IsClass(internalName string) bool {
	return t.ClassName() == internalName
}

// ParseMethodDescriptor splits "(params)ret" into parameter terms and the return term.
func ParseMethodDescriptor(desc string) (params []FieldType, ret FieldType, err error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidDescriptor, desc)
	}
	end := strings.IndexByte(desc, ')')
	if end < 0 {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidDescriptor, desc)
	}

	rest := desc[1:end]
	for rest != "" {
		n, ok := fieldTypeLen(rest)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidDescriptor, desc)
		}
		params = append(params, FieldType(rest[:n]))
		rest = rest[n:]
	}

	r := desc[end+1:]
	if r != "V" {
		n, ok := fieldTypeLen(r)
		if !ok || n != len(r) {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidDescriptor, desc)
		}
	}
	return params, FieldType(r), nil
}

// fieldTypeLen returns the length of the leading field-type term of s.
func fieldTypeLen(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return 0, false
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, true
	case 'L':
		semi := strings.IndexByte(s[i:], ';')
		if semi < 2 {
			return 0, false
		}
		return i + semi + 1, true
	default:
		return 0, false
	}
}
