// SPDX-License-Identifier: MPL-2.0

package feature

import (
	"strings"

	"github.com/webtools/tapfind/pkg/types"
)

// Record is one discovered feature class.
type Record struct {
	// Kind is the feature kind the class was discovered as.
	Kind Kind
	// Prefix is the library URL prefix ("" for the application and the core
	// library, "?" when it could not be determined).
	Prefix string
	// Type is the primary type declared by the class file or compilation unit.
	Type types.JavaType
	// Source is the path of the package the class was found in.
	Source string
	// SubPackage is the package path below the conventional sub-package,
	// dot-separated ("" when the class sits directly in it).
	SubPackage string
	// Model is the project model that owns the record. Set on insertion.
	Model *Model
}

// New creates a record. The model back-reference is assigned when the record
// is added to a Model.
func New(kind Kind, prefix string, typ types.JavaType, source, subPackage string) *Record {
	return &Record{
		Kind:       kind,
		Prefix:     prefix,
		Type:       typ,
		Source:     source,
		SubPackage: subPackage,
	}
}

// LogicalName returns the name templates use to address the feature:
// prefix, sub-package folders and the simple class name joined by "/".
func (r *Record) LogicalName() string {
	parts := make([]string, 0, 3)
	if r.Prefix != "" {
		parts = append(parts, r.Prefix)
	}
	if r.SubPackage != "" {
		parts = append(parts, strings.ReplaceAll(r.SubPackage, ".", "/"))
	}
	parts = append(parts, r.Type.Name)
	return strings.Join(parts, "/")
}
