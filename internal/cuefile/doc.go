// SPDX-License-Identifier: MPL-2.0

// Package cuefile decodes user-authored CUE files against embedded schemas.
//
// Every CUE document tapfind reads (config.cue, registry files) goes through
// the same flow: compile the schema, compile the document, unify it with a
// root definition, validate, decode into a Go struct.
//
//	//go:embed registry_schema.cue
//	var schema []byte
//
//	res, err := cuefile.Decode[File](schema, data, "#Registry", cuefile.WithFilename(path))
//	if err != nil {
//	    return nil, err // "<file>: entries[0].prefix: ..."
//	}
package cuefile
