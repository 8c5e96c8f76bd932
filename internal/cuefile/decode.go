// SPDX-License-Identifier: MPL-2.0

package cuefile

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ErrTooLarge is the sentinel behind TooLargeError.
var ErrTooLarge = errors.New("document too large")

type (
	// Result is a decoded document.
	Result[T any] struct {
		Value *T
		// Unified is the schema-unified value, for callers that inspect
		// defaults or attributes.
		Unified cue.Value
	}

	// TooLargeError reports a document above the size limit.
	TooLargeError struct {
		Filename string
		Size     int64
		Max      int64
	}
)

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds the %d byte limit", e.Filename, e.Size, e.Max)
}

// Unwrap returns ErrTooLarge for errors.Is() compatibility.
func (e *TooLargeError) Unwrap() error { return ErrTooLarge }

// Decode unifies data with the schema definition def (e.g. "#Config") and
// decodes the result into T. Errors carry the document name and the CUE path
// of the offending field.
func Decode[T any](schema, data []byte, def string, opts ...Option) (*Result[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if size := int64(len(data)); size > o.maxSize {
		return nil, &TooLargeError{Filename: o.filename, Size: size, Max: o.maxSize}
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("internal error: compile schema: %w", err)
	}
	root := schemaValue.LookupPath(cue.ParsePath(def))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema definition %s: %w", def, err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := root.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var v T
	if err := unified.Decode(&v); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &Result[T]{Value: &v, Unified: unified}, nil
}

// DecodeFile reads path and decodes it like Decode, naming the file in errors.
func DecodeFile[T any](schema []byte, path, def string, opts ...Option) (*Result[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode[T](schema, data, def, append([]Option{WithFilename(path)}, opts...)...)
}
