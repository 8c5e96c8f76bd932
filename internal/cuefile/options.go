// SPDX-License-Identifier: MPL-2.0

package cuefile

// DefaultMaxSize caps documents at 5MB.
const DefaultMaxSize int64 = 5 * 1024 * 1024

type (
	options struct {
		maxSize  int64
		concrete bool
		filename string
	}

	// Option configures decoding.
	Option func(*options)
)

func defaultOptions() options {
	return options{maxSize: DefaultMaxSize, concrete: true, filename: "<input>"}
}

// WithMaxSize sets the largest accepted document.
func WithMaxSize(size int64) Option {
	return func(o *options) { o.maxSize = size }
}

// WithConcrete controls whether every field must be concrete after
// unification. Config files with optional fields turn it off.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

// WithFilename names the document in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		if name != "" {
			o.filename = name
		}
	}
}
