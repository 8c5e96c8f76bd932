// SPDX-License-Identifier: MPL-2.0

package jvm

const (
	// ShapeUnrecognized is a wrapper constructor no probe can call.
	ShapeUnrecognized Shape = iota
	// ShapeCollectionFirst is (Collection, String, Class, ObjectLocator), Tapestry 5.1.
	ShapeCollectionFirst
	// ShapeTypeFirst is (Class, ObjectLocator, Collection, String), Tapestry 5.2.
	ShapeTypeFirst
	// ShapeWithCoercer is (Class, ObjectLocator, TypeCoercer, Collection, String), Tapestry 5.3.
	ShapeWithCoercer
)

const (
	// FormSingle is contributeComponentClassResolver(Configuration).
	FormSingle Form = iota
	// FormWithLogger is contributeComponentClassResolver(Configuration, Logger).
	FormWithLogger
)

type (
	// Shape identifies the constructor signature of ValidatingConfigurationWrapper.
	Shape int

	// Form identifies the signature of the contribution method.
	Form int
)

// String returns the shape name used by the probe template.
func (s Shape) String() string {
	switch s {
	case ShapeCollectionFirst:
		return "collection-first"
	case ShapeTypeFirst:
		return "type-first"
	case ShapeWithCoercer:
		return "with-coercer"
	default:
		return "unrecognized"
	}
}

// String returns the form name used by the probe template.
func (f Form) String() string {
	if f == FormWithLogger {
		return "with-logger"
	}
	return "single"
}
