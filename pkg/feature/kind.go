// SPDX-License-Identifier: MPL-2.0

package feature

import (
	"errors"
	"fmt"
)

const (
	// Component is a class under <root>.components.
	Component Kind = iota
	// Page is a class under <root>.pages.
	Page
	// Mixin is a class under <root>.mixins.
	Mixin
	// Service is a class under <root>.services.
	Service
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid feature kind")

type (
	// Kind enumerates feature kinds.
	Kind int

	// InvalidKindError is returned by ParseKind for unknown names.
	InvalidKindError struct {
		Value string
	}
)

// Kinds returns every kind in walk order.
func Kinds() []Kind {
	return []Kind{Component, Page, Mixin, Service}
}

// SubPackage returns the conventional sub-package holding features of this kind.
func (k Kind) SubPackage() string {
	switch k {
	case Component:
		return "components"
	case Page:
		return "pages"
	case Mixin:
		return "mixins"
	case Service:
		return "services"
	default:
		return ""
	}
}

// String returns the singular lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Component:
		return "component"
	case Page:
		return "page"
	case Mixin:
		return "mixin"
	case Service:
		return "service"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the singular or the sub-package form ("page" or "pages").
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if s == k.String() || s == k.SubPackage() {
			return k, nil
		}
	}
	return 0, &InvalidKindError{Value: s}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid feature kind %q (expected component, page, mixin or service)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// MarshalText encodes the kind by its singular name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
