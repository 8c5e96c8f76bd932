// SPDX-License-Identifier: MPL-2.0

// Package resolver determines the URL prefix and root package a library
// contributes, trying in order: running the library's module on a JVM, the
// declarative registry, and deduction from the module's package name.
package resolver

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/webtools/tapfind/internal/registry"
)

// UnknownPrefix stands for a prefix deduction cannot determine.
const UnknownPrefix = "?"

const (
	// TierNone means no tier produced a result.
	TierNone Tier = iota
	// TierInvocation is the dynamic invocation of the module on a JVM.
	TierInvocation
	// TierRegistry is the declarative registry lookup.
	TierRegistry
	// TierDeduction is the heuristic based on the ".services" package.
	TierDeduction
)

const servicesSegment = ".services"

// ErrNoMapping is returned when a module ran but contributed no mapping.
var ErrNoMapping = errors.New("module contributed no library mapping")

type (
	// Tier identifies the resolution strategy that produced a PackageInfo.
	Tier int

	// PackageInfo is the (prefix, root package) pair of a library.
	PackageInfo struct {
		Prefix         string `json:"prefix" yaml:"prefix"`
		RootPackage    string `json:"root_package" yaml:"root_package"`
		HasPrefix      bool   `json:"-" yaml:"-"`
		HasRootPackage bool   `json:"-" yaml:"-"`
		Tier           Tier   `json:"tier" yaml:"tier"`
	}

	// Invoker runs a bootstrap class and reports its contribution.
	Invoker interface {
		Invoke(ctx context.Context, bootstrap string) (PackageInfo, error)
	}

	// Registry resolves a bootstrap class declaratively. *registry.Registry
	// implements it.
	Registry interface {
		Resolve(appModule string) (registry.Entry, bool)
	}

	// Resolver runs the tiers in order.
	Resolver struct {
		invoker  Invoker
		registry Registry
		logger   *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierInvocation:
		return "invocation"
	case TierRegistry:
		return "registry"
	case TierDeduction:
		return "deduction"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Resolved reports whether both the prefix and the root package are known.
func (p PackageInfo) Resolved() bool {
	return p.HasPrefix && p.HasRootPackage
}

// WithInvoker enables the invocation tier. A nil invoker disables it.
func WithInvoker(inv Invoker) Option {
	return func(r *Resolver) { r.invoker = inv }
}

// WithRegistry sets the registry consulted by the second tier.
func WithRegistry(reg Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a resolver. Without options only deduction is available.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the package info of the library whose module class is
// bootstrap. The first tier yielding both values wins; failures fall through.
// A result that is not Resolved means the library cannot be walked.
func (r *Resolver) Resolve(ctx context.Context, bootstrap string) PackageInfo {
	if r.invoker != nil {
		info, err := r.invoker.Invoke(ctx, bootstrap)
		switch {
		case err != nil:
			r.logger.Info("invocation failed, trying the registry", "module", bootstrap, "error", err)
		case info.Resolved():
			info.Tier = TierInvocation
			return info
		default:
			r.logger.Info("invocation returned an incomplete mapping", "module", bootstrap)
		}
	}

	if r.registry != nil {
		if e, ok := r.registry.Resolve(bootstrap); ok && e.Complete() {
			r.logger.Debug("registry mapping", "module", bootstrap, "prefix", e.Prefix, "package", e.Package, "source", e.Source)
			return PackageInfo{Prefix: e.Prefix, RootPackage: e.Package, HasPrefix: true, HasRootPackage: true, Tier: TierRegistry}
		}
		r.logger.Debug("no registry mapping", "module", bootstrap)
	}

	info := Deduce(bootstrap)
	if info.Resolved() {
		r.logger.Debug("deduced root package", "module", bootstrap, "package", info.RootPackage)
	}
	return info
}

// Deduce derives the root package from the text before the last ".services"
// of the module name, with UnknownPrefix as prefix. Names without ".services"
// stay unresolved.
func Deduce(bootstrap string) PackageInfo {
	i := strings.LastIndex(bootstrap, servicesSegment)
	if i < 0 {
		return PackageInfo{}
	}
	return PackageInfo{
		Prefix:         UnknownPrefix,
		RootPackage:    bootstrap[:i],
		HasPrefix:      true,
		HasRootPackage: true,
		Tier:           TierDeduction,
	}
}
