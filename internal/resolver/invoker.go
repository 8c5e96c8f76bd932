// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/webtools/tapfind/internal/classfile"
	"github.com/webtools/tapfind/internal/jvm"
	"github.com/webtools/tapfind/pkg/types"
)

// maxSuperclassDepth bounds the superclass walk when looking for the
// contribution method.
const maxSuperclassDepth = 16

var (
	// ErrUnrecognizedShape is returned when the configuration wrapper has no
	// constructor the probe knows how to call.
	ErrUnrecognizedShape = jvm.ErrUnrecognizedShape
	// ErrNoSuchMethod is the sentinel behind NoSuchMethodError.
	ErrNoSuchMethod = errors.New("no such method")
)

type (
	// ClassFinder looks up class bytes and exposes the classpath they come
	// from. *loader.Context implements it.
	ClassFinder interface {
		FindClass(name types.QualifiedName) ([]byte, error)
		Classpath() []string
	}

	// NoSuchMethodError reports a module without a usable contribution method.
	NoSuchMethodError struct {
		Class  string
		Method string
	}

	// DynamicInvoker inspects the module and the Tapestry runtime classes on
	// the scan classpath, then runs the probe on a JVM.
	DynamicInvoker struct {
		classes ClassFinder
		runner  jvm.Runner
		logger  *log.Logger
	}
)

// Error implements the error interface.
func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("%s has no public static %s(Configuration) or %s(Configuration, Logger)", e.Class, e.Method, e.Method)
}

// Unwrap returns ErrNoSuchMethod for errors.Is() compatibility.
func (e *NoSuchMethodError) Unwrap() error { return ErrNoSuchMethod }

// NewDynamicInvoker creates an invoker over a class lookup and a JVM runner.
func NewDynamicInvoker(classes ClassFinder, runner jvm.Runner, logger *log.Logger) *DynamicInvoker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DynamicInvoker{classes: classes, runner: runner, logger: logger}
}

// Invoke resolves the module's contribution. Missing classes, an unknown
// wrapper shape or a missing contribution method fail before any JVM runs.
// When several mappings are contributed the last one wins.
func (d *DynamicInvoker) Invoke(ctx context.Context, bootstrap string) (PackageInfo, error) {
	for _, name := range []string{jvm.ConfigurationClass, jvm.LibraryMappingClass} {
		if _, err := d.classes.FindClass(types.QualifiedName(name)); err != nil {
			return PackageInfo{}, err
		}
	}

	module, err := d.parse(types.QualifiedName(bootstrap))
	if err != nil {
		return PackageInfo{}, err
	}
	wrapper, err := d.parse(jvm.WrapperClass)
	if err != nil {
		return PackageInfo{}, err
	}

	shape, err := DetectShape(wrapper)
	if err != nil {
		return PackageInfo{}, err
	}
	if shape == jvm.ShapeWithCoercer {
		if _, err := d.classes.FindClass(jvm.TypeCoercerClass); err != nil {
			return PackageInfo{}, err
		}
	}

	form, err := d.detectForm(module)
	if err != nil {
		return PackageInfo{}, err
	}

	d.logger.Debug("invoking module", "module", bootstrap, "shape", shape, "form", form)
	outcome, err := d.runner.Run(ctx, jvm.Request{
		Bootstrap: bootstrap,
		Shape:     shape,
		Form:      form,
		Classpath: d.classes.Classpath(),
	})
	if err != nil {
		return PackageInfo{}, err
	}
	if outcome.FaultAfterContribution {
		d.logger.Debug("ignored null logger fault after contribution", "module", bootstrap)
	}

	m, ok := outcome.Last()
	if !ok {
		return PackageInfo{}, fmt.Errorf("%s: %w", bootstrap, ErrNoMapping)
	}
	return PackageInfo{
		Prefix:         m.Prefix,
		RootPackage:    m.RootPackage,
		HasPrefix:      m.HasPrefix,
		HasRootPackage: m.HasRootPackage,
		Tier:           TierInvocation,
	}, nil
}

func (d *DynamicInvoker) parse(name types.QualifiedName) (*classfile.Class, error) {
	data, err := d.classes.FindClass(name)
	if err != nil {
		return nil, err
	}
	cls, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return cls, nil
}

// DetectShape classifies the first public constructor of the configuration
// wrapper.
func DetectShape(wrapper *classfile.Class) (jvm.Shape, error) {
	ctors := wrapper.PublicConstructors()
	if len(ctors) == 0 {
		return jvm.ShapeUnrecognized, fmt.Errorf("%s: no public constructor: %w", wrapper.Name, ErrUnrecognizedShape)
	}
	params, err := ctors[0].Params()
	if err != nil {
		return jvm.ShapeUnrecognized, fmt.Errorf("%s: %w", wrapper.Name, err)
	}

	switch {
	case len(params) == 4 && params[1].IsClass("java/lang/String"):
		return jvm.ShapeCollectionFirst, nil
	case len(params) == 4:
		return jvm.ShapeTypeFirst, nil
	case len(params) == 5:
		return jvm.ShapeWithCoercer, nil
	default:
		return jvm.ShapeUnrecognized, fmt.Errorf("%s%s: %w", wrapper.Name, ctors[0].Descriptor, ErrUnrecognizedShape)
	}
}

// DetectForm finds the contribution method on the class itself. The
// single-argument form is preferred when both are declared.
func DetectForm(module *classfile.Class) (jvm.Form, bool) {
	configuration := types.QualifiedName(jvm.ConfigurationClass).InternalName()
	logger := types.QualifiedName(jvm.LoggerClass).InternalName()

	withLogger := false
	for _, m := range module.StaticMethods(jvm.ContributionMethod) {
		params, err := m.Params()
		if err != nil || len(params) == 0 || !params[0].IsClass(configuration) {
			continue
		}
		switch {
		case len(params) == 1:
			return jvm.FormSingle, true
		case len(params) == 2 && params[1].IsClass(logger):
			withLogger = true
		}
	}
	if withLogger {
		return jvm.FormWithLogger, true
	}
	return jvm.FormSingle, false
}

// detectForm looks for the contribution method on the module and its
// superclasses, as reflection's getMethod does for public static methods.
func (d *DynamicInvoker) detectForm(module *classfile.Class) (jvm.Form, error) {
	cls := module
	for range maxSuperclassDepth {
		if form, ok := DetectForm(cls); ok {
			return form, nil
		}
		if cls.SuperName == "" || cls.SuperName == "java/lang/Object" {
			break
		}
		super, err := d.parse(types.FromInternalName(cls.SuperName))
		if err != nil {
			break
		}
		cls = super
	}
	return jvm.FormSingle, &NoSuchMethodError{Class: types.FromInternalName(module.Name).String(), Method: jvm.ContributionMethod}
}
