// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/webtools/tapfind/pkg/types"
)

// Tapestry types the probe touches.
const (
	ConfigurationClass  = "org.apache.tapestry5.ioc.Configuration"
	WrapperClass        = "org.apache.tapestry5.ioc.internal.ValidatingConfigurationWrapper"
	LibraryMappingClass = "org.apache.tapestry5.services.LibraryMapping"
	TypeCoercerClass    = "org.apache.tapestry5.ioc.internal.TypeCoercerProxyImpl"
	LoggerClass         = "org.slf4j.Logger"
	ContributionMethod  = "contributeComponentClassResolver"

	// ProbeClassName is the public class of the generated source file.
	ProbeClassName = "TapfindProbe"
	// ProbeFileName is the file the probe source is written to.
	ProbeFileName = ProbeClassName + ".java"
)

// ErrUnrecognizedShape is returned when asked to render a probe for a wrapper
// constructor it cannot call.
var ErrUnrecognizedShape = errors.New("unrecognized configuration wrapper constructor")

//go:embed probe.java.tmpl
var probeSource string

var probeTemplate = template.Must(template.New("probe").Parse(probeSource))

type probeData struct {
	ClassName      string
	Bootstrap      string
	Configuration  string
	Wrapper        string
	LibraryMapping string
	TypeCoercer    string
	Logger         string
	Method         string
	Shape          string
	Form           string
}

// RenderProbe generates the probe source for a request.
func RenderProbe(req Request) ([]byte, error) {
	if req.Shape == ShapeUnrecognized {
		return nil, ErrUnrecognizedShape
	}
	if ok, errs := types.QualifiedName(req.Bootstrap).IsValid(); !ok {
		return nil, fmt.Errorf("probe bootstrap class: %w", errors.Join(errs...))
	}

	var buf bytes.Buffer
	err := probeTemplate.Execute(&buf, probeData{
		ClassName:      ProbeClassName,
		Bootstrap:      req.Bootstrap,
		Configuration:  ConfigurationClass,
		Wrapper:        WrapperClass,
		LibraryMapping: LibraryMappingClass,
		TypeCoercer:    TypeCoercerClass,
		Logger:         LoggerClass,
		Method:         ContributionMethod,
		Shape:          req.Shape.String(),
		Form:           req.Form.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("render probe: %w", err)
	}
	return buf.Bytes(), nil
}
