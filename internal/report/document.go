// SPDX-License-Identifier: MPL-2.0

package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/webtools/tapfind/internal/finder"
	"github.com/webtools/tapfind/pkg/feature"
)

type (
	// Document is the rendered view of one scan.
	Document struct {
		ID          uuid.UUID           `json:"id" yaml:"id"`
		Project     string              `json:"project" yaml:"project"`
		Status      finder.Status       `json:"status" yaml:"status"`
		Message     string              `json:"message,omitempty" yaml:"message,omitempty"`
		Started     time.Time           `json:"started" yaml:"started"`
		Duration    string              `json:"duration" yaml:"duration"`
		Summary     Summary             `json:"summary" yaml:"summary"`
		Features    []Feature           `json:"features" yaml:"features"`
		Roots       []finder.RootReport `json:"roots" yaml:"roots"`
		Diagnostics []finder.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	}

	// Summary counts features per kind and diagnostics per severity.
	Summary struct {
		Components int `json:"components" yaml:"components"`
		Pages      int `json:"pages" yaml:"pages"`
		Mixins     int `json:"mixins" yaml:"mixins"`
		Services   int `json:"services" yaml:"services"`
		Roots      int `json:"roots" yaml:"roots"`
		Walked     int `json:"walked" yaml:"walked"`
		Warnings   int `json:"warnings" yaml:"warnings"`
		Errors     int `json:"errors" yaml:"errors"`
	}

	// Feature is one discovered feature class.
	Feature struct {
		Kind        feature.Kind `json:"kind" yaml:"kind"`
		LogicalName string       `json:"logical_name" yaml:"logical_name"`
		Class       string       `json:"class" yaml:"class"`
		Prefix      string       `json:"prefix,omitempty" yaml:"prefix,omitempty"`
		SubPackage  string       `json:"sub_package,omitempty" yaml:"sub_package,omitempty"`
		Source      string       `json:"source" yaml:"source"`
		Binary      bool         `json:"binary" yaml:"binary"`
	}
)

// Build assembles a document from a scan result and the model it filled.
// A nil model yields a document without features. When kinds is non-empty
// only features of those kinds are listed; the summary always counts all.
func Build(res *finder.Result, model *feature.Model, kinds ...feature.Kind) Document {
	doc := Document{
		ID:          res.ID,
		Project:     res.Project,
		Status:      res.Status,
		Message:     res.Message,
		Started:     res.Started,
		Roots:       slices.Clone(res.Roots),
		Diagnostics: slices.Clone(res.Diagnostics),
		Features:    []Feature{},
	}
	if !res.Finished.IsZero() {
		doc.Duration = res.Finished.Sub(res.Started).Round(time.Millisecond).String()
	}
	if doc.Roots == nil {
		doc.Roots = []finder.RootReport{}
	}
	if doc.Diagnostics == nil {
		doc.Diagnostics = []finder.Diagnostic{}
	}

	doc.Summary.Roots = len(res.Roots)
	for _, r := range res.Roots {
		if r.Walked {
			doc.Summary.Walked++
		}
	}
	for _, d := range res.Diagnostics {
		switch d.Severity {
		case finder.SeverityWarning:
			doc.Summary.Warnings++
		case finder.SeverityError:
			doc.Summary.Errors++
		}
	}

	if model == nil {
		return doc
	}
	doc.Summary.Components = len(model.All(feature.Component))
	doc.Summary.Pages = len(model.All(feature.Page))
	doc.Summary.Mixins = len(model.All(feature.Mixin))
	doc.Summary.Services = len(model.All(feature.Service))

	for _, k := range feature.Kinds() {
		if len(kinds) > 0 && !slices.Contains(kinds, k) {
			continue
		}
		for _, r := range model.All(k) {
			doc.Features = append(doc.Features, Feature{
				Kind:        k,
				LogicalName: r.LogicalName(),
				Class:       r.Type.FullyQualifiedName().String(),
				Prefix:      r.Prefix,
				SubPackage:  r.SubPackage,
				Source:      r.Source,
				Binary:      r.Type.Binary,
			})
		}
	}
	return doc
}

// Total returns the number of features across all kinds.
func (s Summary) Total() int { return s.Components + s.Pages + s.Mixins + s.Services }

// FeaturesOf returns the listed features of kind k in discovery order.
func (d Document) FeaturesOf(k feature.Kind) []Feature {
	var out []Feature
	for _, f := range d.Features {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}
