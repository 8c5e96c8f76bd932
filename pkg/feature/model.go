// SPDX-License-Identifier: MPL-2.0

package feature

import "strings"

type (
	// Sink receives discovered features. Model is the standard implementation.
	Sink interface {
		AddComponent(r *Record)
		AddPage(r *Record)
		AddMixin(r *Record)
		AddService(r *Record)
	}

	// Model is the in-memory project model. It is mutated by a single scan at
	// a time and is not safe for concurrent use.
	Model struct {
		// Project is the name of the project the model describes.
		Project string
		byKind  map[Kind][]*Record
	}
)

// NewModel creates an empty model for project.
func NewModel(project string) *Model {
	return &Model{Project: project, byKind: make(map[Kind][]*Record)}
}

// AddComponent appends a component record.
func (m *Model) AddComponent(r *Record) { m.add(Component, r) }

// AddPage appends a page record.
func (m *Model) AddPage(r *Record) { m.add(Page, r) }

// AddMixin appends a mixin record.
func (m *Model) AddMixin(r *Record) { m.add(Mixin, r) }

// AddService appends a service record.
func (m *Model) AddService(r *Record) { m.add(Service, r) }

func (m *Model) add(k Kind, r *Record) {
	r.Kind = k
	r.Model = m
	m.byKind[k] = append(m.byKind[k], r)
}

// All returns the records of kind k in insertion order.
func (m *Model) All(k Kind) []*Record {
	return m.byKind[k]
}

// Len returns the total number of records.
func (m *Model) Len() int {
	n := 0
	for _, rs := range m.byKind {
		n += len(rs)
	}
	return n
}

// Find returns the last record of kind k with the given logical name,
// comparing case-insensitively like the framework's name resolution.
func (m *Model) Find(k Kind, logicalName string) (*Record, bool) {
	rs := m.byKind[k]
	for i := len(rs) - 1; i >= 0; i-- {
		if strings.EqualFold(rs[i].LogicalName(), logicalName) {
			return rs[i], true
		}
	}
	return nil, false
}

// Add dispatches r to the add method of sink matching r.Kind.
func Add(sink Sink, r *Record) {
	switch r.Kind {
	case Component:
		sink.AddComponent(r)
	case Page:
		sink.AddPage(r)
	case Mixin:
		sink.AddMixin(r)
	case Service:
		sink.AddService(r)
	}
}
