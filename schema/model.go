package schema

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqlmodel/schema/field"
)

// Model holds the attribute metadata of a record type. It is immutable once
// built and safe for concurrent use.
type Model struct {
	name    string
	table   string
	attrs   []*field.Descriptor
	byName  map[string]*field.Descriptor
	primary *field.Descriptor
}

// Option configures a Model.
type Option func(*Model)

// Table overrides the table name derived from the model name.
func Table(name string) Option {
	return func(m *Model) {
		m.table = name
	}
}

// New builds a model from attribute builders. The table name defaults to the
// underscored model name ("TagUser" -> "tag_user").
func New(name string, fields []*field.Builder, opts ...Option) (*Model, error) {
	descs := make([]*field.Descriptor, len(fields))
	for i, f := range fields {
		descs[i] = f.Descriptor()
	}
	return newModel(name, descs, opts...)
}

// MustNew is like New but panics on error.
func MustNew(name string, fields []*field.Builder, opts ...Option) *Model {
	m, err := New(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func newModel(name string, descs []*field.Descriptor, opts ...Option) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("schema: missing model name")
	}
	m := &Model{
		name:   name,
		table:  inflect.Underscore(name),
		attrs:  descs,
		byName: make(map[string]*field.Descriptor, len(descs)),
	}
	for _, opt := range opts {
		opt(m)
	}
	columns := make(map[string]string, len(descs))
	for _, d := range descs {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("schema: model %s: %w", name, err)
		}
		if _, ok := m.byName[d.Name]; ok {
			return nil, fmt.Errorf("schema: model %s: duplicate attribute %q", name, d.Name)
		}
		column := d.Column
		if column == "" {
			column = d.Name
		}
		if other, ok := columns[column]; ok {
			return nil, fmt.Errorf("schema: model %s: attributes %q and %q share column %q", name, other, d.Name, column)
		}
		columns[column] = d.Name
		m.byName[d.Name] = d
		if d.Primary {
			if m.primary != nil {
				return nil, fmt.Errorf("schema: model %s: multiple primary attributes (%q, %q)", name, m.primary.Name, d.Name)
			}
			m.primary = d
		}
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Table returns the table name.
func (m *Model) Table() string { return m.table }

// Attributes returns the attribute descriptors in declaration order.
func (m *Model) Attributes() []*field.Descriptor { return m.attrs }

// Attribute returns the descriptor of the named attribute.
func (m *Model) Attribute(name string) (*field.Descriptor, bool) {
	d, ok := m.byName[name]
	return d, ok
}

// Primary returns the primary key descriptor, or nil if the model has none.
func (m *Model) Primary() *field.Descriptor { return m.primary }
