package sql

import (
	"strings"

	"github.com/syssam/sqlmodel/schema/field"
)

// Model describes the table a statement is compiled for. It is implemented
// by *schema.Model.
type Model interface {
	Table() string
	Attributes() []*field.Descriptor
	Attribute(name string) (*field.Descriptor, bool)
	Primary() *field.Descriptor
}

// ColumnName returns the column an attribute is stored in.
func ColumnName(d *field.Descriptor) string {
	if d.Column != "" {
		return d.Column
	}
	return d.Name
}

// Columns indexes the attributes of a model by column name.
type Columns struct {
	table    string
	prefix   string
	byColumn map[string]*field.Descriptor
}

// NewColumns builds the column index of m.
func NewColumns(m Model) *Columns {
	attrs := m.Attributes()
	c := &Columns{
		table:    m.Table(),
		prefix:   m.Table() + "_",
		byColumn: make(map[string]*field.Descriptor, len(attrs)),
	}
	for _, d := range attrs {
		c.byColumn[ColumnName(d)] = d
	}
	return c
}

// Lookup returns the attribute stored in column.
func (c *Columns) Lookup(column string) (*field.Descriptor, bool) {
	d, ok := c.byColumn[column]
	return d, ok
}

// AttributeKey resolves a raw result key to an attribute. A bare column name
// is tried first, then a key carrying the "<table>_" prefix that some result
// shapes add. The second result reports whether the prefixed form matched.
func (c *Columns) AttributeKey(key string) (d *field.Descriptor, prefixed, ok bool) {
	if d, ok := c.byColumn[key]; ok {
		return d, false, true
	}
	if rest, found := strings.CutPrefix(key, c.prefix); found {
		if d, ok := c.byColumn[rest]; ok {
			return d, true, true
		}
	}
	return nil, false, false
}
