package field

import (
	"fmt"
	"strings"
)

// Type is the declared type of an attribute.
type Type uint8

// Attribute types.
const (
	TypeOther Type = iota
	TypeString
	TypeNumber
	TypeBool
	TypeDate
	TypeUUID
)

var typeNames = [...]string{
	TypeOther:  "other",
	TypeString: "string",
	TypeNumber: "number",
	TypeBool:   "boolean",
	TypeDate:   "date",
	TypeUUID:   "uuid",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// Primitive reports whether values of this type may be written as SQL literals.
func (t Type) Primitive() bool {
	return t == TypeOther || t == TypeString || t == TypeNumber
}

// ParseType parses the type names used in model files. Empty is TypeOther.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "other", "any":
		return TypeOther, nil
	case "string", "text":
		return TypeString, nil
	case "number", "int", "integer", "float":
		return TypeNumber, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "date", "time", "datetime":
		return TypeDate, nil
	case "uuid":
		return TypeUUID, nil
	}
	return TypeOther, fmt.Errorf("field: unknown type %q", s)
}

// ColumnType is the storage representation of a date column.
type ColumnType string

// Column storage types for date attributes.
const (
	ColumnDefault   ColumnType = ""
	ColumnDatetime  ColumnType = "datetime"
	ColumnTimestamp ColumnType = "timestamp"
	ColumnInteger   ColumnType = "integer"
)

// Valid reports whether c is a known column type.
func (c ColumnType) Valid() bool {
	switch c {
	case ColumnDefault, ColumnDatetime, ColumnTimestamp, ColumnInteger:
		return true
	}
	return false
}

// Descriptor describes a single model attribute.
type Descriptor struct {
	Name       string     // attribute name
	Type       Type       // declared type
	Column     string     // explicit column name, empty means Name
	ColumnType ColumnType // storage type for date attributes
	Primary    bool       // primary key flag
	Size       int        // max length for string attributes, 0 is unbounded
}

// Err returns an error if the descriptor is malformed.
func (d *Descriptor) Err() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("field: missing attribute name")
	case !d.ColumnType.Valid():
		return fmt.Errorf("field: %q: unknown column type %q", d.Name, d.ColumnType)
	case d.ColumnType != ColumnDefault && d.Type != TypeDate:
		return fmt.Errorf("field: %q: column type %q requires a date attribute", d.Name, d.ColumnType)
	}
	return nil
}

// Builder is the fluent builder for attribute descriptors.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Any returns a builder for an attribute without a declared type.
func Any(name string) *Builder { return newBuilder(name, TypeOther) }

// String returns a builder for a string attribute.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Number returns a builder for a numeric attribute.
func Number(name string) *Builder { return newBuilder(name, TypeNumber) }

// Bool returns a builder for a boolean attribute.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Date returns a builder for a date attribute.
func Date(name string) *Builder { return newBuilder(name, TypeDate) }

// UUID returns a builder for a uuid attribute stored as 16 bytes.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

// Column sets the physical column name.
func (b *Builder) Column(name string) *Builder {
	b.desc.Column = name
	return b
}

// ColumnType sets how a date attribute is stored.
func (b *Builder) ColumnType(ct ColumnType) *Builder {
	b.desc.ColumnType = ct
	return b
}

// Primary marks the attribute as the primary key.
func (b *Builder) Primary() *Builder {
	b.desc.Primary = true
	return b
}

// MaxLen sets the maximum length of a string attribute.
func (b *Builder) MaxLen(n int) *Builder {
	b.desc.Size = n
	return b
}

// Descriptor returns a copy of the built descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := *b.desc
	return &d
}
