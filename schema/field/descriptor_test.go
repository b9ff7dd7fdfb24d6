package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/schema/field"
)

func TestBuilders(t *testing.T) {
	d := field.String("fullname").Column("name").MaxLen(255).Descriptor()
	assert.Equal(t, "fullname", d.Name)
	assert.Equal(t, field.TypeString, d.Type)
	assert.Equal(t, "name", d.Column)
	assert.Equal(t, 255, d.Size)
	assert.False(t, d.Primary)
	require.NoError(t, d.Err())

	d = field.UUID("id").Primary().Descriptor()
	assert.Equal(t, field.TypeUUID, d.Type)
	assert.True(t, d.Primary)

	d = field.Date("updated_at").ColumnType(field.ColumnInteger).Descriptor()
	assert.Equal(t, field.ColumnInteger, d.ColumnType)
	require.NoError(t, d.Err())
}

func TestBuilderCopies(t *testing.T) {
	b := field.Number("age")
	d1 := b.Descriptor()
	d1.Name = "changed"
	assert.Equal(t, "age", b.Descriptor().Name)
}

func TestDescriptorErr(t *testing.T) {
	tests := []struct {
		name string
		desc *field.Descriptor
	}{
		{"missing name", &field.Descriptor{}},
		{"unknown column type", &field.Descriptor{Name: "at", Type: field.TypeDate, ColumnType: "blob"}},
		{"column type on string", &field.Descriptor{Name: "at", Type: field.TypeString, ColumnType: field.ColumnInteger}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.desc.Err())
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want field.Type
	}{
		{"", field.TypeOther},
		{"string", field.TypeString},
		{"Boolean", field.TypeBool},
		{"number", field.TypeNumber},
		{"date", field.TypeDate},
		{"uuid", field.TypeUUID},
	}
	for _, tt := range tests {
		got, err := field.ParseType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := field.ParseType("decimal")
	assert.Error(t, err)

	assert.Equal(t, "boolean", field.TypeBool.String())
	assert.True(t, field.TypeString.Primitive())
	assert.False(t, field.TypeDate.Primitive())
}
