package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/schema"
	"github.com/syssam/sqlmodel/schema/field"
)

func TestNew(t *testing.T) {
	m, err := schema.New("User", []*field.Builder{
		field.Any("id").Primary(),
		field.String("fullname").Column("name"),
		field.Bool("active"),
	})
	require.NoError(t, err)
	assert.Equal(t, "User", m.Name())
	assert.Equal(t, "user", m.Table())
	require.NotNil(t, m.Primary())
	assert.Equal(t, "id", m.Primary().Name)
	require.Len(t, m.Attributes(), 3)

	d, ok := m.Attribute("fullname")
	require.True(t, ok)
	assert.Equal(t, "name", d.Column)
	_, ok = m.Attribute("name")
	assert.False(t, ok)
}

func TestNewTableName(t *testing.T) {
	m := schema.MustNew("TagUser", []*field.Builder{field.Any("user_id"), field.Any("tag_id")})
	assert.Equal(t, "tag_user", m.Table())
	assert.Nil(t, m.Primary())

	m = schema.MustNew("User", nil, schema.Table("accounts"))
	assert.Equal(t, "accounts", m.Table())
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		fields []*field.Builder
	}{
		{"no name", "", nil},
		{"duplicate attribute", "User", []*field.Builder{field.Any("id"), field.String("id")}},
		{"shared column", "User", []*field.Builder{field.Any("name"), field.String("fullname").Column("name")}},
		{"two primaries", "User", []*field.Builder{field.Any("id").Primary(), field.Any("uid").Primary()}},
		{"bad column type", "User", []*field.Builder{field.String("at").ColumnType(field.ColumnInteger)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.New(tt.model, tt.fields)
			assert.Error(t, err)
		})
	}
	assert.Panics(t, func() { schema.MustNew("", nil) })
}

func TestRecord(t *testing.T) {
	r := schema.NewRecord(map[string]any{"id": 1, "name": "alex"})
	assert.ElementsMatch(t, []string{"id", "name"}, r.Changed())

	r.ClearChanges()
	assert.Empty(t, r.Changed())

	r.Set("name", "jeff")
	r.Set("name", "jeff2")
	assert.Equal(t, []string{"name"}, r.Changed())
	v, ok := r.Get("name")
	require.True(t, ok)
	assert.Equal(t, "jeff2", v)

	r.Load(map[string]any{"id": 7})
	assert.Equal(t, []string{"name"}, r.Changed())
	assert.Equal(t, 7, r.Values()["id"])

	values := r.Values()
	values["name"] = "mutated"
	v, _ = r.Get("name")
	assert.Equal(t, "jeff2", v)
}

func TestDecodeModel(t *testing.T) {
	m, err := schema.DecodeModel(strings.NewReader(`
name: User
attributes:
  - name: id
    type: uuid
    primary: true
  - name: fullname
    type: string
    column: name
    length: 255
  - name: created_at
    type: date
    columnType: timestamp
`))
	require.NoError(t, err)
	assert.Equal(t, "user", m.Table())
	assert.Equal(t, field.TypeUUID, m.Primary().Type)
	d, ok := m.Attribute("created_at")
	require.True(t, ok)
	assert.Equal(t, field.ColumnTimestamp, d.ColumnType)
	d, _ = m.Attribute("fullname")
	assert.Equal(t, 255, d.Size)

	_, err = schema.DecodeModel(strings.NewReader("name: User\nattributes:\n  - name: x\n    type: decimal\n"))
	assert.Error(t, err)
}
