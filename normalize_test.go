package sqlmodel_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/schema"
	"github.com/syssam/sqlmodel/schema/field"
)

func userModel() *schema.Model {
	return schema.MustNew("User", []*field.Builder{
		field.Any("id").Primary(),
		field.String("name"),
		field.Bool("active"),
		field.UUID("token"),
		field.Date("created_at").ColumnType(field.ColumnDatetime),
		field.Number("score").Column("points"),
	}, schema.Table("user"))
}

func TestNormalizeRow(t *testing.T) {
	m := userModel()
	token, err := hex.DecodeString("110E8400E29B11D4A716446655440000")
	require.NoError(t, err)

	attrs, err := sqlmodel.NormalizeRow(m, sql.Row{
		"id":          int64(1),
		"name":        []byte("alex"),
		"user_active": []byte("1"),
		"token":       token,
		"created_at":  []byte("2013-05-01 08:30:15"),
		"points":      []byte("42"),
		"unrelated":   "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, sqlmodel.Attributes{
		"id":         int64(1),
		"name":       "alex",
		"active":     true,
		"token":      "110e8400-e29b-11d4-a716-446655440000",
		"created_at": time.Date(2013, 5, 1, 8, 30, 15, 0, time.UTC),
		"score":      int64(42),
	}, attrs)
}

func TestNormalizeRowBareWins(t *testing.T) {
	m := userModel()
	// Run a few times: map iteration order must not matter.
	for range 10 {
		attrs, err := sqlmodel.NormalizeRow(m, sql.Row{
			"user_name": "prefixed",
			"name":      "bare",
			"user_id":   int64(2),
		})
		require.NoError(t, err)
		assert.Equal(t, sqlmodel.Attributes{"name": "bare", "id": int64(2)}, attrs)
	}
}

func TestNormalizeRowError(t *testing.T) {
	_, err := sqlmodel.NormalizeRow(userModel(), sql.Row{"token": []byte{1, 2}})
	require.Error(t, err)
	assert.True(t, sqlmodel.IsValueConversionError(err))
}

func TestNormalizeCollection(t *testing.T) {
	m := userModel()
	rows := []sql.Row{{"id": int64(1)}, {"id": int64(2)}}

	c, err := sqlmodel.NormalizeCollection(m, rows, &sql.Page{Limit: 50}, 0)
	require.NoError(t, err)
	assert.False(t, c.Paged)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 50, c.Limit)
	assert.Zero(t, c.Offset)

	c, err = sqlmodel.NormalizeCollection(m, rows, &sql.Page{Paged: true, Page: 4, PageSize: 25, Limit: 25, Offset: 75}, 107)
	require.NoError(t, err)
	assert.True(t, c.Paged)
	assert.Equal(t, 4, c.Page)
	assert.Equal(t, 25, c.PageSize)
	assert.Equal(t, 5, c.Pages)
	assert.EqualValues(t, 107, c.Total)

	c, err = sqlmodel.NormalizeCollection(m, nil, &sql.Page{Paged: true, Page: 1, PageSize: 25}, 0)
	require.NoError(t, err)
	assert.Zero(t, c.Pages)
	assert.Empty(t, c.Records)

	_, err = sqlmodel.NormalizeCollection(m, []sql.Row{{"token": "bad"}, {"token": "worse"}}, nil, 0)
	var agg *sqlmodel.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.True(t, sqlmodel.IsValueConversionError(err))
}
