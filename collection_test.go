package sqlmodel_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/sqlmodel"
)

func TestCollectionRepresentation(t *testing.T) {
	c := &sqlmodel.Collection{
		Records: []sqlmodel.Attributes{{"id": 1}},
		Limit:   10,
		Offset:  20,
	}
	assert.Equal(t, map[string]any{
		"collection": []sqlmodel.Attributes{{"id": 1}},
		"limit":      10,
		"offset":     20,
	}, c.Representation())

	c = &sqlmodel.Collection{Paged: true, Page: 4, PageSize: 25, Pages: 5, Total: 107, Limit: 25, Offset: 75}
	rep := c.Representation()
	assert.Equal(t, []sqlmodel.Attributes{}, rep["collection"])
	assert.Equal(t, 4, rep["page"])
	assert.Equal(t, 25, rep["pageSize"])
	assert.Equal(t, 5, rep["pages"])
	assert.EqualValues(t, 107, rep["total"])
	assert.NotContains(t, rep, "limit")
}

func TestCollectionJSON(t *testing.T) {
	c := &sqlmodel.Collection{
		Records:  []sqlmodel.Attributes{{"id": 1, "name": "alex"}},
		Paged:    true,
		Page:     1,
		PageSize: 25,
		Pages:    1,
		Total:    1,
	}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":[{"id":1,"name":"alex"}],"page":1,"pageSize":25,"pages":1,"total":1}`, string(b))

	b, err = json.Marshal(&sqlmodel.Collection{Limit: 50})
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":[],"limit":50,"offset":0}`, string(b))
}

func TestCollectionMsgpack(t *testing.T) {
	c := &sqlmodel.Collection{
		Records:  []sqlmodel.Attributes{{"name": "alex"}},
		Paged:    true,
		Page:     2,
		PageSize: 10,
		Pages:    3,
		Total:    21,
	}
	b, err := msgpack.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(b, &got))
	assert.EqualValues(t, 2, got["page"])
	assert.EqualValues(t, 10, got["pageSize"])
	assert.EqualValues(t, 3, got["pages"])
	assert.EqualValues(t, 21, got["total"])
	records, ok := got["collection"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{"name": "alex"}, records[0])
}
