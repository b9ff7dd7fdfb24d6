package querylanguage_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/querylanguage"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]any
		want  string
	}{
		{
			name:  "equality",
			query: map[string]any{"name": "alex"},
			want:  `name == "alex"`,
		},
		{
			name:  "sorted keys",
			query: map[string]any{"name": "alex", "age": 3},
			want:  `age == 3 && name == "alex"`,
		},
		{
			name:  "or map",
			query: map[string]any{"$or": map[string]any{"id": 1, "name": "jeff"}},
			want:  `(id == 1 || name == "jeff")`,
		},
		{
			name: "or list",
			query: map[string]any{"$or": []any{
				map[string]any{"name": "alex"},
				map[string]any{"name": "jeff", "age": 2},
			}},
			want: `(name == "alex" || age == 2 && name == "jeff")`,
		},
		{
			name:  "comparison range",
			query: map[string]any{"created_at": map[string]any{"$lt": "2013-05", "$gt": 2012}},
			want:  `created_at > 2012 && created_at < "2013-05"`,
		},
		{
			name:  "membership",
			query: map[string]any{"id": map[string]any{"$in": []any{1, 2}}, "tag": []any{"a"}},
			want:  `id in [1,2] && tag in ["a"]`,
		},
		{
			name:  "where nesting",
			query: map[string]any{"where": map[string]any{"$and": map[string]any{"a": 1, "b": 2}}},
			want:  `a == 1 && b == 2`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := querylanguage.Parse(tt.query)
			require.NoError(t, err)
			require.NotNil(t, s.Where)
			assert.Equal(t, tt.want, s.Where.String())
		})
	}
}

func TestParsePagination(t *testing.T) {
	s, err := querylanguage.Parse(map[string]any{"limit": 25, "offset": float64(75)})
	require.NoError(t, err)
	assert.Nil(t, s.Where)
	assert.Equal(t, 25, *s.Limit)
	assert.Equal(t, 75, *s.Offset)
	assert.False(t, s.Paged())

	s, err = querylanguage.Parse(map[string]any{"page": "4", "pageSize": json.Number("25")})
	require.NoError(t, err)
	assert.True(t, s.Paged())
	assert.Equal(t, 4, *s.Page)
	assert.Equal(t, 25, *s.PageSize)
}

func TestParseSort(t *testing.T) {
	s, err := querylanguage.Parse(map[string]any{"sort": "-created_at"})
	require.NoError(t, err)
	assert.Equal(t, []querylanguage.Order{{Field: "created_at", Desc: true}}, s.Order)

	s, err = querylanguage.Parse(map[string]any{"sort": map[string]any{"name": "asc", "age": -1}})
	require.NoError(t, err)
	assert.Equal(t, []querylanguage.Order{{Field: "age", Desc: true}, {Field: "name"}}, s.Order)

	s, err = querylanguage.Parse(map[string]any{"sort": []any{"a", "-b"}})
	require.NoError(t, err)
	assert.Equal(t, []querylanguage.Order{{Field: "a"}, {Field: "b", Desc: true}}, s.Order)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]any
	}{
		{"unknown logical", map[string]any{"$xor": map[string]any{"a": 1}}},
		{"unknown operator", map[string]any{"a": map[string]any{"$like": "x"}}},
		{"mixed nested object", map[string]any{"a": map[string]any{"$gt": 1, "b": 2}}},
		{"negative limit", map[string]any{"limit": -1}},
		{"fractional offset", map[string]any{"offset": 1.5}},
		{"bad page", map[string]any{"page": "x"}},
		{"bad where", map[string]any{"where": "x"}},
		{"empty or", map[string]any{"$or": map[string]any{}}},
		{"or scalar", map[string]any{"$or": 1}},
		{"in scalar", map[string]any{"a": map[string]any{"$in": 1}}},
		{"bad sort", map[string]any{"sort": map[string]any{"a": "up"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := querylanguage.Parse(tt.query)
			require.Error(t, err)
			var perr *querylanguage.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}
