package sql

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/schema/field"
)

func TestToColumnDate(t *testing.T) {
	at := time.Date(2013, 5, 1, 10, 30, 15, 123456000, time.FixedZone("CEST", 2*3600))
	tests := []struct {
		ct   field.ColumnType
		in   any
		want any
	}{
		{field.ColumnDatetime, at, "2013-05-01 08:30:15"},
		{field.ColumnTimestamp, at, "2013-05-01 08:30:15.123456"},
		{field.ColumnInteger, at, at.Unix()},
		{field.ColumnDefault, at, at},
		{field.ColumnDatetime, "2013-05-01", "2013-05-01 00:00:00"},
		{field.ColumnDatetime, "2013-05", "2013-05-01 00:00:00"},
		{field.ColumnDatetime, "2013", "2013-01-01 00:00:00"},
		{field.ColumnDatetime, "2013-05-01 08:30:15", "2013-05-01 08:30:15"},
		{field.ColumnDatetime, 1367397015, "2013-05-01 08:30:15"},
		{field.ColumnDatetime, "1367397015", "2013-05-01 08:30:15"},
		{field.ColumnInteger, "2013-05-01T08:30:15Z", int64(1367397015)},
		{field.ColumnInteger, &at, at.Unix()},
		{field.ColumnDatetime, 2012, "2012-01-01 00:00:00"},
		{field.ColumnDatetime, int64(2012), "2012-01-01 00:00:00"},
		{field.ColumnDatetime, float64(2012), "2012-01-01 00:00:00"},
		{field.ColumnDatetime, 86400, "1970-01-02 00:00:00"},
		{field.ColumnDatetime, float64(86400.5), "1970-01-02 00:00:00"},
	}
	for _, tt := range tests {
		d := field.Date("at").ColumnType(tt.ct).Descriptor()
		got, err := ToColumn(d, tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}

	_, err := ToColumn(field.Date("at").Descriptor(), "not a date")
	require.Error(t, err)
	var cerr *ValueConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "at", cerr.Attribute)
	assert.ErrorIs(t, err, errInvalidDate)
}

func TestFromColumnDate(t *testing.T) {
	d := field.Date("at").Descriptor()
	want := time.Date(2013, 5, 1, 8, 30, 15, 0, time.UTC)
	for _, raw := range []any{
		want,
		"2013-05-01 08:30:15",
		[]byte("2013-05-01 08:30:15"),
		int64(1367397015),
		"2013-05-01T08:30:15Z",
	} {
		got, err := FromColumn(d, raw)
		require.NoError(t, err, "%v", raw)
		assert.True(t, want.Equal(got.(time.Time)), "%v: got %v", raw, got)
	}
	got, err := FromColumn(d, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBool(t *testing.T) {
	d := field.Bool("active").Descriptor()
	for in, want := range map[any]any{true: 1, false: 0, "true": 1, 0: 0, int64(2): 1} {
		got, err := ToColumn(d, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%v", in)
	}
	_, err := ToColumn(d, 1.5)
	require.Error(t, err)

	for _, tt := range []struct {
		raw  any
		want bool
	}{
		{int64(1), true},
		{int64(0), false},
		{[]byte("1"), true},
		{[]byte("0"), false},
		{"1", true},
		{true, true},
		{float64(3), true},
		{uint8(0), false},
	} {
		got, err := FromColumn(d, tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.raw)
	}
	_, err = FromColumn(d, []byte("yes"))
	require.Error(t, err)
}

func TestUUID(t *testing.T) {
	d := field.UUID("token").Descriptor()
	const canonical = "110e8400-e29b-11d4-a716-446655440000"
	u := uuid.MustParse(canonical)

	got, err := ToColumn(d, "110E8400-E29B-11D4-A716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, u[:], got)
	got, err = ToColumn(d, u)
	require.NoError(t, err)
	assert.Equal(t, u[:], got)

	_, err = ToColumn(d, "110e8400")
	assert.ErrorIs(t, err, errInvalidUUID)
	_, err = ToColumn(d, 42)
	assert.ErrorIs(t, err, errInvalidUUID)

	for _, raw := range []any{u[:], canonical, []byte(canonical), "110E8400-E29B-11D4-A716-446655440000"} {
		got, err := FromColumn(d, raw)
		require.NoError(t, err)
		assert.Equal(t, canonical, got)
	}
	_, err = FromColumn(d, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestPrimitives(t *testing.T) {
	s := field.String("name").Descriptor()
	got, err := FromColumn(s, []byte("alex"))
	require.NoError(t, err)
	assert.Equal(t, "alex", got)
	got, err = ToColumn(s, "alex")
	require.NoError(t, err)
	assert.Equal(t, "alex", got)

	n := field.Number("age").Descriptor()
	for raw, want := range map[string]any{"30": int64(30), "1.5": 1.5, "n/a": "n/a"} {
		got, err := FromColumn(n, []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}
	got, err = FromColumn(n, int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	a := field.Any("tag").Descriptor()
	got, err = ToColumn(a, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	got, err = FromColumn(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestStringMaxLen(t *testing.T) {
	d := field.String("code").MaxLen(3).Descriptor()
	got, err := ToColumn(d, "épé")
	require.NoError(t, err)
	assert.Equal(t, "épé", got)

	_, err = ToColumn(d, "abcd")
	var cerr *ValueConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "code", cerr.Attribute)
	assert.ErrorIs(t, err, errTooLong)

	got, err = ToColumn(field.String("note").Descriptor(), "unbounded text")
	require.NoError(t, err)
	assert.Equal(t, "unbounded text", got)
}
