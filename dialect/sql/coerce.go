package sql

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/syssam/sqlmodel/schema/field"
)

// Storage layouts for date columns.
const (
	DatetimeLayout  = "2006-01-02 15:04:05"
	TimestampLayout = "2006-01-02 15:04:05.000000"
)

// dateLayouts are the string layouts accepted for date values, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	DatetimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidUUID = errors.New("invalid uuid")
	errInvalidBool = errors.New("invalid boolean")
	errTooLong     = errors.New("value too long")
)

// ToColumn converts an attribute value to the representation stored in its
// column. A nil descriptor, an untyped attribute and a nil value pass
// through unchanged.
func ToColumn(d *field.Descriptor, v any) (any, error) {
	if d == nil || v == nil {
		return v, nil
	}
	var (
		cv  any
		err error
	)
	switch d.Type {
	case field.TypeDate:
		cv, err = dateToColumn(d.ColumnType, v)
	case field.TypeBool:
		cv, err = boolToColumn(v)
	case field.TypeUUID:
		cv, err = uuidToColumn(v)
	case field.TypeString:
		cv, err = stringToColumn(d.Size, v)
	default:
		return v, nil
	}
	if err != nil {
		return nil, &ValueConversionError{Attribute: d.Name, Type: d.Type, Value: v, Err: err}
	}
	return cv, nil
}

// FromColumn converts a raw driver value back to the attribute's type.
func FromColumn(d *field.Descriptor, raw any) (any, error) {
	if d == nil || raw == nil {
		return raw, nil
	}
	var (
		v   any
		err error
	)
	switch d.Type {
	case field.TypeDate:
		v, err = toTime(raw)
	case field.TypeBool:
		v, err = boolFromColumn(raw)
	case field.TypeUUID:
		v, err = uuidFromColumn(raw)
	case field.TypeString:
		v = stringFromColumn(raw)
	case field.TypeNumber:
		v = numberFromColumn(raw)
	default:
		if b, ok := raw.([]byte); ok {
			return string(b), nil
		}
		return raw, nil
	}
	if err != nil {
		return nil, &ValueConversionError{Attribute: d.Name, Type: d.Type, Value: raw, Err: err}
	}
	return v, nil
}

func dateToColumn(ct field.ColumnType, v any) (any, error) {
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	switch ct {
	case field.ColumnDatetime:
		return t.UTC().Format(DatetimeLayout), nil
	case field.ColumnTimestamp:
		return t.UTC().Format(TimestampLayout), nil
	case field.ColumnInteger:
		return t.Unix(), nil
	default:
		return t, nil
	}
}

// toTime interprets v as a point in time. Four-digit integers are years,
// like four-digit strings; other integers are Unix seconds.
func toTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, errInvalidDate
		}
		return *v, nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	case json.Number:
		return parseTime(string(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, errInvalidDate
		}
		sec, frac := math.Modf(v)
		if frac == 0 && isYear(int64(sec)) {
			return yearStart(int64(sec)), nil
		}
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	case float32:
		return toTime(float64(v))
	}
	if n, ok := toInt64(v); ok {
		if isYear(n) {
			return yearStart(n), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unsupported type %T", errInvalidDate, v)
}

func isYear(n int64) bool { return n >= 1000 && n <= 9999 }

func yearStart(n int64) time.Time {
	return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// A bare year is four digits; longer digit runs are Unix seconds.
	if len(s) > 4 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
}

// stringToColumn enforces the attribute's maximum length, counted in
// characters. Non-string values pass through.
func stringToColumn(size int, v any) (any, error) {
	if s, ok := v.(string); ok && size > 0 {
		if n := utf8.RuneCountInString(s); n > size {
			return nil, fmt.Errorf("%w: %d characters, max %d", errTooLong, n, size)
		}
	}
	return v, nil
}

func boolToColumn(v any) (any, error) {
	var b bool
	switch v := v.(type) {
	case bool:
		b = v
	case *bool:
		if v == nil {
			return nil, nil
		}
		b = *v
	case string:
		p, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidBool, v)
		}
		b = p
	default:
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported type %T", errInvalidBool, v)
		}
		b = n != 0
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// boolFromColumn treats any non-zero numeric as true. The MySQL text
// protocol returns TINYINT columns as []byte("1").
func boolFromColumn(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	case float64:
		return v != 0, nil
	case float32:
		return v != 0, nil
	}
	if n, ok := toInt64(raw); ok {
		return n != 0, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", errInvalidBool, raw)
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q", errInvalidBool, s)
	}
	return b, nil
}

// uuidToColumn converts a canonical UUID to its 16-byte binary form.
func uuidToColumn(v any) (any, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v[:], nil
	case [16]byte:
		return v[:], nil
	case []byte:
		if len(v) == 16 {
			return v, nil
		}
		return uuidToColumn(string(v))
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidUUID, err)
		}
		return u[:], nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", errInvalidUUID, v)
}

// uuidFromColumn reads a 16-byte binary or textual UUID back as its
// lower-case canonical string.
func uuidFromColumn(raw any) (any, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v.String(), nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case []byte:
		if len(v) == 16 {
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidUUID, err)
			}
			return u.String(), nil
		}
		return uuidFromColumn(string(v))
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidUUID, err)
		}
		return u.String(), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", errInvalidUUID, raw)
}

func stringFromColumn(raw any) any {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	return raw
}

func numberFromColumn(raw any) any {
	var s string
	switch v := raw.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return raw
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}
