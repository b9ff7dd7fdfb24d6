package sql

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/sqlmodel/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for table.column)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in a quoted SQL
// literal. Single quotes are doubled on every dialect; MySQL treats backslash
// as an escape character inside literals, so it is doubled there too.
func escapeStringValue(d, s string) string {
	// Fast path: if no escaping needed, return as-is
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	if d == dialect.MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return strings.ReplaceAll(s, "'", "''")
}

// Statement is a compiled SQL statement with its bound arguments.
// The number of placeholders in SQL always equals len(Args).
type Statement struct {
	SQL  string
	Args []any
}

// String implements the fmt.Stringer interface.
func (s *Statement) String() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	return s.SQL + " " + fmtArgs(s.Args)
}

func fmtArgs(args []any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return "[...]"
	}
	return string(b)
}

// Builder is the low-level statement writer. It quotes identifiers, writes
// escaped literals and numbers placeholders for the dialect it was created
// with.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// Dialect creates a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: dialect.Normalize(name)}
}

// WriteString appends s as-is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Ident writes a double-quoted identifier. Dotted names are quoted per part,
// so "post.user_id" becomes "post"."user_id".
func (b *Builder) Ident(s string) *Builder {
	for i, part := range strings.Split(s, ".") {
		if i > 0 {
			b.sb.WriteByte('.')
		}
		b.quote(part)
	}
	return b
}

// Table writes a double-quoted table name.
func (b *Builder) Table(name string) *Builder {
	b.quote(name)
	return b
}

// Column writes a table-qualified column: "table"."column".
func (b *Builder) Column(table, column string) *Builder {
	b.quote(table)
	b.sb.WriteByte('.')
	b.quote(column)
	return b
}

func (b *Builder) quote(s string) {
	b.sb.WriteByte('"')
	b.sb.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.sb.WriteByte('"')
}

// Literal writes v inline. Strings are single-quoted and escaped; numbers are
// written in their shortest decimal form. It reports false, writing nothing,
// if v has no inline representation.
func (b *Builder) Literal(v any) bool {
	switch v := v.(type) {
	case string:
		b.sb.WriteByte('\'')
		b.sb.WriteString(escapeStringValue(b.dialect, v))
		b.sb.WriteByte('\'')
	case int:
		b.sb.WriteString(strconv.Itoa(v))
	case int8:
		b.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int16:
		b.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		b.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		b.sb.WriteString(strconv.FormatInt(v, 10))
	case uint:
		b.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		b.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		b.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		b.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		b.sb.WriteString(strconv.FormatUint(v, 10))
	case float32:
		return b.float(float64(v), 32)
	case float64:
		return b.float(v, 64)
	case json.Number:
		if _, err := strconv.ParseFloat(string(v), 64); err != nil {
			return false
		}
		b.sb.WriteString(string(v))
	default:
		return false
	}
	return true
}

func (b *Builder) float(f float64, bitSize int) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	b.sb.WriteString(strconv.FormatFloat(f, 'f', -1, bitSize))
	return true
}

// Arg binds v and writes its placeholder: "?" for MySQL and SQLite,
// "$n" for PostgreSQL.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Statement returns the statement written so far.
func (b *Builder) Statement() *Statement {
	return &Statement{SQL: b.sb.String(), Args: b.args}
}
