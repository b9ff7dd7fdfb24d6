package sql

import (
	"errors"
	"fmt"
	"math"

	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/querylanguage"
	"github.com/syssam/sqlmodel/schema/field"
)

// Pagination defaults applied when a collection is requested without explicit bounds.
const (
	DefaultLimit    = 50
	DefaultPageSize = 50
)

// Page describes the pagination mode a select statement was compiled with.
type Page struct {
	Paged    bool // page/pageSize mode, otherwise limit/offset
	Limit    int
	Offset   int
	Page     int
	PageSize int
}

// ErrNoPrimary is returned when compiling a by-id statement for a model
// without a primary attribute.
var ErrNoPrimary = errors.New("sqlmodel: model has no primary attribute")

// Compiler compiles query specs and records into parameterized statements.
// It holds no state besides the dialect and is safe for concurrent use.
type Compiler struct {
	dialect string
}

// NewCompiler returns a compiler for the given dialect.
func NewCompiler(name string) *Compiler {
	return &Compiler{dialect: dialect.Normalize(name)}
}

// Dialect returns the compiler dialect.
func (c *Compiler) Dialect() string { return c.dialect }

// Select compiles a select statement for s. When paginate is set, default
// bounds apply if s carries none. Page/pageSize wins over limit/offset when
// both are given.
func (c *Compiler) Select(m Model, s *querylanguage.Spec, paginate bool) (*Statement, *Page, error) {
	w := c.writer(m)
	w.selectAll()
	if err := w.where(s); err != nil {
		return nil, nil, err
	}
	if err := w.orderBy(s); err != nil {
		return nil, nil, err
	}
	page, err := pagination(s, paginate)
	if err != nil {
		return nil, nil, err
	}
	if page != nil {
		w.WriteString(fmt.Sprintf(" limit %d offset %d", page.Limit, page.Offset))
	}
	return w.Statement(), page, nil
}

// Count compiles a count statement over the filter of s. Ordering and
// pagination are ignored.
func (c *Compiler) Count(m Model, s *querylanguage.Spec) (*Statement, error) {
	w := c.writer(m)
	w.WriteString("select COUNT(*) as _count from ").Table(m.Table())
	if err := w.where(s); err != nil {
		return nil, err
	}
	return w.Statement(), nil
}

// Insert compiles an insert of the given attribute values. Columns follow
// attribute declaration order. On PostgreSQL the primary column is returned.
func (c *Compiler) Insert(m Model, values map[string]any) (*Statement, error) {
	if err := checkAttributes(m, values); err != nil {
		return nil, err
	}
	w := c.writer(m)
	w.WriteString("insert into ").Table(m.Table())
	var present []*field.Descriptor
	for _, d := range m.Attributes() {
		if _, ok := values[d.Name]; ok {
			present = append(present, d)
		}
	}
	switch {
	case len(present) == 0 && c.dialect == dialect.MySQL:
		w.WriteString(" () values ()")
	case len(present) == 0:
		w.WriteString(" default values")
	default:
		w.WriteString(" (")
		for i, d := range present {
			if i > 0 {
				w.WriteString(", ")
			}
			w.Ident(ColumnName(d))
		}
		w.WriteString(") values (")
		for i, d := range present {
			if i > 0 {
				w.WriteString(", ")
			}
			if err := w.value(d, values[d.Name]); err != nil {
				return nil, err
			}
		}
		w.WriteString(")")
	}
	if pk := m.Primary(); pk != nil && c.dialect == dialect.Postgres {
		w.WriteString(" returning ").Ident(ColumnName(pk))
	}
	return w.Statement(), nil
}

// Update compiles an update of the changed attributes of the record
// identified by id. It returns a nil statement if nothing changed.
func (c *Compiler) Update(m Model, id any, values map[string]any, changed []string) (*Statement, error) {
	pk, err := primary(m, id)
	if err != nil {
		return nil, err
	}
	dirty := make(map[string]bool, len(changed))
	for _, name := range changed {
		if _, ok := m.Attribute(name); !ok {
			return nil, fmt.Errorf("sqlmodel: %s has no attribute %q", m.Table(), name)
		}
		dirty[name] = true
	}
	w := c.writer(m)
	w.WriteString("update ").Table(m.Table()).WriteString(" set ")
	n := 0
	for _, d := range m.Attributes() {
		if !dirty[d.Name] || d == pk {
			continue
		}
		if n > 0 {
			w.WriteString(", ")
		}
		w.Ident(ColumnName(d)).WriteString(" = ")
		if err := w.value(d, values[d.Name]); err != nil {
			return nil, err
		}
		n++
	}
	if n == 0 {
		return nil, nil
	}
	if err := w.byID(pk, id); err != nil {
		return nil, err
	}
	return w.Statement(), nil
}

// Delete compiles a delete of the record identified by id.
func (c *Compiler) Delete(m Model, id any) (*Statement, error) {
	pk, err := primary(m, id)
	if err != nil {
		return nil, err
	}
	w := c.writer(m)
	w.WriteString("delete from ").Table(m.Table())
	if err := w.byID(pk, id); err != nil {
		return nil, err
	}
	return w.Statement(), nil
}

// SelectOne compiles a select of the first record matching s. Pagination
// in s is replaced by limit 1; an offset is kept.
func (c *Compiler) SelectOne(m Model, s *querylanguage.Spec) (*Statement, error) {
	one := 1
	first := &querylanguage.Spec{Limit: &one}
	if s != nil {
		first.Where, first.Order, first.Offset = s.Where, s.Order, s.Offset
	}
	st, _, err := c.Select(m, first, false)
	return st, err
}

// SelectByID compiles a select of the record identified by id.
func (c *Compiler) SelectByID(m Model, id any) (*Statement, error) {
	pk, err := primary(m, id)
	if err != nil {
		return nil, err
	}
	w := c.writer(m)
	w.selectAll()
	if err := w.byID(pk, id); err != nil {
		return nil, err
	}
	return w.Statement(), nil
}

func primary(m Model, id any) (*field.Descriptor, error) {
	pk := m.Primary()
	if pk == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimary, m.Table())
	}
	if id == nil {
		return nil, fmt.Errorf("sqlmodel: %s: missing %s value", m.Table(), pk.Name)
	}
	return pk, nil
}

func checkAttributes(m Model, values map[string]any) error {
	for k := range values {
		if _, ok := m.Attribute(k); !ok {
			return fmt.Errorf("sqlmodel: %s has no attribute %q", m.Table(), k)
		}
	}
	return nil
}

func pagination(s *querylanguage.Spec, paginate bool) (*Page, error) {
	switch {
	case s.Paged():
		p := &Page{Paged: true, Page: 1, PageSize: DefaultPageSize}
		if s.Page != nil {
			p.Page = *s.Page
		}
		if s.PageSize != nil {
			p.PageSize = *s.PageSize
		}
		if p.Page < 1 {
			return nil, fmt.Errorf("sqlmodel: page must be at least 1, got %d", p.Page)
		}
		if p.PageSize < 1 {
			return nil, fmt.Errorf("sqlmodel: pageSize must be at least 1, got %d", p.PageSize)
		}
		if p.Page-1 > math.MaxInt/p.PageSize {
			return nil, fmt.Errorf("sqlmodel: page %d with pageSize %d is out of range", p.Page, p.PageSize)
		}
		p.Limit, p.Offset = p.PageSize, (p.Page-1)*p.PageSize
		return p, nil
	case s != nil && (s.Limit != nil || s.Offset != nil), paginate:
		p := &Page{Limit: DefaultLimit}
		if s != nil && s.Limit != nil {
			p.Limit = *s.Limit
		}
		if s != nil && s.Offset != nil {
			p.Offset = *s.Offset
		}
		return p, nil
	}
	return nil, nil
}

// writer compiles predicate trees and values for a single model.
type writer struct {
	*Builder
	m    Model
	cols *Columns
}

func (c *Compiler) writer(m Model) *writer {
	return &writer{Builder: Dialect(c.dialect), m: m, cols: NewColumns(m)}
}

func (w *writer) selectAll() {
	w.WriteString("select ").Table(w.m.Table()).WriteString(".* from ").Table(w.m.Table())
}

func (w *writer) where(s *querylanguage.Spec) error {
	if s == nil || s.Where == nil {
		return nil
	}
	w.WriteString(" where ")
	return w.pred(s.Where, false)
}

func (w *writer) orderBy(s *querylanguage.Spec) error {
	if s == nil || len(s.Order) == 0 {
		return nil
	}
	w.WriteString(" order by ")
	for i, o := range s.Order {
		if i > 0 {
			w.WriteString(", ")
		}
		if _, err := w.field(o.Field); err != nil {
			return err
		}
		if o.Desc {
			w.WriteString(" desc")
		} else {
			w.WriteString(" asc")
		}
	}
	return nil
}

func (w *writer) byID(pk *field.Descriptor, id any) error {
	w.WriteString(" where ").Column(w.m.Table(), ColumnName(pk)).WriteString(" = ")
	return w.value(pk, id)
}

// pred writes p. Logical nodes nested in another logical node are wrapped
// in parentheses.
func (w *writer) pred(p querylanguage.P, nested bool) error {
	switch p := p.(type) {
	case *querylanguage.Equality:
		d, err := w.field(p.Field)
		if err != nil {
			return err
		}
		if p.Value == nil {
			w.WriteString(" is null")
			return nil
		}
		w.WriteString(" = ")
		return w.value(d, p.Value)
	case *querylanguage.Comparison:
		d, err := w.field(p.Field)
		if err != nil {
			return err
		}
		if p.Value == nil && p.Op == querylanguage.OpNEQ {
			w.WriteString(" is not null")
			return nil
		}
		op, ok := comparisonOps[p.Op]
		if !ok {
			return fmt.Errorf("sqlmodel: unsupported operator %s", p.Op)
		}
		w.WriteString(" " + op + " ")
		return w.value(d, p.Value)
	case *querylanguage.Membership:
		if len(p.Values) == 0 {
			// Nothing is a member of the empty set.
			if p.Negate {
				w.WriteString("1 = 1")
			} else {
				w.WriteString("1 = 0")
			}
			return nil
		}
		d, err := w.field(p.Field)
		if err != nil {
			return err
		}
		if p.Negate {
			w.WriteString(" not in (")
		} else {
			w.WriteString(" in (")
		}
		for i, v := range p.Values {
			if i > 0 {
				w.WriteString(", ")
			}
			if err := w.value(d, v); err != nil {
				return err
			}
		}
		w.WriteString(")")
		return nil
	case *querylanguage.Logical:
		if len(p.Preds) == 0 {
			return errors.New("sqlmodel: empty logical predicate")
		}
		sep := " and "
		if p.Op == querylanguage.OpOr {
			sep = " or "
		}
		if nested {
			w.WriteString("(")
		}
		for i, c := range p.Preds {
			if i > 0 {
				w.WriteString(sep)
			}
			if err := w.pred(c, true); err != nil {
				return err
			}
		}
		if nested {
			w.WriteString(")")
		}
		return nil
	case nil:
		return errors.New("sqlmodel: nil predicate")
	default:
		return fmt.Errorf("sqlmodel: unsupported predicate %T", p)
	}
}

var comparisonOps = map[querylanguage.Op]string{
	querylanguage.OpNEQ: "<>",
	querylanguage.OpGT:  ">",
	querylanguage.OpGTE: ">=",
	querylanguage.OpLT:  "<",
	querylanguage.OpLTE: "<=",
}

// field writes the column a filter key refers to: a declared attribute or
// one of its column names qualified with the table, anything else as an
// unqualified identifier.
func (w *writer) field(name string) (*field.Descriptor, error) {
	d, ok := w.m.Attribute(name)
	if !ok {
		d, ok = w.cols.Lookup(name)
	}
	if ok {
		w.Column(w.m.Table(), ColumnName(d))
		return d, nil
	}
	if !isValidIdentifier(name) {
		return nil, fmt.Errorf("sqlmodel: invalid field name %q", name)
	}
	w.Ident(name)
	return nil, nil
}

// value converts v for d and writes it. String and number values of
// string, number and untyped attributes are inlined; everything else is
// bound.
func (w *writer) value(d *field.Descriptor, v any) error {
	cv, err := ToColumn(d, v)
	if err != nil {
		return err
	}
	if cv == nil {
		w.WriteString("null")
		return nil
	}
	if d == nil || d.Type.Primitive() {
		if w.Literal(cv) {
			return nil
		}
	}
	w.Arg(cv)
	return nil
}
