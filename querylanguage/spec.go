package querylanguage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// P is a node of the predicate tree: Equality, Comparison, Membership or Logical.
type P interface {
	fmt.Stringer
	pred()
}

// Op is a comparison operator.
type Op int

// Comparison operators.
const (
	OpNEQ Op = iota + 1 // !=
	OpGT                // >
	OpGTE               // >=
	OpLT                // <
	OpLTE               // <=
)

var opNames = [...]string{OpNEQ: "!=", OpGT: ">", OpGTE: ">=", OpLT: "<", OpLTE: "<="}

// String returns the operator symbol.
func (o Op) String() string {
	if o > 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// LogicalOp joins predicates.
type LogicalOp int

// Logical operators.
const (
	OpAnd LogicalOp = iota + 1
	OpOr
)

type (
	// Equality matches a field against a single value. A nil value matches NULL.
	Equality struct {
		Field string
		Value any
	}

	// Comparison compares a field against a value with Op.
	Comparison struct {
		Field string
		Op    Op
		Value any
	}

	// Membership matches a field against a list of values.
	Membership struct {
		Field  string
		Values []any
		Negate bool
	}

	// Logical joins its predicates with Op.
	Logical struct {
		Op    LogicalOp
		Preds []P
	}
)

func (*Equality) pred()   {}
func (*Comparison) pred() {}
func (*Membership) pred() {}
func (*Logical) pred()    {}

func (p *Equality) String() string {
	return p.Field + " == " + fmtValue(p.Value)
}

func (p *Comparison) String() string {
	return p.Field + " " + p.Op.String() + " " + fmtValue(p.Value)
}

func (p *Membership) String() string {
	op := " in "
	if p.Negate {
		op = " not in "
	}
	return p.Field + op + fmtValue(p.Values)
}

func (p *Logical) String() string {
	sep := " && "
	if p.Op == OpOr {
		sep = " || "
	}
	parts := make([]string, len(p.Preds))
	for i := range p.Preds {
		parts[i] = p.Preds[i].String()
	}
	s := strings.Join(parts, sep)
	if len(parts) > 2 || p.Op == OpOr {
		s = "(" + s + ")"
	}
	return s
}

func fmtValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case fmt.Stringer:
		return strconv.Quote(v.String())
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// FieldEQ returns an equality predicate.
func FieldEQ(name string, v any) P { return &Equality{Field: name, Value: v} }

// FieldNEQ returns a "not equal" predicate.
func FieldNEQ(name string, v any) P { return &Comparison{Field: name, Op: OpNEQ, Value: v} }

// FieldGT returns a "greater than" predicate.
func FieldGT(name string, v any) P { return &Comparison{Field: name, Op: OpGT, Value: v} }

// FieldGTE returns a "greater than or equal" predicate.
func FieldGTE(name string, v any) P { return &Comparison{Field: name, Op: OpGTE, Value: v} }

// FieldLT returns a "less than" predicate.
func FieldLT(name string, v any) P { return &Comparison{Field: name, Op: OpLT, Value: v} }

// FieldLTE returns a "less than or equal" predicate.
func FieldLTE(name string, v any) P { return &Comparison{Field: name, Op: OpLTE, Value: v} }

// FieldIn returns a membership predicate.
func FieldIn(name string, vs ...any) P { return &Membership{Field: name, Values: vs} }

// FieldNotIn returns a negated membership predicate.
func FieldNotIn(name string, vs ...any) P { return &Membership{Field: name, Values: vs, Negate: true} }

// And joins predicates with AND. A single predicate is returned as is.
func And(ps ...P) P { return join(OpAnd, ps) }

// Or joins predicates with OR. A single predicate is returned as is.
func Or(ps ...P) P { return join(OpOr, ps) }

func join(op LogicalOp, ps []P) P {
	if len(ps) == 1 {
		return ps[0]
	}
	return &Logical{Op: op, Preds: ps}
}

// Order is a single ordering term.
type Order struct {
	Field string
	Desc  bool
}

// Spec is a parsed query: a filter, ordering and pagination. Limit/Offset
// and Page/PageSize are two pagination modes; when both are set the paged
// mode wins.
type Spec struct {
	Where    P
	Order    []Order
	Limit    *int
	Offset   *int
	Page     *int
	PageSize *int
}

// Where returns a Spec filtering by the conjunction of ps.
func Where(ps ...P) *Spec {
	s := &Spec{}
	if len(ps) > 0 {
		s.Where = And(ps...)
	}
	return s
}

// Paged reports whether the Spec uses page/pageSize pagination.
func (s *Spec) Paged() bool {
	return s != nil && (s.Page != nil || s.PageSize != nil)
}

// WithLimit returns a copy of s with limit and offset set.
func (s *Spec) WithLimit(limit, offset int) *Spec {
	c := s.clone()
	c.Limit, c.Offset = &limit, &offset
	return c
}

// WithPage returns a copy of s with page and pageSize set.
func (s *Spec) WithPage(page, size int) *Spec {
	c := s.clone()
	c.Page, c.PageSize = &page, &size
	return c
}

// OrderBy returns a copy of s with the given ordering terms appended.
func (s *Spec) OrderBy(terms ...Order) *Spec {
	c := s.clone()
	c.Order = append(append([]Order(nil), c.Order...), terms...)
	return c
}

func (s *Spec) clone() *Spec {
	if s == nil {
		return &Spec{}
	}
	c := *s
	return &c
}

// String renders the filter part of the Spec.
func (s *Spec) String() string {
	if s == nil || s.Where == nil {
		return "true"
	}
	return s.Where.String()
}
