package querylanguage

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Reserved top-level keys.
const (
	KeyWhere    = "where"
	KeyLimit    = "limit"
	KeyOffset   = "offset"
	KeyPage     = "page"
	KeyPageSize = "pageSize"
	KeySort     = "sort"
)

// ParseError is returned by Parse for malformed query maps.
type ParseError struct {
	Key string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("querylanguage: %q: %s", e.Key, e.Msg)
}

// Parse lowers a query map into a Spec. Plain keys become equality
// predicates, operator maps ({"$gt": v, "$lt": w}) become comparisons joined
// with AND, and "$or"/"$and" take a map or a list of maps. Keys are visited
// in sorted order, so the resulting tree is deterministic.
//
//	Parse(map[string]any{
//	    "$or":   map[string]any{"id": 1, "name": "jeff"},
//	    "limit": 25,
//	})
func Parse(q map[string]any) (*Spec, error) {
	s := &Spec{}
	filter := make(map[string]any, len(q))
	for k, v := range q {
		var err error
		switch k {
		case KeyLimit:
			s.Limit, err = parseInt(k, v)
		case KeyOffset:
			s.Offset, err = parseInt(k, v)
		case KeyPage:
			s.Page, err = parseInt(k, v)
		case KeyPageSize:
			s.PageSize, err = parseInt(k, v)
		case KeySort:
			s.Order, err = parseSort(v)
		case KeyWhere:
			w, ok := v.(map[string]any)
			if !ok {
				return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect an object, got %T", v)}
			}
			for wk, wv := range w {
				filter[wk] = wv
			}
		default:
			filter[k] = v
		}
		if err != nil {
			return nil, err
		}
	}
	ps, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		s.Where = And(ps...)
	}
	return s, nil
}

func parseFilter(m map[string]any) ([]P, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	ps := make([]P, 0, len(keys))
	for _, k := range keys {
		p, err := parseKey(k, m[k])
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func parseKey(k string, v any) (P, error) {
	switch k {
	case "$or", "$and":
		op := OpAnd
		if k == "$or" {
			op = OpOr
		}
		return parseLogical(k, op, v)
	}
	if strings.HasPrefix(k, "$") {
		return nil, &ParseError{Key: k, Msg: "unknown logical operator"}
	}
	if k == "" {
		return nil, &ParseError{Key: k, Msg: "empty attribute name"}
	}
	switch v := v.(type) {
	case map[string]any:
		if isOperatorMap(v) {
			return parseOperators(k, v)
		}
		return nil, &ParseError{Key: k, Msg: "nested objects must only hold $ operators"}
	case []any:
		return FieldIn(k, v...), nil
	}
	return FieldEQ(k, v), nil
}

func parseLogical(k string, op LogicalOp, v any) (P, error) {
	var ps []P
	switch v := v.(type) {
	case map[string]any:
		var err error
		if ps, err = parseFilter(v); err != nil {
			return nil, err
		}
	case []any:
		for _, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect a list of objects, got %T", e)}
			}
			sub, err := parseFilter(m)
			if err != nil {
				return nil, err
			}
			if len(sub) > 0 {
				ps = append(ps, And(sub...))
			}
		}
	default:
		return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect an object or list, got %T", v)}
	}
	if len(ps) == 0 {
		return nil, &ParseError{Key: k, Msg: "no predicates"}
	}
	return join(op, ps), nil
}

func isOperatorMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// operatorOrder fixes the order in which operators on one key are emitted.
var operatorOrder = []string{"$eq", "$ne", "$gt", "$gte", "$lt", "$lte", "$in", "$nin"}

func parseOperators(k string, m map[string]any) (P, error) {
	for op := range m {
		if !slices.Contains(operatorOrder, op) {
			return nil, &ParseError{Key: k, Msg: fmt.Sprintf("unknown operator %q", op)}
		}
	}
	ps := make([]P, 0, len(m))
	for _, op := range operatorOrder {
		v, ok := m[op]
		if !ok {
			continue
		}
		switch op {
		case "$eq":
			ps = append(ps, FieldEQ(k, v))
		case "$ne":
			ps = append(ps, FieldNEQ(k, v))
		case "$gt":
			ps = append(ps, FieldGT(k, v))
		case "$gte":
			ps = append(ps, FieldGTE(k, v))
		case "$lt":
			ps = append(ps, FieldLT(k, v))
		case "$lte":
			ps = append(ps, FieldLTE(k, v))
		case "$in", "$nin":
			vs, ok := v.([]any)
			if !ok {
				return nil, &ParseError{Key: k, Msg: fmt.Sprintf("%s expects a list, got %T", op, v)}
			}
			if op == "$in" {
				ps = append(ps, FieldIn(k, vs...))
			} else {
				ps = append(ps, FieldNotIn(k, vs...))
			}
		}
	}
	return And(ps...), nil
}

func parseInt(k string, v any) (*int, error) {
	var n int
	switch v := v.(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case uint:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect an integer, got %v", v)}
		}
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, &ParseError{Key: k, Msg: err.Error()}
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect an integer, got %q", v)}
		}
		n = i
	default:
		return nil, &ParseError{Key: k, Msg: fmt.Sprintf("expect an integer, got %T", v)}
	}
	if n < 0 {
		return nil, &ParseError{Key: k, Msg: "must not be negative"}
	}
	return &n, nil
}

// parseSort accepts "name", "-name", a list of those, or {"name": 1|-1|"asc"|"desc"}.
func parseSort(v any) ([]Order, error) {
	switch v := v.(type) {
	case string:
		return []Order{sortTerm(v)}, nil
	case []any:
		terms := make([]Order, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, &ParseError{Key: KeySort, Msg: fmt.Sprintf("expect strings, got %T", e)}
			}
			terms = append(terms, sortTerm(s))
		}
		return terms, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		terms := make([]Order, 0, len(keys))
		for _, k := range keys {
			desc, err := sortDirection(k, v[k])
			if err != nil {
				return nil, err
			}
			terms = append(terms, Order{Field: k, Desc: desc})
		}
		return terms, nil
	}
	return nil, &ParseError{Key: KeySort, Msg: fmt.Sprintf("unexpected type %T", v)}
}

func sortTerm(s string) Order {
	if name, ok := strings.CutPrefix(s, "-"); ok {
		return Order{Field: name, Desc: true}
	}
	return Order{Field: s}
}

func sortDirection(k string, v any) (bool, error) {
	switch v := v.(type) {
	case string:
		switch strings.ToLower(v) {
		case "asc":
			return false, nil
		case "desc":
			return true, nil
		}
	case int:
		return v < 0, nil
	case int64:
		return v < 0, nil
	case float64:
		return v < 0, nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f < 0, nil
		}
	}
	return false, &ParseError{Key: k, Msg: fmt.Sprintf("invalid sort direction %v", v)}
}
