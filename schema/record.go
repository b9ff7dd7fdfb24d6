package schema

import "maps"

// Record is a single model instance: its current attribute values and the
// names of attributes changed since the last save.
type Record struct {
	values  map[string]any
	changed []string
}

// NewRecord returns a record holding a copy of values. Every given attribute
// starts out changed.
func NewRecord(values map[string]any) *Record {
	r := &Record{values: make(map[string]any, len(values))}
	for k, v := range values {
		r.Set(k, v)
	}
	return r
}

// Get returns the value of the named attribute.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set updates an attribute and marks it changed.
func (r *Record) Set(name string, v any) {
	r.values[name] = v
	for _, c := range r.changed {
		if c == name {
			return
		}
	}
	r.changed = append(r.changed, name)
}

// Load replaces attribute values without marking them changed. It is used
// when values come from the backend.
func (r *Record) Load(values map[string]any) {
	maps.Copy(r.values, values)
}

// Values returns a copy of the attribute values.
func (r *Record) Values() map[string]any {
	return maps.Clone(r.values)
}

// Changed returns the names of the attributes changed since the last save.
func (r *Record) Changed() []string {
	return append([]string(nil), r.changed...)
}

// ClearChanges empties the changed set.
func (r *Record) ClearChanges() {
	r.changed = r.changed[:0]
}
