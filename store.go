package sqlmodel

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/querylanguage"
	"github.com/syssam/sqlmodel/schema"
	"github.com/syssam/sqlmodel/schema/field"
)

// Store persists the records of one model.
//
// Queries passed to FindAll, FindOne and Count may be a
// *querylanguage.Spec, a map[string]any in the query object form accepted
// by querylanguage.Parse, or nil for all records.
type Store struct {
	model    *schema.Model
	compiler *sql.Compiler
	exec     *sql.Executor
}

// NewStore returns a store for m running statements on ex.
func NewStore(m *schema.Model, ex *sql.Executor) *Store {
	return &Store{
		model:    m,
		compiler: sql.NewCompiler(ex.Dialect()),
		exec:     ex,
	}
}

// Model returns the store model.
func (s *Store) Model() *schema.Model { return s.model }

// FindAll returns a page of the records matching query. Without explicit
// bounds the first DefaultLimit records are returned. In paged mode the
// total is counted concurrently with the select.
func (s *Store) FindAll(ctx context.Context, query any) (*Collection, error) {
	spec, err := toSpec(query)
	if err != nil {
		return nil, err
	}
	st, page, err := s.compiler.Select(s.model, spec, true)
	if err != nil {
		return nil, err
	}
	var (
		rows  []sql.Row
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.exec.Query(gctx, st)
		return err
	})
	if page.Paged {
		g.Go(func() (err error) {
			total, err = s.count(gctx, spec)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NormalizeCollection(s.model, rows, page, total)
}

// FindOne returns the first record matching query. A query that is not a
// Spec or a map is taken as a primary key value. It returns a
// *NotFoundError if no record matches.
func (s *Store) FindOne(ctx context.Context, query any) (Attributes, error) {
	var (
		st  *sql.Statement
		id  any
		err error
	)
	if isQuery(query) {
		var spec *querylanguage.Spec
		if spec, err = toSpec(query); err != nil {
			return nil, err
		}
		st, err = s.compiler.SelectOne(s.model, spec)
	} else {
		id = query
		st, err = s.compiler.SelectByID(s.model, id)
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.exec.Query(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if id != nil {
			return nil, NewNotFoundErrorWithID(s.model.Name(), id)
		}
		return nil, NewNotFoundError(s.model.Name())
	}
	return NormalizeRow(s.model, rows[0])
}

// Count returns the number of records matching query.
func (s *Store) Count(ctx context.Context, query any) (int64, error) {
	spec, err := toSpec(query)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, spec)
}

func (s *Store) count(ctx context.Context, spec *querylanguage.Spec) (int64, error) {
	st, err := s.compiler.Count(s.model, spec)
	if err != nil {
		return 0, err
	}
	rows, err := s.exec.Query(ctx, st)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return countValue(rows[0])
}

// countValue reads the count column. Some drivers prefix the alias with an
// extra underscore.
func countValue(row sql.Row) (int64, error) {
	v, ok := row["_count"]
	if !ok {
		v, ok = row["__count"]
	}
	if !ok && len(row) == 1 {
		for _, only := range row {
			v, ok = only, true
		}
	}
	if !ok {
		return 0, fmt.Errorf("sqlmodel: count column missing from %v", row)
	}
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("sqlmodel: unexpected count value %v (%T)", v, v)
}

// Save inserts the record if its primary attribute is unset and updates
// its changed attributes otherwise. After an insert the primary attribute
// is set from the backend. Saving a record without changes is a no-op.
// The record's change set is cleared on success.
func (s *Store) Save(ctx context.Context, r *schema.Record) error {
	pk := s.model.Primary()
	if pk != nil {
		if id, ok := r.Get(pk.Name); ok && id != nil {
			return s.update(ctx, r, id)
		}
	}
	return s.Create(ctx, r)
}

// Create inserts the record, even if its primary attribute is set. When it
// is not, a uuid primary is assigned a new random key before the insert and
// other primaries are loaded from the backend's generated key.
func (s *Store) Create(ctx context.Context, r *schema.Record) error {
	values := r.Values()
	pk := s.model.Primary()
	generated := false
	if pk != nil {
		if id, ok := values[pk.Name]; !ok || id == nil {
			if pk.Type == field.TypeUUID {
				values[pk.Name] = uuid.NewString()
			} else {
				delete(values, pk.Name)
				generated = true
			}
		}
	}
	st, err := s.compiler.Insert(s.model, values)
	if err != nil {
		return err
	}
	if !generated {
		if _, err := s.exec.Exec(ctx, st); err != nil {
			return err
		}
		if pk != nil {
			r.Load(map[string]any{pk.Name: values[pk.Name]})
		}
		r.ClearChanges()
		return nil
	}
	id, err := s.insertID(ctx, st)
	if err != nil {
		return err
	}
	if id != nil {
		r.Load(map[string]any{pk.Name: id})
	}
	r.ClearChanges()
	return nil
}

// insertID runs an insert and returns the generated primary key: from the
// returning clause on PostgreSQL, from LastInsertId elsewhere.
func (s *Store) insertID(ctx context.Context, st *sql.Statement) (any, error) {
	pk := s.model.Primary()
	if s.exec.Dialect() == dialect.Postgres {
		rows, err := s.exec.Query(ctx, st)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		attrs, err := NormalizeRow(s.model, rows[0])
		if err != nil {
			return nil, err
		}
		return attrs[pk.Name], nil
	}
	res, err := s.exec.Exec(ctx, st)
	if err != nil {
		return nil, err
	}
	if pk.Type != field.TypeNumber && pk.Type != field.TypeOther {
		return nil, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		// Not every driver reports generated keys.
		s.exec.Logger().Warn("generated key unavailable", "table", s.model.Table(), "error", err)
		return nil, nil
	}
	return id, nil
}

func (s *Store) update(ctx context.Context, r *schema.Record, id any) error {
	st, err := s.compiler.Update(s.model, id, r.Values(), r.Changed())
	if err != nil {
		return err
	}
	if st != nil {
		if _, err := s.exec.Exec(ctx, st); err != nil {
			return err
		}
	}
	r.ClearChanges()
	return nil
}

// Remove deletes the record with the given primary key. A *schema.Record
// may be passed instead of the key.
func (s *Store) Remove(ctx context.Context, id any) error {
	if r, ok := id.(*schema.Record); ok {
		pk := s.model.Primary()
		if pk == nil {
			return fmt.Errorf("%w: %s", sql.ErrNoPrimary, s.model.Table())
		}
		id, _ = r.Get(pk.Name)
	}
	st, err := s.compiler.Delete(s.model, id)
	if err != nil {
		return err
	}
	_, err = s.exec.Exec(ctx, st)
	return err
}

func isQuery(q any) bool {
	switch q.(type) {
	case nil, map[string]any, *querylanguage.Spec, querylanguage.P:
		return true
	}
	return false
}

func toSpec(q any) (*querylanguage.Spec, error) {
	switch q := q.(type) {
	case nil:
		return nil, nil
	case *querylanguage.Spec:
		return q, nil
	case querylanguage.P:
		return querylanguage.Where(q), nil
	case map[string]any:
		return querylanguage.Parse(q)
	}
	return nil, fmt.Errorf("sqlmodel: unsupported query type %T", q)
}
