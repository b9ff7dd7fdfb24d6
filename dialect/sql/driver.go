package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// Row is a single result row keyed by column name.
	Row = map[string]any
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

// Conn is a connection handed out by a Pool. Every acquired connection
// must be given back exactly once, by Release when it is healthy or by
// Destroy when it is broken.
type Conn interface {
	Query(ctx context.Context, query string, args []any) (ColumnScanner, error)
	Exec(ctx context.Context, query string, args []any) (Result, error)
	Release() error
	Destroy() error
}

// Pool hands out connections.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// ErrConnReturned is returned when a connection is released or destroyed
// more than once.
var ErrConnReturned = errors.New("sqlmodel: connection already returned to the pool")

// DBPool is a Pool backed by a *sql.DB. Each acquisition reserves a
// dedicated *sql.Conn.
type DBPool struct {
	db *sql.DB
}

// NewDBPool returns a Pool that reserves a *sql.Conn from db per acquisition.
func NewDBPool(db *sql.DB) *DBPool {
	return &DBPool{db: db}
}

// Open wraps the database/sql.Open method and returns a DBPool.
func Open(driverName, source string) (*DBPool, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewDBPool(db), nil
}

// DB returns the underlying *sql.DB instance.
func (p *DBPool) DB() *sql.DB { return p.db }

// Close closes the underlying database.
func (p *DBPool) Close() error { return p.db.Close() }

// Acquire reserves a connection.
func (p *DBPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &dbConn{conn: c}, nil
}

// dbConn is a reserved *sql.Conn.
type dbConn struct {
	conn *sql.Conn
	once sync.Once
}

func (c *dbConn) Query(ctx context.Context, query string, args []any) (ColumnScanner, error) {
	return scanner(c.conn.QueryContext(ctx, query, args...))
}

func (c *dbConn) Exec(ctx context.Context, query string, args []any) (Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// Release returns the connection to the pool.
func (c *dbConn) Release() error {
	err := ErrConnReturned
	c.once.Do(func() { err = c.conn.Close() })
	return err
}

// Destroy removes the connection from the pool. Returning driver.ErrBadConn
// from Raw makes database/sql close the underlying driver connection
// instead of putting it back.
func (c *dbConn) Destroy() error {
	err := ErrConnReturned
	c.once.Do(func() {
		err = c.conn.Raw(func(any) error { return driver.ErrBadConn })
		if errors.Is(err, driver.ErrBadConn) {
			err = nil
		}
	})
	return err
}

// SharedPool is a Pool over a single shared handle, for example a *sql.DB
// used directly or a *sql.Tx. Release and Destroy are no-ops; the handle
// manages its own connections.
type SharedPool struct {
	conn sharedConn
}

// NewSharedPool returns a Pool that hands out ex on every acquisition.
func NewSharedPool(ex ExecQuerier) *SharedPool {
	return &SharedPool{conn: sharedConn{ex}}
}

// Acquire returns the shared handle.
func (p *SharedPool) Acquire(context.Context) (Conn, error) {
	return p.conn, nil
}

type sharedConn struct {
	ex ExecQuerier
}

func (c sharedConn) Query(ctx context.Context, query string, args []any) (ColumnScanner, error) {
	return scanner(c.ex.QueryContext(ctx, query, args...))
}

func (c sharedConn) Exec(ctx context.Context, query string, args []any) (Result, error) {
	return c.ex.ExecContext(ctx, query, args...)
}

func (sharedConn) Release() error { return nil }
func (sharedConn) Destroy() error { return nil }

// scanner avoids wrapping a nil *sql.Rows in a non-nil interface.
func scanner(rows *sql.Rows, err error) (ColumnScanner, error) {
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ScanRows reads all rows of rs into maps keyed by column name and closes rs.
func ScanRows(rs ColumnScanner) (rows []Row, err error) {
	defer func() {
		if cerr := rs.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	columns, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlmodel: get columns: %w", err)
	}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rs.Next() {
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlmodel: scan row: %w", err)
		}
		row := make(Row, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
